package markdowncmd

import (
	"testing"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/logging"
	command "github.com/goliatone/go-command"
)

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type cronRecording struct {
	config  command.HandlerConfig
	handler func() error
}

func cronRecorder(recordings *[]cronRecording) CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		fn, _ := handler.(func() error)
		*recordings = append(*recordings, cronRecording{config: cfg, handler: fn})
		return nil
	}
}

func TestRegisterMarkdownCommandsRegistersHandlers(t *testing.T) {
	reg := &recordingRegistry{}
	service := &stubMarkdownService{}

	set, err := RegisterMarkdownCommands(reg, service, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register markdown commands: %v", err)
	}
	if set == nil || set.Render == nil || set.Sync == nil {
		t.Fatalf("expected render and sync handlers, got %#v", set)
	}
	if len(reg.handlers) != 2 {
		t.Fatalf("expected two handlers registered, got %d", len(reg.handlers))
	}
	if reg.handlers[0] != set.Render {
		t.Fatalf("expected render handler registered first, got %#v", reg.handlers[0])
	}
	if reg.handlers[1] != set.Sync {
		t.Fatalf("expected sync handler registered second, got %#v", reg.handlers[1])
	}
}

func TestRegisterMarkdownCommandsHandlerOptionsApplied(t *testing.T) {
	renderApplied := false
	syncApplied := false

	_, err := RegisterMarkdownCommands(nil, &stubMarkdownService{}, nil, FeatureGates{},
		WithRenderHandlerOptions(func(h *commands.Handler[RenderArticleCommand]) {
			renderApplied = true
		}),
		WithSyncHandlerOptions(func(h *commands.Handler[SyncCatalogCommand]) {
			syncApplied = true
		}),
	)
	if err != nil {
		t.Fatalf("register markdown commands: %v", err)
	}
	if !renderApplied || !syncApplied {
		t.Fatalf("expected handler options applied: render=%v sync=%v", renderApplied, syncApplied)
	}
}

func TestRegisterMarkdownCommandsNilServiceError(t *testing.T) {
	if _, err := RegisterMarkdownCommands(nil, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error when service nil")
	}
}

func TestRegisterMarkdownCronRegistersHandler(t *testing.T) {
	service := &stubMarkdownService{}
	handler := NewSyncCatalogHandler(service, logging.NoOp(), FeatureGates{})

	var recordings []cronRecording
	cfg := command.HandlerConfig{Expression: "@daily"}
	msg := SyncCatalogCommand{Directory: "content"}

	if err := RegisterMarkdownCron(cronRecorder(&recordings), handler, cfg, msg); err != nil {
		t.Fatalf("register markdown cron: %v", err)
	}
	if len(recordings) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(recordings))
	}
	if recordings[0].config.Expression != cfg.Expression {
		t.Fatalf("expected cron expression %q, got %q", cfg.Expression, recordings[0].config.Expression)
	}
	if recordings[0].handler == nil {
		t.Fatal("expected cron handler function recorded")
	}
	if err := recordings[0].handler(); err != nil {
		t.Fatalf("executing cron handler: %v", err)
	}
	if len(service.syncCalls) != 1 {
		t.Fatalf("expected sync call executed, got %d", len(service.syncCalls))
	}
}

func TestRegisterMarkdownCronNoOpWhenMissingInputs(t *testing.T) {
	var recordings []cronRecording
	if err := RegisterMarkdownCron(nil, NewSyncCatalogHandler(&stubMarkdownService{}, nil, FeatureGates{}), command.HandlerConfig{}, SyncCatalogCommand{Directory: "content"}); err != nil {
		t.Fatalf("expected nil error when registrar nil, got %v", err)
	}
	if err := RegisterMarkdownCron(cronRecorder(&recordings), nil, command.HandlerConfig{}, SyncCatalogCommand{Directory: "content"}); err != nil {
		t.Fatalf("expected nil error when handler nil, got %v", err)
	}
	if len(recordings) != 0 {
		t.Fatalf("expected no registrations, got %d", len(recordings))
	}
}
