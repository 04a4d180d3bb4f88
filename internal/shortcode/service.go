package shortcode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	parserpkg "github.com/goliatone/go-blog/internal/shortcode/parser"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// placeholderFormat is the marker emitted by the parser when extracting shortcodes.
const placeholderFormat = "<!-- shortcode:%d -->"

// Parser extracts shortcode invocations, replacing each one with an indexed placeholder.
type Parser interface {
	Extract(content string) (string, []interfaces.ParsedShortcode, error)
}

// Service expands shortcode invocations inside Markdown content before the
// document reaches the parser. A failing or unknown shortcode aborts the
// expansion so broken invocations never reach a published page.
type Service struct {
	registry         interfaces.ShortcodeRegistry
	renderer         *Renderer
	parser           Parser
	preprocessor     *parserpkg.WordPressPreprocessor
	defaultSanitizer interfaces.ShortcodeSanitizer
	logger           interfaces.Logger
	metrics          Metrics
	wordpressEnabled bool
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithWordPressSyntax toggles support for the WordPress-style [] shortcode syntax.
func WithWordPressSyntax(enabled bool) ServiceOption {
	return func(s *Service) {
		s.wordpressEnabled = enabled
	}
}

// WithDefaultSanitizer overrides the fallback sanitizer used when none is supplied at call time.
func WithDefaultSanitizer(sanitizer interfaces.ShortcodeSanitizer) ServiceOption {
	return func(s *Service) {
		if sanitizer != nil {
			s.defaultSanitizer = sanitizer
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires the metrics recorder used for telemetry.
func WithMetrics(metrics Metrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithWordPressPreprocessor allows callers to supply a custom WordPress preprocessor.
func WithWordPressPreprocessor(pre *parserpkg.WordPressPreprocessor) ServiceOption {
	return func(s *Service) {
		if pre != nil {
			s.preprocessor = pre
		}
	}
}

// WithParser overrides the Hugo-style parser used to extract shortcodes.
func WithParser(parser Parser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// NewService constructs a shortcode service using the supplied registry and renderer.
func NewService(registry interfaces.ShortcodeRegistry, renderer *Renderer, opts ...ServiceOption) *Service {
	service := &Service{
		registry:         registry,
		renderer:         renderer,
		parser:           parserpkg.NewHugoParser(),
		preprocessor:     parserpkg.NewWordPressPreprocessor(),
		defaultSanitizer: NewSanitizer(),
		logger:           logging.NoOp(),
		metrics:          NoOpMetrics(),
	}

	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Expand renders every shortcode found within the content string, replacing
// each invocation with its HTML output.
func (s *Service) Expand(ctx interfaces.ShortcodeContext, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	if s.renderer == nil || s.parser == nil {
		return "", fmt.Errorf("shortcode: service not initialised")
	}

	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.Sanitizer == nil {
		ctx.Sanitizer = s.defaultSanitizer
	}

	logger := logging.WithFields(s.baseLogger(ctx.Context), map[string]any{
		"operation": "shortcode.expand",
	})

	material := content
	if s.wordpressEnabled && s.preprocessor != nil {
		material = s.preprocessor.Process(material)
	}

	transformed, parsed, err := s.parser.Extract(material)
	if err != nil {
		logging.WithFields(logger, map[string]any{
			"error": err,
		}).Error("shortcode.service.parse_failed")
		return "", err
	}
	if len(parsed) == 0 {
		return transformed, nil
	}

	rendered := make([]string, len(parsed))
	output := transformed
	for idx, sc := range parsed {
		start := time.Now()
		html, err := s.renderer.Render(ctx, sc.Name, sc.Params, substitutePlaceholders(sc.Inner, rendered[:idx]))
		elapsed := time.Since(start)
		s.metrics.ObserveRenderDuration(sc.Name, elapsed)

		entryFields := map[string]any{
			"shortcode":   sc.Name,
			"index":       idx,
			"duration_ms": elapsed.Milliseconds(),
		}
		if err != nil {
			s.metrics.IncrementRenderError(sc.Name)
			entryFields["error"] = err
			logging.WithFields(logger, entryFields).Error("shortcode.service.render_failed")
			return "", err
		}
		logging.WithFields(logger, entryFields).Debug("shortcode.service.render_succeeded")

		rendered[idx] = string(html)
		output = strings.ReplaceAll(output, fmt.Sprintf(placeholderFormat, idx), rendered[idx])
	}

	logging.WithFields(logger, map[string]any{
		"shortcodes": len(parsed),
	}).Debug("shortcode.service.expand_completed")
	return output, nil
}

// Registry exposes the underlying shortcode registry.
func (s *Service) Registry() interfaces.ShortcodeRegistry {
	return s.registry
}

// substitutePlaceholders resolves placeholders left inside a block shortcode's
// inner content. The parser lists children before their parent, so every
// nested shortcode is already rendered by the time its parent needs it.
func substitutePlaceholders(inner string, rendered []string) string {
	if !strings.Contains(inner, "<!-- shortcode:") {
		return inner
	}
	for idx, html := range rendered {
		inner = strings.ReplaceAll(inner, fmt.Sprintf(placeholderFormat, idx), html)
	}
	return inner
}

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

// Ensure Service complies with interfaces.ShortcodeExpander.
var _ interfaces.ShortcodeExpander = (*Service)(nil)
