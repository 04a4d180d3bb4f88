package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	defaultAddr     = ":8080"
	defaultDebounce = 100 * time.Millisecond
	reloadPath      = "/__reload"
)

// ErrGeneratorRequired indicates the preview server was constructed without
// a generator to rebuild the site with.
var ErrGeneratorRequired = errors.New("server: generator service is required")

// Config controls the preview server.
type Config struct {
	Addr      string
	OutputDir string
	// WatchDirs lists directories whose changes trigger a rebuild,
	// typically the content and themes trees.
	WatchDirs []string
	Watch     bool
	Debounce  time.Duration
}

// Option customises the server.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server serves the generated site during authoring, rebuilding on file
// changes and pushing reload events to connected browsers over SSE.
type Server struct {
	cfg       Config
	generator generator.Service
	logger    interfaces.Logger

	mu      sync.Mutex
	clients map[chan string]struct{}

	rebuildMu    sync.Mutex
	rebuildTimer *time.Timer

	// buildMu serialises generator runs: a change arriving while a build
	// is in flight waits for it instead of racing over the output tree.
	buildMu sync.Mutex
}

// New constructs a preview server over the given generator.
func New(cfg Config, gen generator.Service, opts ...Option) (*Server, error) {
	if gen == nil {
		return nil, ErrGeneratorRequired
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	s := &Server{
		cfg:       cfg,
		generator: gen,
		logger:    logging.NoOp(),
		clients:   map[chan string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run builds the site, serves it, and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.generator.Build(ctx, generator.BuildOptions{}); err != nil {
		return fmt.Errorf("server: initial build: %w", err)
	}

	var watcher *fsnotify.Watcher
	if s.cfg.Watch {
		var err error
		watcher, err = s.startWatcher(ctx)
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	mux := http.NewServeMux()
	mux.HandleFunc(reloadPath, s.handleReload)
	mux.Handle("/", s.siteHandler())

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", s.cfg.Addr, "dir", s.cfg.OutputDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// startWatcher wires fsnotify over every watch directory and schedules
// debounced rebuilds on change.
func (s *Server) startWatcher(ctx context.Context) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("server: create watcher: %w", err)
	}

	for _, dir := range s.cfg.WatchDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if err := addRecursive(watcher, dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if !hiddenPath(event.Name) {
							_ = watcher.Add(event.Name)
						}
					}
				}
				if relevantEvent(event) {
					s.scheduleRebuild(ctx)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("watcher error", "error", err)
			}
		}
	}()

	return watcher, nil
}

// scheduleRebuild coalesces rapid change bursts into a single rebuild.
func (s *Server) scheduleRebuild(ctx context.Context) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	if s.rebuildTimer != nil {
		s.rebuildTimer.Stop()
	}
	s.rebuildTimer = time.AfterFunc(s.cfg.Debounce, func() {
		s.rebuild(ctx)
	})
}

func (s *Server) rebuild(ctx context.Context) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	result, err := s.generator.Build(ctx, generator.BuildOptions{})
	if err != nil {
		s.logger.Error("rebuild failed", "error", err)
		return
	}
	s.logger.Info("site rebuilt",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.broadcast("reload")
}

// handleReload implements the SSE endpoint browsers subscribe to for
// reload notifications.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan string, 4)
	s.addClient(events)
	defer s.removeClient(events)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) addClient(events chan string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[events] = struct{}{}
}

func (s *Server) removeClient(events chan string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, events)
}

func (s *Server) broadcast(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		select {
		case client <- msg:
		default:
		}
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		close(client)
		delete(s.clients, client)
	}
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("server: watch %s: %w", path, err)
		}
		return nil
	})
}

func hiddenPath(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func relevantEvent(event fsnotify.Event) bool {
	if hiddenPath(event.Name) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
