package themes

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	blogthemes "github.com/goliatone/go-blog/themes"
	gotheme "github.com/goliatone/go-theme"
)

var (
	ErrThemeNotFound    = errors.New("themes: theme not found")
	ErrTemplateNotFound = errors.New("themes: template not found")
	ErrNotLoaded        = errors.New("themes: themes not loaded")
)

// Config controls theme discovery and selection.
type Config struct {
	// BasePath points at a directory holding theme packages
	// (<base>/<name>/theme.json). Empty means builtin themes only.
	BasePath       string
	DefaultTheme   string
	DefaultVariant string
}

// Option configures the theme service.
type Option func(*Service)

// WithLogger overrides the default no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSource registers an additional theme filesystem. Sources load in
// registration order and later sources override earlier ones by name; the
// configured BasePath always loads last.
func WithSource(source fs.FS) Option {
	return func(s *Service) {
		if source != nil {
			s.sources = append(s.sources, source)
		}
	}
}

type themeEntry struct {
	theme    *Theme
	root     fs.FS
	manifest *gotheme.Manifest
}

// Service discovers theme packages and resolves templates, assets, and
// go-theme selections for the build pipeline.
type Service struct {
	cfg     Config
	logger  interfaces.Logger
	sources []fs.FS

	mu       sync.RWMutex
	entries  map[string]*themeEntry
	registry *gotheme.MemoryRegistry
}

// NewService constructs a theme service. The bundled default theme is always
// available; themes under cfg.BasePath override builtins sharing a name.
func NewService(cfg Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		logger:  logging.NoOp(),
		sources: []fs.FS{blogthemes.BuiltinFS()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll scans every source for theme packages and registers their
// manifests. It replaces any previously loaded state, so the dev server can
// call it again after theme files change.
func (s *Service) LoadAll() error {
	sources := append([]fs.FS{}, s.sources...)
	if base := strings.TrimSpace(s.cfg.BasePath); base != "" {
		sources = append(sources, os.DirFS(base))
	}

	entries := map[string]*themeEntry{}
	registry := gotheme.NewRegistry()

	for _, source := range sources {
		discovered, err := s.discoverThemes(source)
		if err != nil {
			return err
		}
		for _, entry := range discovered {
			entries[strings.ToLower(entry.theme.Name)] = entry
		}
	}

	for _, entry := range entries {
		if err := registry.Register(entry.manifest); err != nil {
			return fmt.Errorf("themes: register manifest %s: %w", entry.theme.Name, err)
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.registry = registry
	s.mu.Unlock()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	s.logger.Debug("themes loaded", "count", len(names), "themes", strings.Join(names, ","))
	return nil
}

func (s *Service) discoverThemes(source fs.FS) ([]*themeEntry, error) {
	dirEntries, err := fs.ReadDir(source, ".")
	if err != nil {
		// A configured theme directory that does not exist on disk is not
		// an error: the embedded default theme still serves the site.
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("themes: scan theme directory: %w", err)
	}

	var discovered []*themeEntry
	for _, dir := range dirEntries {
		if !dir.IsDir() {
			continue
		}
		data, err := fs.ReadFile(source, path.Join(dir.Name(), ManifestFileName))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("themes: read manifest %s: %w", dir.Name(), err)
		}

		manifest, err := ParseManifest(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("themes: theme %s: %w", dir.Name(), err)
		}
		record, err := ManifestToTheme(dir.Name(), manifest)
		if err != nil {
			return nil, fmt.Errorf("themes: theme %s: %w", dir.Name(), err)
		}

		root, err := fs.Sub(source, dir.Name())
		if err != nil {
			return nil, fmt.Errorf("themes: open theme %s: %w", dir.Name(), err)
		}

		discovered = append(discovered, &themeEntry{
			theme:    record,
			root:     root,
			manifest: s.loadThemeManifest(root, record),
		})
	}
	return discovered, nil
}

// loadThemeManifest resolves the go-theme manifest for variant and token
// selection. Theme packages that only carry the blog manifest keys still
// register, so selection degrades to name and version instead of failing
// the whole load.
func (s *Service) loadThemeManifest(root fs.FS, record *Theme) *gotheme.Manifest {
	manifest, err := gotheme.LoadDir(root, ".")
	if err != nil {
		s.logger.Debug("theme manifest not loadable by go-theme, registering minimal manifest",
			"theme", record.Name, "error", err)
		return &gotheme.Manifest{
			Name:    strings.TrimSpace(record.Name),
			Version: strings.TrimSpace(record.Version),
		}
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, record.Name) {
		normalized.Name = strings.TrimSpace(record.Name)
	}
	if strings.TrimSpace(normalized.Version) == "" {
		normalized.Version = strings.TrimSpace(record.Version)
	}
	return &normalized
}

// Get returns the theme registered under name.
func (s *Service) Get(name string) (*Theme, error) {
	entry, err := s.entry(name)
	if err != nil {
		return nil, err
	}
	return entry.theme, nil
}

// Default returns the configured default theme, falling back to the builtin.
func (s *Service) Default() (*Theme, error) {
	return s.Get(s.defaultName())
}

// List returns every loaded theme ordered by name.
func (s *Service) List() []*Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Theme, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry.theme)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// FS exposes the theme package root for template loading and asset copying.
func (s *Service) FS(name string) (fs.FS, error) {
	entry, err := s.entry(name)
	if err != nil {
		return nil, err
	}
	return entry.root, nil
}

// Select resolves a go-theme selection for the named theme and variant.
// Empty arguments fall back to the configured defaults.
func (s *Service) Select(name, variant string) (*gotheme.Selection, error) {
	entry, err := s.entry(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	registry := s.registry
	s.mu.RUnlock()

	selector := gotheme.Selector{
		Registry:       registry,
		DefaultTheme:   s.defaultName(),
		DefaultVariant: strings.TrimSpace(s.cfg.DefaultVariant),
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = strings.TrimSpace(s.cfg.DefaultVariant)
	}

	selection, err := selector.Select(entry.theme.Name, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("themes: select theme %s: %w", entry.theme.Name, err)
	}
	return selection, nil
}

// TemplatePath resolves a logical template name to a file inside the theme
// package. Lookup order: manifest templates map, then templates/<name>.html.
func (s *Service) TemplatePath(name, template string) (string, error) {
	entry, err := s.entry(name)
	if err != nil {
		return "", err
	}

	template = strings.TrimSpace(template)
	if template == "" {
		return "", fmt.Errorf("themes: template name required: %w", ErrTemplateNotFound)
	}

	if mapped, ok := entry.theme.Config.Templates[template]; ok {
		mapped = strings.TrimSpace(mapped)
		if mapped != "" {
			if _, err := fs.Stat(entry.root, mapped); err == nil {
				return mapped, nil
			}
			return "", fmt.Errorf("themes: theme %s maps template %q to missing file %s: %w",
				entry.theme.Name, template, mapped, ErrTemplateNotFound)
		}
	}

	conventional := path.Join("templates", template+".html")
	if _, err := fs.Stat(entry.root, conventional); err == nil {
		return conventional, nil
	}

	return "", fmt.Errorf("themes: theme %s has no template %q (checked manifest templates and %s): %w",
		entry.theme.Name, template, conventional, ErrTemplateNotFound)
}

func (s *Service) entry(name string) (*themeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entries == nil {
		return nil, ErrNotLoaded
	}

	resolved := strings.TrimSpace(name)
	if resolved == "" {
		resolved = s.defaultName()
	}
	entry, ok := s.entries[strings.ToLower(resolved)]
	if !ok {
		return nil, fmt.Errorf("themes: %s: %w", resolved, ErrThemeNotFound)
	}
	return entry, nil
}

func (s *Service) defaultName() string {
	if name := strings.TrimSpace(s.cfg.DefaultTheme); name != "" {
		return name
	}
	return DefaultThemeName
}
