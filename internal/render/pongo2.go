package render

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	pongo2 "github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	ErrTemplateNameRequired = errors.New("render: template name required")
	ErrFilterNameRequired   = errors.New("render: filter name required")
	ErrFilterFuncRequired   = errors.New("render: filter function required")
	ErrUnsupportedContext   = errors.New("render: context must be a map")
)

// TemplateResolver maps a logical template name (article, index, tag) to a
// file path inside the renderer's template root.
type TemplateResolver func(name string) (string, error)

// Option configures the renderer.
type Option func(*Pongo2Renderer)

// WithResolver installs the logical-name resolver used by Render.
func WithResolver(resolver TemplateResolver) Option {
	return func(r *Pongo2Renderer) {
		if resolver != nil {
			r.resolver = resolver
		}
	}
}

// WithGlobals seeds the global template context.
func WithGlobals(globals map[string]any) Option {
	return func(r *Pongo2Renderer) {
		for key, value := range globals {
			r.set.Globals[key] = value
		}
	}
}

// Pongo2Renderer implements interfaces.TemplateRenderer on top of a pongo2
// template set rooted at a theme package. Template and include paths are
// root-relative (templates/article.html, partials/header.html).
//
// Globals and filters are expected to be configured before rendering starts;
// renders themselves are safe to run concurrently.
type Pongo2Renderer struct {
	set      *pongo2.TemplateSet
	resolver TemplateResolver
	mu       sync.Mutex
}

var _ interfaces.TemplateRenderer = (*Pongo2Renderer)(nil)

// NewPongo2Renderer builds a renderer over the given template root. A nil
// root still supports RenderString and RenderTemplate against the working
// directory.
func NewPongo2Renderer(root fs.FS, opts ...Option) (*Pongo2Renderer, error) {
	var loader pongo2.TemplateLoader
	if root != nil {
		fsLoader, err := pongo2.NewHttpFileSystemLoader(http.FS(root), "")
		if err != nil {
			return nil, fmt.Errorf("render: template loader: %w", err)
		}
		loader = fsLoader
	} else {
		loader = pongo2.MustNewLocalFileSystemLoader("")
	}

	r := &Pongo2Renderer{
		set: pongo2.NewSet("blog", loader),
	}
	r.resolver = func(name string) (string, error) { return name, nil }

	registerBuiltinFilters()

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render resolves a logical template name through the configured resolver
// and executes it.
func (r *Pongo2Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrTemplateNameRequired
	}
	path, err := r.resolver(name)
	if err != nil {
		return "", err
	}
	return r.RenderTemplate(path, data, out...)
}

// RenderTemplate executes the template at the given root-relative path.
func (r *Pongo2Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrTemplateNameRequired
	}
	template, err := r.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("render: load template %s: %w", name, err)
	}
	return r.execute(template, data, out...)
}

// RenderString compiles and executes an inline template.
func (r *Pongo2Renderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	template, err := r.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("render: parse inline template: %w", err)
	}
	return r.execute(template, data, out...)
}

// RegisterFilter adapts a plain filter function onto pongo2's filter
// registry. Re-registering a name replaces the previous filter.
func (r *Pongo2Renderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrFilterNameRequired
	}
	if fn == nil {
		return ErrFilterFuncRequired
	}

	wrapped := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramValue any
		if param != nil {
			paramValue = param.Interface()
		}
		result, err := fn(in.Interface(), paramValue)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, wrapped)
	}
	return pongo2.RegisterFilter(name, wrapped)
}

// GlobalContext merges data into the globals available to every template.
func (r *Pongo2Renderer) GlobalContext(data any) error {
	ctx, err := toContext(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range ctx {
		r.set.Globals[key] = value
	}
	return nil
}

func (r *Pongo2Renderer) execute(template *pongo2.Template, data any, out ...io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}

	result, err := template.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}

	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, result); err != nil {
			return "", fmt.Errorf("render: write output: %w", err)
		}
	}
	return result, nil
}

func toContext(data any) (pongo2.Context, error) {
	switch typed := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return typed, nil
	case map[string]any:
		return pongo2.Context(typed), nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrUnsupportedContext, data)
	}
}

var builtinFiltersOnce sync.Once

// registerBuiltinFilters installs the blog's template filters. pongo2 keeps
// a process-wide filter registry, so registration happens once.
func registerBuiltinFilters() {
	builtinFiltersOnce.Do(func() {
		mustRegister("dateformat", filterDateFormat)
		mustRegister("absurl", filterAbsURL)
		mustRegister("readingtime", filterReadingTime)
	})
}

func mustRegister(name string, fn pongo2.FilterFunction) {
	if pongo2.FilterExists(name) {
		return
	}
	if err := pongo2.RegisterFilter(name, fn); err != nil {
		panic(err)
	}
}

const defaultDateLayout = "January 2, 2006"

func filterDateFormat(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	layout := defaultDateLayout
	if param != nil && !param.IsNil() {
		if s := strings.TrimSpace(param.String()); s != "" {
			layout = s
		}
	}

	switch value := in.Interface().(type) {
	case time.Time:
		return pongo2.AsValue(value.Format(layout)), nil
	case *time.Time:
		if value == nil {
			return pongo2.AsValue(""), nil
		}
		return pongo2.AsValue(value.Format(layout)), nil
	case string:
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return pongo2.AsValue(value), nil
		}
		return pongo2.AsValue(parsed.Format(layout)), nil
	default:
		return nil, &pongo2.Error{
			Sender:    "filter:dateformat",
			OrigError: fmt.Errorf("dateformat expects a time value, got %T", value),
		}
	}
}

func filterAbsURL(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	rawPath := in.String()
	if strings.HasPrefix(rawPath, "http://") || strings.HasPrefix(rawPath, "https://") {
		return pongo2.AsValue(rawPath), nil
	}

	base := ""
	if param != nil && !param.IsNil() {
		base = strings.TrimSpace(param.String())
	}
	if base == "" {
		return pongo2.AsValue("/" + strings.TrimLeft(rawPath, "/")), nil
	}
	return pongo2.AsValue(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rawPath, "/")), nil
}

const defaultWordsPerMinute = 220

func filterReadingTime(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	words := in.Integer()
	if words <= 0 {
		return pongo2.AsValue("1 min read"), nil
	}

	perMinute := defaultWordsPerMinute
	if param != nil && !param.IsNil() {
		if v := param.Integer(); v > 0 {
			perMinute = v
		}
	}

	minutes := int(math.Ceil(float64(words) / float64(perMinute)))
	if minutes < 1 {
		minutes = 1
	}
	return pongo2.AsValue(fmt.Sprintf("%d min read", minutes)), nil
}
