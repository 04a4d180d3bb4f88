package shortcode

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Renderer executes shortcode definitions and produces sanitised HTML output.
type Renderer struct {
	registry  interfaces.ShortcodeRegistry
	validator *Validator
	sanitizer interfaces.ShortcodeSanitizer
}

// RendererOption configures the renderer instance.
type RendererOption func(*Renderer)

// WithRendererSanitizer overrides the default sanitizer.
func WithRendererSanitizer(s interfaces.ShortcodeSanitizer) RendererOption {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// NewRenderer constructs a renderer using the provided registry and validator.
func NewRenderer(registry interfaces.ShortcodeRegistry, validator *Validator, opts ...RendererOption) *Renderer {
	r := &Renderer{
		registry:  registry,
		validator: validator,
		sanitizer: NewSanitizer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render executes the shortcode handler and returns sanitised HTML. Unknown
// shortcodes fail with ErrUnknownShortcode so a build never silently drops an
// invocation.
func (r *Renderer) Render(ctx interfaces.ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error) {
	def, ok := r.registry.Get(shortcode)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownShortcode, shortcode)
	}

	coerced, err := r.validator.CoerceParams(def, resolvePositional(def, params))
	if err != nil {
		return "", fmt.Errorf("shortcode %s: %w", shortcode, err)
	}

	if def.Handler == nil {
		return "", fmt.Errorf("shortcode: definition %s has no handler", shortcode)
	}

	result, err := def.Handler(ctx, coerced, inner)
	if err != nil {
		return "", fmt.Errorf("shortcode %s: %w", shortcode, err)
	}
	output := string(result)

	sanitizer := r.resolveSanitizer(ctx)
	if sanitizer != nil {
		sanitised, err := sanitizer.Sanitize(output)
		if err != nil {
			return "", fmt.Errorf("shortcode %s: %w", shortcode, err)
		}
		output = sanitised
	}

	return template.HTML(output), nil
}

// resolvePositional maps bare arguments ({{< youtube dQw4w9WgXcQ >}}) onto the
// schema parameters in declaration order. Explicitly named parameters always
// win over a positional at the same slot.
func resolvePositional(def interfaces.ShortcodeDefinition, params map[string]any) map[string]any {
	if len(params) == 0 || len(def.Schema.Params) == 0 {
		return params
	}

	declared := make(map[string]struct{}, len(def.Schema.Params))
	for _, param := range def.Schema.Params {
		declared[param.Name] = struct{}{}
	}

	out := make(map[string]any, len(params))
	for key, value := range params {
		if _, ok := declared[key]; ok {
			out[key] = value
			continue
		}
		slot, ok := positionalSlot(key)
		if !ok || slot > len(def.Schema.Params) {
			out[key] = value
			continue
		}
		name := def.Schema.Params[slot-1].Name
		if _, taken := out[name]; taken {
			continue
		}
		if _, taken := params[name]; taken {
			continue
		}
		out[name] = value
	}
	return out
}

func positionalSlot(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "param")
	if !ok || rest == "" {
		return 0, false
	}
	slot, err := strconv.Atoi(rest)
	if err != nil || slot < 1 {
		return 0, false
	}
	return slot, true
}

func (r *Renderer) resolveSanitizer(ctx interfaces.ShortcodeContext) interfaces.ShortcodeSanitizer {
	if ctx.Sanitizer != nil {
		return ctx.Sanitizer
	}
	return r.sanitizer
}
