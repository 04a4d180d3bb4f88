package shortcode

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	youtubeTemplate = template.Must(template.New("youtube").Parse(`<div class="shortcode shortcode--youtube">
  <iframe src="{{ .src }}" title="YouTube video" loading="lazy" allowfullscreen></iframe>
</div>`))

	gistTemplate = template.Must(template.New("gist").Parse(`<div class="shortcode shortcode--gist">
  <script src="{{ .src }}"></script>
</div>`))

	figureTemplate = template.Must(template.New("figure").Parse(`<figure class="shortcode shortcode--figure">
  <img src="{{ .src }}" alt="{{ .alt }}" loading="lazy" />
  {{ if .caption }}<figcaption>{{ .caption }}</figcaption>{{ end }}
</figure>`))

	alertTemplate = template.Must(template.New("alert").Parse(`<div class="shortcode shortcode--alert shortcode--alert-{{ .type }}">
  {{ if .title }}<div class="shortcode__title">{{ .title }}</div>{{ end }}
  <div class="shortcode__body">{{ .Inner }}</div>
</div>`))

	galleryTemplate = template.Must(template.New("gallery").Parse(`<div class="shortcode shortcode--gallery columns-{{ .columns }}">
  {{ range .images }}
    <figure class="shortcode__gallery-item">
      <img src="{{ . }}" loading="lazy" />
    </figure>
  {{ end }}
</div>`))

	codeTemplate = template.Must(template.New("code").Parse(`<div class="shortcode shortcode--code">
  {{ if .title }}<div class="shortcode__code-title">{{ .title }}</div>{{ end }}
  <pre class="shortcode__code-block language-{{ .lang }}{{ if .line_numbers }} shortcode__code-block--lines{{ end }}"><code>{{ .Inner }}</code></pre>
</div>`))
)

// BuiltInDefinitions returns the shortcode catalogue bundled with the blog engine.
func BuiltInDefinitions() []interfaces.ShortcodeDefinition {
	return []interfaces.ShortcodeDefinition{
		youTubeDefinition(),
		gistDefinition(),
		figureDefinition(),
		alertDefinition(),
		galleryDefinition(),
		codeDefinition(),
	}
}

func youTubeDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        "youtube",
		Description: "Embeds a responsive YouTube iframe player",
		AllowInner:  false,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{
					Name:     "id",
					Type:     interfaces.ShortcodeParamString,
					Required: true,
				},
				{
					Name:    "start",
					Type:    interfaces.ShortcodeParamInt,
					Default: 0,
				},
				{
					Name:    "autoplay",
					Type:    interfaces.ShortcodeParamBool,
					Default: false,
				},
			},
		},
		Handler: func(_ interfaces.ShortcodeContext, params map[string]any, _ string) (template.HTML, error) {
			src := "https://www.youtube.com/embed/" + url.PathEscape(stringParam(params, "id"))
			query := url.Values{}
			if start := intParam(params, "start"); start > 0 {
				query.Set("start", strconv.Itoa(start))
			}
			if boolParam(params, "autoplay") {
				query.Set("autoplay", "1")
			}
			if len(query) > 0 {
				src += "?" + query.Encode()
			}
			return renderTemplate(youtubeTemplate, map[string]any{"src": src})
		},
	}
}

func gistDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        "gist",
		Description: "Embeds a GitHub gist",
		AllowInner:  false,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{
					Name:     "user",
					Type:     interfaces.ShortcodeParamString,
					Required: true,
				},
				{
					Name:     "id",
					Type:     interfaces.ShortcodeParamString,
					Required: true,
				},
				{
					Name: "file",
					Type: interfaces.ShortcodeParamString,
				},
			},
		},
		Handler: func(_ interfaces.ShortcodeContext, params map[string]any, _ string) (template.HTML, error) {
			src := fmt.Sprintf("https://gist.github.com/%s/%s.js",
				url.PathEscape(stringParam(params, "user")),
				url.PathEscape(stringParam(params, "id")))
			if file := stringParam(params, "file"); file != "" {
				src += "?file=" + url.QueryEscape(file)
			}
			return renderTemplate(gistTemplate, map[string]any{"src": src})
		},
	}
}

func figureDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        "figure",
		Description: "Image figure with caption support",
		AllowInner:  false,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{
					Name:     "src",
					Type:     interfaces.ShortcodeParamString,
					Required: true,
				},
				{
					Name:    "alt",
					Type:    interfaces.ShortcodeParamString,
					Default: "",
				},
				{
					Name: "caption",
					Type: interfaces.ShortcodeParamString,
				},
			},
		},
		Handler: func(ctx interfaces.ShortcodeContext, params map[string]any, _ string) (template.HTML, error) {
			if ctx.Sanitizer != nil {
				if err := ctx.Sanitizer.ValidateURL(stringParam(params, "src")); err != nil {
					return "", err
				}
			}
			return renderTemplate(figureTemplate, templateData(params))
		},
	}
}

func alertDefinition() interfaces.ShortcodeDefinition {
	validateType := func(value any) error {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("alert type must be string")
		}
		switch str {
		case "info", "success", "warning", "danger":
			return nil
		default:
			return fmt.Errorf("alert type %q not supported", str)
		}
	}

	return interfaces.ShortcodeDefinition{
		Name:        "alert",
		Description: "Displays contextual alert callouts",
		AllowInner:  true,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{
					Name:     "type",
					Type:     interfaces.ShortcodeParamString,
					Required: true,
					Validate: validateType,
				},
				{
					Name: "title",
					Type: interfaces.ShortcodeParamString,
				},
			},
		},
		Handler: func(_ interfaces.ShortcodeContext, params map[string]any, inner string) (template.HTML, error) {
			data := templateData(params)
			// inner is the author's own markup, nested shortcodes included.
			data["Inner"] = template.HTML(inner)
			return renderTemplate(alertTemplate, data)
		},
	}
}

func galleryDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        "gallery",
		Description: "Renders an image gallery grid",
		AllowInner:  false,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{
					Name:     "images",
					Type:     interfaces.ShortcodeParamArray,
					Required: true,
				},
				{
					Name:    "columns",
					Type:    interfaces.ShortcodeParamInt,
					Default: 3,
				},
			},
		},
		Handler: func(_ interfaces.ShortcodeContext, params map[string]any, _ string) (template.HTML, error) {
			return renderTemplate(galleryTemplate, templateData(params))
		},
	}
}

func codeDefinition() interfaces.ShortcodeDefinition {
	return interfaces.ShortcodeDefinition{
		Name:        "code",
		Description: "Syntax highlighted code block",
		AllowInner:  true,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				{
					Name:     "lang",
					Type:     interfaces.ShortcodeParamString,
					Required: true,
				},
				{
					Name: "title",
					Type: interfaces.ShortcodeParamString,
				},
				{
					Name:    "line_numbers",
					Type:    interfaces.ShortcodeParamBool,
					Default: true,
				},
			},
		},
		Handler: func(_ interfaces.ShortcodeContext, params map[string]any, inner string) (template.HTML, error) {
			data := templateData(params)
			// code content stays escaped
			data["Inner"] = inner
			return renderTemplate(codeTemplate, data)
		},
	}
}

func renderTemplate(tmpl *template.Template, data map[string]any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func templateData(params map[string]any) map[string]any {
	data := make(map[string]any, len(params)+1)
	for key, value := range params {
		data[key] = value
	}
	return data
}

func stringParam(params map[string]any, name string) string {
	if value, ok := params[name].(string); ok {
		return value
	}
	return ""
}

func intParam(params map[string]any, name string) int {
	if value, ok := params[name].(int); ok {
		return value
	}
	return 0
}

func boolParam(params map[string]any, name string) bool {
	if value, ok := params[name].(bool); ok {
		return value
	}
	return false
}
