package markdown

import "strings"

// Math rendering modes. Markup always passes through the parser untouched;
// the mode decides which client-side script renders it in the browser.
const (
	MathNone    = "none"
	MathJax     = "mathjax"
	MathKaTeX   = "katex"
	mathJaxCDN  = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"
	kaTeXBase   = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist"
	kaTeXOnLoad = "renderMathInElement(document.body,{delimiters:[{left:'\\\\(',right:'\\\\)',display:false},{left:'\\\\[',right:'\\\\]',display:true},{left:'$$',right:'$$',display:true}]});"
)

// NormalizeMathMode lowers and trims the supplied mode, mapping the empty
// string to MathNone.
func NormalizeMathMode(mode string) string {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return MathNone
	}
	return mode
}

func mathEnabled(mode string) bool {
	switch NormalizeMathMode(mode) {
	case MathJax, MathKaTeX:
		return true
	default:
		return false
	}
}

// MathScriptTags returns the script and stylesheet markup a standalone page
// needs for the given math mode. The empty string disables injection.
func MathScriptTags(mode string) string {
	switch NormalizeMathMode(mode) {
	case MathJax:
		return `<script async src="` + mathJaxCDN + `"></script>`
	case MathKaTeX:
		var b strings.Builder
		b.WriteString(`<link rel="stylesheet" href="` + kaTeXBase + `/katex.min.css">`)
		b.WriteString("\n")
		b.WriteString(`<script defer src="` + kaTeXBase + `/katex.min.js"></script>`)
		b.WriteString("\n")
		b.WriteString(`<script defer src="` + kaTeXBase + `/contrib/auto-render.min.js" onload="` + kaTeXOnLoad + `"></script>`)
		return b.String()
	default:
		return ""
	}
}
