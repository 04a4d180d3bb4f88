// Package markdown implements the conversion pipeline that turns article
// sources into HTML: frontmatter extraction, goldmark parsing with GFM,
// math passthrough, syntax highlighting, and table of contents rendering.
// Parsing, typesetting, and highlighting are delegated to their respective
// libraries; this package only configures and composes them.
package markdown
