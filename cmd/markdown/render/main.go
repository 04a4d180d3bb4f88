package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-blog/cmd/markdown/internal/bootstrap"
	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runRender(os.Args[1:]); err != nil {
		log.Fatalf("markdown render: %v", err)
	}
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("markdown-render", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	input := fs.String("input", "", "Markdown file to render, relative to the content root")
	output := fs.String("output", "", "Output path (defaults to the input path with an .html extension)")
	standalone := fs.Bool("standalone", true, "Emit a complete HTML document instead of a body fragment")
	math := fs.String("math", "", "Math rendering mode: none, mathjax, or katex")
	highlightStyle := fs.String("highlight-style", "", "Chroma style used for syntax highlighting")
	template := fs.String("template", "", "Theme template name recorded on the rendered article")
	tocDepth := fs.Int("toc-depth", 0, "Table of contents depth (0 disables the outline)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("input is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:     *contentDir,
		Recursive:      true,
		MathMode:       *math,
		HighlightStyle: *highlightStyle,
		TOCDepth:       *tocDepth,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Service == nil {
		return fmt.Errorf("markdown service not configured")
	}

	handler := markdowncmd.NewRenderArticleHandler(module.Service, markdowncmd.RenderDefaults{}, module.Logger, markdowncmd.FeatureGates{})

	cmd := markdowncmd.RenderArticleCommand{
		Path:           *input,
		Output:         *output,
		Standalone:     *standalone,
		Template:       *template,
		Math:           *math,
		HighlightStyle: *highlightStyle,
		TOCDepth:       *tocDepth,
		ResultCallback: func(result markdowncmd.RenderArticleResult) {
			fmt.Fprintln(os.Stdout, result.Output)
		},
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute render command: %w", err)
	}
	return nil
}
