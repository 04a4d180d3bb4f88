package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-blog/cmd/markdown/internal/bootstrap"
	slug "github.com/goliatone/go-slug"
)

var timeNow = time.Now

func main() {
	if err := runNew(os.Args[1:]); err != nil {
		log.Fatalf("markdown new: %v", err)
	}
}

func runNew(args []string) error {
	fs := flag.NewFlagSet("markdown-new", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	title := fs.String("title", "", "Article title (required)")
	locale := fs.String("locale", "", "Locale subdirectory for the article")
	tags := fs.String("tags", "", "Comma separated list of tags")
	draft := fs.Bool("draft", true, "Create the article as a draft")
	force := fs.Bool("force", false, "Overwrite an existing file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		return fmt.Errorf("title is required")
	}

	path, err := scaffoldArticle(scaffoldOptions{
		ContentDir: *contentDir,
		Title:      *title,
		Locale:     *locale,
		Tags:       bootstrap.SplitLocales(*tags),
		Draft:      *draft,
		Force:      *force,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, path)
	return nil
}

type scaffoldOptions struct {
	ContentDir string
	Title      string
	Locale     string
	Tags       []string
	Draft      bool
	Force      bool
}

// scaffoldArticle writes a new article skeleton and returns its path.
func scaffoldArticle(opts scaffoldOptions) (string, error) {
	name, err := slug.Normalize(strings.TrimSpace(opts.Title))
	if err != nil || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("derive slug from title %q: %w", opts.Title, err)
	}

	dir := opts.ContentDir
	if locale := strings.TrimSpace(opts.Locale); locale != "" {
		dir = filepath.Join(dir, locale)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create content directory: %w", err)
	}

	path := filepath.Join(dir, name+".md")
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use -force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(frontMatterSkeleton(opts)), 0o644); err != nil {
		return "", fmt.Errorf("write article: %w", err)
	}
	return path, nil
}

func frontMatterSkeleton(opts scaffoldOptions) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", strings.TrimSpace(opts.Title))
	fmt.Fprintf(&b, "date: %s\n", timeNow().Format("2006-01-02"))
	if opts.Draft {
		b.WriteString("status: draft\n")
	} else {
		b.WriteString("status: published\n")
	}
	if locale := strings.TrimSpace(opts.Locale); locale != "" {
		fmt.Fprintf(&b, "locale: %s\n", locale)
	}
	if len(opts.Tags) > 0 {
		fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(opts.Tags, ", "))
	}
	b.WriteString("summary: \"\"\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n", strings.TrimSpace(opts.Title))
	return b.String()
}
