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
	if err := runSync(os.Args[1:]); err != nil {
		log.Fatalf("markdown sync: %v", err)
	}
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("markdown-sync", flag.ExitOnError)
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	locales := fs.String("locales", "", "Comma separated list of locales (defaults to config locales)")
	defaultLocale := fs.String("default-locale", "en", "Default locale for fallback documents")
	directory := fs.String("directory", ".", "Directory to sync, relative to the content root")
	driver := fs.String("driver", "sqlite3", "Catalog database driver: sqlite3 or postgres")
	dsn := fs.String("dsn", "file:blog.db?cache=shared", "Catalog database DSN")
	deleteOrphans := fs.Bool("delete-orphans", false, "Remove catalog entries whose source files are gone")
	dryRun := fs.Bool("dry-run", false, "Report changes without persisting them")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ContentDir:     *contentDir,
		Pattern:        *pattern,
		Recursive:      true,
		DefaultLocale:  *defaultLocale,
		Locales:        bootstrap.SplitLocales(*locales),
		CatalogEnabled: true,
		CatalogDriver:  *driver,
		CatalogDSN:     *dsn,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if module == nil || module.Service == nil {
		return fmt.Errorf("markdown service not configured")
	}
	defer module.Module.Close()

	ctx := context.Background()
	if err := module.Module.EnsureCatalogSchema(ctx); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}

	handler := markdowncmd.NewSyncCatalogHandler(module.Service, module.Logger, markdowncmd.FeatureGates{})
	cmd := markdowncmd.SyncCatalogCommand{
		Directory:      *directory,
		DeleteOrphaned: *deleteOrphans,
		DryRun:         *dryRun,
		ResultCallback: func(result *markdowncmd.SyncCatalogResult) {
			if result == nil {
				return
			}
			fmt.Fprintf(os.Stdout, "created=%d updated=%d deleted=%d unchanged=%d errors=%d\n",
				result.Created, result.Updated, result.Deleted, result.Unchanged, len(result.Errors))
		},
	}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute sync command: %w", err)
	}
	return nil
}
