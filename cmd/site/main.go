package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-blog/cmd/site/internal/bootstrap"
	sitecmd "github.com/goliatone/go-blog/internal/commands/site"
	"github.com/goliatone/go-blog/internal/generator"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("site: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: site <build|diff|clean|sitemap> [flags]")
	}

	command := args[0]
	switch command {
	case "build", "diff", "clean", "sitemap":
	default:
		return fmt.Errorf("unknown command %q (expected build, diff, clean, or sitemap)", command)
	}

	fs := flag.NewFlagSet("site-"+command, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a JSON configuration file")
	contentDir := fs.String("content-dir", "", "Path to the markdown content root")
	staticDir := fs.String("static-dir", "", "Path to static files copied into the output")
	outputDir := fs.String("output", "", "Directory the generated site is written to")
	baseURL := fs.String("base-url", "", "Canonical site URL for permalinks and feeds")
	theme := fs.String("theme", "", "Theme name")
	variant := fs.String("variant", "", "Theme variant")
	slugs := fs.String("slug", "", "Comma separated article slugs to build (default all)")
	locales := fs.String("locale", "", "Comma separated locales to build (default all)")
	drafts := fs.Bool("drafts", false, "Include draft articles")
	incremental := fs.Bool("incremental", false, "Skip pages whose sources are unchanged")
	assetsOnly := fs.Bool("assets", false, "Copy assets without rendering pages")
	force := fs.Bool("force", false, "Rebuild everything, ignoring the manifest")
	dryRun := fs.Bool("dry-run", false, "Report what would be built without writing")
	workers := fs.Int("workers", 0, "Render worker count (0 = one per locale)")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath:    *configPath,
		ContentDir:    *contentDir,
		StaticDir:     *staticDir,
		OutputDir:     *outputDir,
		BaseURL:       *baseURL,
		Theme:         *theme,
		Variant:       *variant,
		IncludeDrafts: *drafts,
		Incremental:   *incremental,
		Workers:       *workers,
	})
	if err != nil {
		return err
	}
	defer module.Module.Close()

	ctx := context.Background()
	service := module.Module.Generator()
	gates := sitecmd.FeatureGates{}

	switch command {
	case "build":
		handler := sitecmd.NewBuildSiteHandler(service, module.Logger, gates)
		return handler.Execute(ctx, sitecmd.BuildSiteCommand{
			Slugs:      bootstrap.SplitList(*slugs),
			Locales:    bootstrap.SplitList(*locales),
			Force:      *force,
			DryRun:     *dryRun,
			AssetsOnly: *assetsOnly,
			ResultCallback: func(envelope sitecmd.ResultEnvelope) {
				printResult(envelope.Result)
			},
		})
	case "diff":
		handler := sitecmd.NewDiffSiteHandler(service, module.Logger, gates)
		return handler.Execute(ctx, sitecmd.DiffSiteCommand{
			Slugs:   bootstrap.SplitList(*slugs),
			Locales: bootstrap.SplitList(*locales),
			Force:   *force,
			ResultCallback: func(envelope sitecmd.ResultEnvelope) {
				printDiff(envelope.Result)
			},
		})
	case "clean":
		handler := sitecmd.NewCleanSiteHandler(service, module.Logger, gates)
		return handler.Execute(ctx, sitecmd.CleanSiteCommand{})
	case "sitemap":
		handler := sitecmd.NewBuildSitemapHandler(service, module.Logger, gates)
		return handler.Execute(ctx, sitecmd.BuildSitemapCommand{})
	}
	return nil
}

func printResult(result *generator.BuildResult) {
	if result == nil {
		return
	}
	fmt.Fprintf(os.Stdout, "pages=%d skipped=%d assets=%d feeds=%d duration=%s\n",
		result.PagesBuilt, result.PagesSkipped, result.AssetsBuilt, result.FeedsBuilt, result.Duration)
}

func printDiff(result *generator.BuildResult) {
	if result == nil {
		return
	}
	for _, page := range result.Rendered {
		fmt.Fprintf(os.Stdout, "would build %s\n", page.Output)
	}
	fmt.Fprintf(os.Stdout, "pages=%d skipped=%d\n", result.PagesBuilt, result.PagesSkipped)
}
