package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-blog/cmd/site/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runServe(os.Args[1:]); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("site serve: %v", err)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("site-serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a JSON configuration file")
	contentDir := fs.String("content-dir", "", "Path to the markdown content root")
	outputDir := fs.String("output", "", "Directory the generated site is written to")
	addr := fs.String("addr", ":8090", "Address the preview server listens on")
	watch := fs.Bool("watch", true, "Rebuild and reload on content changes")
	drafts := fs.Bool("drafts", false, "Include draft articles")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath:    *configPath,
		ContentDir:    *contentDir,
		OutputDir:     *outputDir,
		IncludeDrafts: *drafts,
		Preview:       true,
		PreviewAddr:   *addr,
		Watch:         watch,
	})
	if err != nil {
		return err
	}
	defer module.Module.Close()

	preview := module.Module.Preview()
	if preview == nil {
		return fmt.Errorf("preview server not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return preview.Run(ctx)
}
