// Command generate runs one generation batch from the command line and
// exits. It produces the same artifacts as a server-submitted run, so
// the review server can curate its output afterwards.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/stockpix/stockpix/internal/config"
	"github.com/stockpix/stockpix/internal/domain"
	"github.com/stockpix/stockpix/internal/platform/gemini"
	"github.com/stockpix/stockpix/internal/platform/logger"
	"github.com/stockpix/stockpix/internal/platform/openai"
	"github.com/stockpix/stockpix/internal/platform/s3"
	"github.com/stockpix/stockpix/internal/service"
	"github.com/stockpix/stockpix/internal/store"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("generate: %v", err)
	}
}

func run(ctx context.Context) error {
	var (
		keyword string
		tags    []string
		style   string
		count   int
	)
	pflag.StringVar(&keyword, "keyword", "", "theme the run is generated around (required)")
	pflag.StringSliceVar(&tags, "tags", nil, "mandatory keywords included in every image's metadata")
	pflag.StringVar(&style, "style", "", "style hint appended to every prompt")
	pflag.IntVar(&count, "count", 10, "number of images to generate")
	pflag.Parse()

	if strings.TrimSpace(keyword) == "" {
		pflag.Usage()
		return fmt.Errorf("--keyword is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logg := logger.Setup(cfg.Server)

	objects, err := s3.New(ctx, s3.Options{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Prefix:   cfg.Storage.Prefix,
	}, logg)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}
	manifests := store.NewManifestStore(objects, logg)
	history := store.NewHistoryStore(objects)

	textGen, err := gemini.NewGenerator(ctx, logg, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create text generator: %w", err)
	}
	imageGen, err := openai.NewImageClient(cfg.ImageGen, nil, logg)
	if err != nil {
		return fmt.Errorf("failed to create image client: %w", err)
	}

	runs, err := service.NewRunService(textGen, textGen, imageGen, objects, manifests, history, logg)
	if err != nil {
		return fmt.Errorf("failed to create run service: %w", err)
	}

	manifest, err := runs.StartRun(ctx, domain.RunParams{
		Keyword: keyword,
		Tags:    tags,
		Model:   cfg.ImageGen.Model,
		Size:    cfg.ImageGen.Size,
		Quality: cfg.ImageGen.Quality,
		Style:   style,
		Count:   count,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "run %s completed: %d images generated\n",
		manifest.RunID, len(manifest.Records))
	return nil
}
