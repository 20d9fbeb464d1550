// Package main 片库导入工具：从 TMDb 拉取影片、计算情绪向量并写入 Postgres 与相似度索引
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mudi-match-api/internal/config"
	"mudi-match-api/internal/wire"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	pages := flag.Int("pages", 0, "discover pages to fetch (0 uses seeder.pages)")
	region := flag.String("region", "", "watch region (empty uses seeder.region)")
	dryRun := flag.Bool("dry-run", false, "fetch and classify without writing")
	reindex := flag.Bool("reindex", false, "rebuild the similarity index from the database only")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *pages > 0 {
		cfg.Seeder.Pages = *pages
	}
	if *region != "" {
		cfg.Seeder.Region = *region
	}
	cfg.Seeder.DryRun = cfg.Seeder.DryRun || *dryRun

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "seeder",
		Environment: cfg.App.Env,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if cfg.Vector.Backend == "memory" && !*reindex {
		logger.Warn(ctx, "memory backend selected, index writes are discarded when the seeder exits")
	}

	layer, cleanup, err := wire.InitializeSeeder(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize seeder", err)
	}
	defer cleanup()

	if *reindex {
		n, err := layer.Seeder.Reindex(ctx)
		if err != nil {
			logger.Fatal(ctx, "reindex failed", err, "indexed", n)
		}
		fmt.Printf("reindexed %d movies\n", n)
		return
	}

	logger.Info(ctx, "seeding catalog",
		"pages", cfg.Seeder.Pages,
		"region", cfg.Seeder.Region,
		"providers", cfg.Seeder.Providers,
		"dry_run", cfg.Seeder.DryRun,
	)
	report, err := layer.Seeder.Run(ctx)
	if err != nil {
		logger.Fatal(ctx, "seeding failed", err)
	}

	counts, err := layer.Movies.CountByMood(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to count catalog by mood", "error", err.Error())
	}
	fmt.Printf("pages=%d fetched=%d skipped=%d seeded=%d\n", report.Pages, report.Fetched, report.Skipped, report.Seeded)
	for mood, n := range counts {
		fmt.Printf("  %-12s %d\n", mood, n)
	}
}
