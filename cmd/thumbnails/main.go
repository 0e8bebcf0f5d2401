// Command thumbnails pregenerates the featured-image renditions of every
// published article, so they are already on disk when pages are served.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-newsblog-app/internal/config"
	"go-newsblog-app/internal/data"
	"go-newsblog-app/internal/logger"
	"go-newsblog-app/internal/thumbnail"
)

func main() {
	workers := flag.Int("workers", 0, "number of concurrent workers (0 = one per CPU)")
	mediaDir := flag.String("media", "media", "directory containing the source images")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log, nil)

	db, err := data.NewDB("mysql", cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := data.NewSQLArticleRepository(db)
	gen := &thumbnail.FileGenerator{MediaDir: *mediaDir}
	pregen := thumbnail.NewPregenerator(repo, gen, *workers, log)

	report, err := pregen.Run(ctx)
	if err != nil {
		log.Fatal(err, "Thumbnail generation aborted")
	}

	log.Info(fmt.Sprintf("Generated thumbnails for %d of %d articles (%d failed)",
		report.Total-report.Failed, report.Total, report.Failed))
	if report.Failed > 0 {
		os.Exit(1)
	}
}
