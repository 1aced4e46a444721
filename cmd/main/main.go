package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"winesearcher/parser/internal/config"
	"winesearcher/parser/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	inputPath := flag.String("input", "input/wine_names.txt", "path to the wine query list, one query per line")
	flag.Parse()

	log.Info("Starting Wine-Searcher parser...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer app.Close()

	// Cancel the run on SIGINT/SIGTERM; the checkpoint keeps partial progress.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run the application
	if err := app.Run(ctx, *inputPath); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}

	log.Info("Application finished successfully")
}
