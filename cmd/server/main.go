package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/david/licita-radar/internal/api"
	"github.com/david/licita-radar/internal/config"
	"github.com/david/licita-radar/internal/dashboard"
	"github.com/david/licita-radar/internal/format"
	"github.com/david/licita-radar/internal/loader"
	"github.com/david/licita-radar/internal/render"
)

func main() {
	cfg, err := config.Load(os.Getenv("DASHBOARD_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using %s: %v", cfg.Display.Timezone, format.Santiago, err)
		loc = format.Santiago
	}

	fetcher, err := loader.NewHTTPFetcher(cfg.Data.BaseURL, cfg.Data.UserAgent)
	if err != nil {
		log.Fatalf("Invalid data base URL: %v", err)
	}

	// A failed load is not fatal; the server keeps answering with the error page.
	ctrl := dashboard.New(loc)
	if err := ctrl.Load(context.Background(), fetcher, cfg.Data.MetaPath, cfg.Data.OpportunitiesPath); err != nil {
		log.Printf("Failed to load data from %s: %v", cfg.Data.BaseURL, err)
	} else {
		log.Printf("Loaded %d opportunities from %s", len(ctrl.All()), cfg.Data.BaseURL)
	}

	renderer, err := render.New(render.Options{
		Title:      cfg.Title,
		IssueHost:  cfg.Display.IssueHost,
		IssueLabel: cfg.Display.IssueLabel,
		BannerHTML: cfg.Display.BannerHTML,
	})
	if err != nil {
		log.Fatalf("Failed to prepare renderer: %v", err)
	}

	srv := api.NewServer(cfg, ctrl, renderer)
	log.Printf("Server starting on port %d...", cfg.Server.Port)
	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
