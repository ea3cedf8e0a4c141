package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/cardapiolab/menugrab/config"
	"github.com/cardapiolab/menugrab/scrape"
)

// menugrab-cli runs a single extraction cascade from the terminal. It is a
// development tool: the headless-browser transport is always enabled,
// regardless of environment.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <url>\n", os.Args[0])
		os.Exit(1)
	}
	targetURL := os.Args[1]

	// Keep the cascade's logging out of stdout so the JSON stays pipeable.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	cfg := config.Load()
	cfg.Browser.DevMode = true

	orch := scrape.New(cfg)
	defer orch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scraper.DefaultTimeout)
	defer cancel()

	data, err := orch.Scrape(ctx, targetURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scrape failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
