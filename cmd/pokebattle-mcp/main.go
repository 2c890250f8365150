package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/pokebattle/internal/catalog"
	"github.com/peterkuimelis/pokebattle/internal/config"
	pokemcp "github.com/peterkuimelis/pokebattle/internal/mcp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cards := flag.String("cards", cfg.CatalogPath, "path to cards YAML file")
	decks := flag.String("decks", cfg.DecksPath, "path to decks YAML file")
	flag.Parse()
	cfg.ConfigureLogging()

	cat, err := catalog.Load(*cards, *decks)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load catalog")
	}
	personality, err := cfg.Personality()
	if err != nil {
		logrus.WithError(err).Fatal("invalid AI personality")
	}

	backends := cfg.OpenBackendsOrNone(context.Background())
	defer backends.Close()

	tools := pokemcp.NewTools(cat, backends.Deps(cat, logrus.WithField("component", "mcp")), pokemcp.Defaults{
		Difficulty:        cfg.AIDifficulty,
		Personality:       personality,
		MaxTurns:          cfg.MaxTurns,
		HonorThinkingTime: cfg.HonorThinkingTime,
	})

	s := server.NewMCPServer("pokebattle", "1.0.0")
	tools.Register(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
