package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/pokebattle/internal/ai"
	"github.com/peterkuimelis/pokebattle/internal/catalog"
	"github.com/peterkuimelis/pokebattle/internal/config"
	"github.com/peterkuimelis/pokebattle/internal/game"
	"github.com/peterkuimelis/pokebattle/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cards := flag.String("cards", cfg.CatalogPath, "path to cards YAML file")
	decks := flag.String("decks", cfg.DecksPath, "path to decks YAML file")
	deck1 := flag.String("deck1", "", "deck id for player 1 (empty: built from the catalog)")
	deck2 := flag.String("deck2", "", "deck id for player 2 (empty: built from the catalog)")
	ai1 := flag.String("ai1", cfg.AIDifficulty.String(), "difficulty for player 1")
	ai2 := flag.String("ai2", cfg.AIDifficulty.String(), "difficulty for player 2")
	games := flag.Int("games", 1, "number of battles to play")
	seed := flag.Int64("seed", 0, "RNG seed for the first battle (0 for random)")
	quiet := flag.Bool("quiet", false, "print only results, not the event log")
	flag.Parse()
	cfg.ConfigureLogging()

	cat, err := catalog.Load(*cards, *decks)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load catalog")
	}
	d1, err := ai.ParseDifficulty(*ai1)
	if err != nil {
		logrus.WithError(err).Fatal("bad -ai1")
	}
	d2, err := ai.ParseDifficulty(*ai2)
	if err != nil {
		logrus.WithError(err).Fatal("bad -ai2")
	}
	personality, err := cfg.Personality()
	if err != nil {
		logrus.WithError(err).Fatal("invalid AI personality")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backends := cfg.OpenBackendsOrNone(ctx)
	defer backends.Close()

	var out io.Writer = os.Stdout
	if *quiet {
		out = io.Discard
	}

	tally := map[string]int{}
	for i := 0; i < *games; i++ {
		s := *seed
		if s != 0 {
			s += int64(i)
		}
		m := game.NewManager(game.Config{
			PlayerID:          "p1",
			OpponentID:        "p2",
			PlayerDeckID:      *deck1,
			OpponentDeckID:    *deck2,
			Seed:              s,
			MaxTurns:          cfg.MaxTurns,
			HonorThinkingTime: cfg.HonorThinkingTime,
			Logger:            log.NewTextLogger(out),
		}, game.Deps{
			Cards:   cat,
			Battles: backends.Battles,
			Economy: backends.Economy,
			Sink:    backends.Sink,
			AI: []game.Opponent{
				ai.New("p1", d1, personality, ai.WithSeed(s, 1)),
				ai.New("p2", d2, personality, ai.WithSeed(s, 2)),
			},
			Log: logrus.WithField("game", i+1),
		})
		if err := m.Start(ctx); err != nil {
			logrus.WithError(err).Fatal("battle failed")
		}

		sum := m.Summary()
		winner := sum.WinnerID
		if winner == "" {
			winner = "draw"
		}
		tally[winner]++
		fmt.Printf("game %d: %s (%s) after %d turns, %d actions\n",
			i+1, sum.Result, winner, sum.TurnCount, sum.ActionCount)
	}

	if *games > 1 {
		fmt.Printf("p1 (%s) %d, p2 (%s) %d, draws %d\n", d1, tally["p1"], d2, tally["p2"], tally["draw"])
	}
}
