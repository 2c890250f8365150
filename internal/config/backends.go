package config

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/pokebattle/internal/game"
	"github.com/peterkuimelis/pokebattle/internal/historian"
	"github.com/peterkuimelis/pokebattle/internal/storage"
	"github.com/peterkuimelis/pokebattle/internal/storage/postgres"
)

// Backends are the persistence and audit collaborators selected by the
// configuration. Nil fields are disabled.
type Backends struct {
	Battles game.BattleStore
	Economy game.PlayerEconomy
	Sink    game.ActionSink

	closers []func()
}

// Deps returns game dependencies wired to the backends.
func (b *Backends) Deps(cards game.CardStore, entry *logrus.Entry) game.Deps {
	return game.Deps{Cards: cards, Battles: b.Battles, Economy: b.Economy, Sink: b.Sink, Log: entry}
}

// Close releases every opened connection.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// OpenBackends connects the configured store and, when REDIS_ADDR is set,
// the action historian.
func (c Config) OpenBackends(ctx context.Context) (*Backends, error) {
	b := &Backends{}
	switch c.Store {
	case StoreSQLite:
		db, err := storage.OpenAndMigrate(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", c.SQLitePath, err)
		}
		s := storage.NewSQLiteStore(db)
		b.Battles, b.Economy = s, s
		if sqlDB, err := db.DB(); err == nil {
			b.closers = append(b.closers, func() { sqlDB.Close() })
		}
	case StorePostgres:
		s, err := postgres.Connect(ctx, c.Postgres)
		if err != nil {
			return nil, err
		}
		b.Battles, b.Economy = s, s
		b.closers = append(b.closers, s.Close)
	}

	if c.RedisAddr != "" {
		p, err := historian.Connect(ctx, c.RedisAddr, c.RedisDB, c.QueueName)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Sink = p
		b.closers = append(b.closers, func() { p.Close() })
	}
	return b, nil
}

// OpenBackendsOrNone is OpenBackends that degrades to no persistence when a
// backend cannot be reached. The battle itself never depends on storage.
func (c Config) OpenBackendsOrNone(ctx context.Context) *Backends {
	b, err := c.OpenBackends(ctx)
	if err != nil {
		logrus.WithError(err).WithField("store", c.Store).Warn("backends unavailable, running without persistence")
		return &Backends{}
	}
	return b
}
