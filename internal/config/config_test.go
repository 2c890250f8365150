package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pokebattle/internal/ai"
	"github.com/peterkuimelis/pokebattle/internal/game"
)

var envKeys = []string{
	"POKEBATTLE_CATALOG", "POKEBATTLE_DECKS", "POKEBATTLE_STORE", "POKEBATTLE_SQLITE_PATH",
	"POSTGRES_USER", "POSTGRES_PASSWORD", "PG_HOST", "PG_PORT", "PG_DATABASE",
	"REDIS_ADDR", "REDIS_DB", "HISTORIAN_QUEUE_NAME",
	"POKEBATTLE_AI_DIFFICULTY", "POKEBATTLE_AI_PERSONALITY", "POKEBATTLE_AI_PERSONALITY_FILE",
	"POKEBATTLE_AI_THINKING", "POKEBATTLE_MAX_TURNS", "POKEBATTLE_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cards.yaml", c.CatalogPath)
	assert.Equal(t, "decks.yaml", c.DecksPath)
	assert.Equal(t, StoreSQLite, c.Store)
	assert.Equal(t, "pokebattle.db", c.SQLitePath)
	assert.Empty(t, c.RedisAddr)
	assert.Equal(t, "pokebattle_actions", c.QueueName)
	assert.Equal(t, ai.Medium, c.AIDifficulty)
	assert.Equal(t, ai.DefaultPersonality, c.AIPersonality)
	assert.False(t, c.HonorThinkingTime)
	assert.Equal(t, 50, c.MaxTurns)
	assert.Equal(t, logrus.InfoLevel, c.LogLevel)
	assert.Equal(t, "5432", c.Postgres.Port)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKEBATTLE_STORE", "Postgres")
	t.Setenv("PG_HOST", "db")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("POKEBATTLE_AI_DIFFICULTY", "hard")
	t.Setenv("POKEBATTLE_AI_PERSONALITY", "Reckless")
	t.Setenv("POKEBATTLE_AI_THINKING", "true")
	t.Setenv("POKEBATTLE_MAX_TURNS", "20")
	t.Setenv("POKEBATTLE_LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, c.Store)
	assert.Equal(t, "db", c.Postgres.Host)
	assert.Equal(t, "cache:6379", c.RedisAddr)
	assert.Equal(t, 2, c.RedisDB)
	assert.Equal(t, ai.Hard, c.AIDifficulty)
	assert.True(t, c.HonorThinkingTime)
	assert.Equal(t, 20, c.MaxTurns)
	assert.Equal(t, logrus.DebugLevel, c.LogLevel)

	p, err := c.Personality()
	require.NoError(t, err)
	assert.Equal(t, "reckless", p.Name)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "two")
	t.Setenv("POKEBATTLE_AI_THINKING", "maybe")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, c.RedisDB)
	assert.False(t, c.HonorThinkingTime)
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"POKEBATTLE_STORE":         "mongo",
		"POKEBATTLE_AI_DIFFICULTY": "nightmare",
		"POKEBATTLE_LOG_LEVEL":     "loud",
		"POKEBATTLE_MAX_TURNS":     "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestPersonalityFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ai.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
personalities:
  - name: Cautious
    aggression: 0.1
    risk_tolerance: 0.1
    strategy_focus: defense
    thinking_time: 2s
`), 0o644))
	t.Setenv("POKEBATTLE_AI_PERSONALITY_FILE", path)
	t.Setenv("POKEBATTLE_AI_PERSONALITY", "cautious")

	c, err := Load()
	require.NoError(t, err)
	p, err := c.Personality()
	require.NoError(t, err)
	assert.Equal(t, "Cautious", p.Name)
	assert.Equal(t, ai.FocusDefense, p.StrategyFocus)

	c.AIPersonality = "unknown"
	_, err = c.Personality()
	assert.ErrorContains(t, err, "unknown AI personality")
}

func TestOpenBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKEBATTLE_STORE", "none")
	c, err := Load()
	require.NoError(t, err)
	b, err := c.OpenBackends(context.Background())
	require.NoError(t, err)
	assert.Nil(t, b.Battles)
	assert.Nil(t, b.Sink)
	b.Close()

	c.Store = StoreSQLite
	c.SQLitePath = filepath.Join(t.TempDir(), "test.db")
	b, err = c.OpenBackends(context.Background())
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Battles)
	require.NotNil(t, b.Economy)

	deps := b.Deps(nil, nil)
	id, err := deps.Battles.CreateBattleRecord(context.Background(), game.BattleRecord{PlayerID: "ash", OpponentID: "gary"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestOpenBackendsOrNoneDegrades(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	require.NoError(t, err)
	c.Store = StoreSQLite
	c.SQLitePath = filepath.Join(t.TempDir(), "missing", "test.db")

	_, err = c.OpenBackends(context.Background())
	require.Error(t, err)

	b := c.OpenBackendsOrNone(context.Background())
	require.NotNil(t, b)
	defer b.Close()
	assert.Nil(t, b.Battles)
	assert.Nil(t, b.Economy)
	assert.Nil(t, b.Sink)
	assert.Equal(t, game.Deps{Cards: nil, Log: nil}, b.Deps(nil, nil))
}
