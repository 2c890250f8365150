// Package config reads process configuration from the environment. The cmd
// mains import github.com/joho/godotenv/autoload so a local .env file is
// applied first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/pokebattle/internal/ai"
	"github.com/peterkuimelis/pokebattle/internal/storage/postgres"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreNone     = "none"
)

// Config is the process configuration.
type Config struct {
	CatalogPath string
	DecksPath   string

	Store      string
	SQLitePath string
	Postgres   postgres.ConnConfig

	RedisAddr string // empty disables the historian
	RedisDB   int
	QueueName string

	AIDifficulty      ai.Difficulty
	AIPersonality     string
	PersonalityFile   string
	HonorThinkingTime bool

	MaxTurns int
	LogLevel logrus.Level
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	c := Config{
		CatalogPath:       getEnv("POKEBATTLE_CATALOG", "cards.yaml"),
		DecksPath:         getEnv("POKEBATTLE_DECKS", "decks.yaml"),
		Store:             strings.ToLower(getEnv("POKEBATTLE_STORE", StoreSQLite)),
		SQLitePath:        getEnv("POKEBATTLE_SQLITE_PATH", "pokebattle.db"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		QueueName:         getEnv("HISTORIAN_QUEUE_NAME", "pokebattle_actions"),
		AIPersonality:     strings.ToLower(getEnv("POKEBATTLE_AI_PERSONALITY", ai.DefaultPersonality)),
		PersonalityFile:   os.Getenv("POKEBATTLE_AI_PERSONALITY_FILE"),
		HonorThinkingTime: getEnvBool("POKEBATTLE_AI_THINKING", false),
		MaxTurns:          getEnvInt("POKEBATTLE_MAX_TURNS", 50),
		Postgres: postgres.ConnConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Database: getEnv("PG_DATABASE", "pokebattle"),
		},
	}

	switch c.Store {
	case StoreSQLite, StorePostgres, StoreNone:
	default:
		return c, fmt.Errorf("POKEBATTLE_STORE: unknown store %q (want sqlite, postgres or none)", c.Store)
	}

	d, err := ai.ParseDifficulty(os.Getenv("POKEBATTLE_AI_DIFFICULTY"))
	if err != nil {
		return c, fmt.Errorf("POKEBATTLE_AI_DIFFICULTY: %w", err)
	}
	c.AIDifficulty = d

	lvl, err := logrus.ParseLevel(getEnv("POKEBATTLE_LOG_LEVEL", "info"))
	if err != nil {
		return c, fmt.Errorf("POKEBATTLE_LOG_LEVEL: %w", err)
	}
	c.LogLevel = lvl

	if c.MaxTurns <= 0 {
		return c, fmt.Errorf("POKEBATTLE_MAX_TURNS must be positive, got %d", c.MaxTurns)
	}
	return c, nil
}

// Personality resolves the configured AI personality from the preset file,
// if one is set, and then from the built-in presets.
func (c Config) Personality() (ai.Personality, error) {
	if c.PersonalityFile != "" {
		ps, err := ai.LoadPersonalities(c.PersonalityFile)
		if err != nil {
			return ai.Personality{}, err
		}
		if p, ok := ps[c.AIPersonality]; ok {
			return p, nil
		}
	}
	p, ok := ai.Preset(c.AIPersonality)
	if !ok {
		return ai.Personality{}, fmt.Errorf("unknown AI personality %q (have %s)", c.AIPersonality, strings.Join(ai.PresetNames(), ", "))
	}
	return p, nil
}

// ConfigureLogging applies the log level to the standard logrus logger.
func (c Config) ConfigureLogging() {
	logrus.SetLevel(c.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// getEnv reads an environment variable or returns def.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as an integer, else def.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
