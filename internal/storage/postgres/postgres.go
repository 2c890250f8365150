// Package postgres stores battles, player stats and balances in PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peterkuimelis/pokebattle/internal/game"
)

// ErrBattleNotFound is returned when a result is written for an unknown battle.
var ErrBattleNotFound = errors.New("battle not found")

// ConnConfig holds the connection settings read from the environment.
type ConnConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// URL renders the pgx connection string.
func (c ConnConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

const schema = `
CREATE TABLE IF NOT EXISTS battles (
	id               UUID PRIMARY KEY,
	player_id        TEXT NOT NULL,
	opponent_id      TEXT NOT NULL,
	player_deck_id   TEXT NOT NULL DEFAULT '',
	opponent_deck_id TEXT NOT NULL DEFAULT '',
	mode             TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'in_progress',
	winner_id        TEXT NOT NULL DEFAULT '',
	turn_count       INT NOT NULL DEFAULT 0,
	duration_ms      BIGINT NOT NULL DEFAULT 0,
	data             JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at     TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS player_stats (
	user_id      TEXT PRIMARY KEY,
	games_played INT NOT NULL DEFAULT 0,
	wins         INT NOT NULL DEFAULT 0,
	losses       INT NOT NULL DEFAULT 0,
	surrenders   INT NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS player_currency (
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	amount     INT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, kind)
);
`

// Store implements game.BattleStore and game.PlayerEconomy on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ game.BattleStore   = (*Store)(nil)
	_ game.PlayerEconomy = (*Store)(nil)
)

// Connect opens a pool, pings it and ensures the schema exists.
func Connect(ctx context.Context, cfg ConnConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CreateBattleRecord(ctx context.Context, rec game.BattleRecord) (string, error) {
	id := uuid.New()
	q := `
		INSERT INTO battles (id, player_id, opponent_id, player_deck_id, opponent_deck_id, mode)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.pool.Exec(ctx, q, id, rec.PlayerID, rec.OpponentID, rec.PlayerDeckID, rec.OpponentDeckID, rec.Mode); err != nil {
		return "", fmt.Errorf("insert battle: %w", err)
	}
	return id.String(), nil
}

func (s *Store) UpdateBattleResult(ctx context.Context, battleID string, out game.BattleOutcome) error {
	id, err := uuid.Parse(battleID)
	if err != nil {
		return fmt.Errorf("battle id %q: %w", battleID, ErrBattleNotFound)
	}
	q := `
		UPDATE battles
		SET status='completed', winner_id=$2, turn_count=$3, duration_ms=$4, data=$5, completed_at=NOW()
		WHERE id=$1
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, id, out.WinnerID, out.TurnCount, out.Duration.Milliseconds(), out.Data)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("battle %s: %w", battleID, ErrBattleNotFound)
		}
		return nil
	})
}

// BattleRow is a battle read back from the table.
type BattleRow struct {
	ID        string
	Status    string
	WinnerID  string
	TurnCount int
	Data      []byte
}

// GetBattle loads the result columns of one battle.
func (s *Store) GetBattle(ctx context.Context, battleID string) (*BattleRow, error) {
	q := `SELECT id::text, status, winner_id, turn_count, data FROM battles WHERE id=$1`
	var r BattleRow
	err := s.pool.QueryRow(ctx, q, battleID).Scan(&r.ID, &r.Status, &r.WinnerID, &r.TurnCount, &r.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("battle %s: %w", battleID, ErrBattleNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpdateUserStats(ctx context.Context, userID string, d game.StatDeltas) error {
	q := `
		INSERT INTO player_stats (user_id, games_played, wins, losses, surrenders)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			games_played = player_stats.games_played + EXCLUDED.games_played,
			wins         = player_stats.wins + EXCLUDED.wins,
			losses       = player_stats.losses + EXCLUDED.losses,
			surrenders   = player_stats.surrenders + EXCLUDED.surrenders,
			updated_at   = NOW()
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, userID, d.GamesPlayed, d.Wins, d.Losses, d.Surrenders)
		return err
	})
}

// GetStats returns a player's counters; unknown players read as zero.
func (s *Store) GetStats(ctx context.Context, userID string) (game.StatDeltas, error) {
	q := `SELECT games_played, wins, losses, surrenders FROM player_stats WHERE user_id=$1`
	var d game.StatDeltas
	err := s.pool.QueryRow(ctx, q, userID).Scan(&d.GamesPlayed, &d.Wins, &d.Losses, &d.Surrenders)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.StatDeltas{}, nil
	}
	return d, err
}

func (s *Store) AddCurrency(ctx context.Context, userID, kind string, amount int) error {
	q := `
		INSERT INTO player_currency (user_id, kind, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, kind)
		DO UPDATE SET amount = player_currency.amount + EXCLUDED.amount, updated_at = NOW()
	`
	_, err := s.pool.Exec(ctx, q, userID, kind, amount)
	return err
}

// Balance returns a player's balance of kind.
func (s *Store) Balance(ctx context.Context, userID, kind string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT amount FROM player_currency WHERE user_id=$1 AND kind=$2`, userID, kind).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
