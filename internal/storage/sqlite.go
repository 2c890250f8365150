package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/peterkuimelis/pokebattle/internal/game"
)

// ErrBattleNotFound is returned when a result is written for an unknown battle.
var ErrBattleNotFound = errors.New("battle not found")

// Store is the gorm-backed BattleStore and PlayerEconomy.
type Store struct {
	db *gorm.DB
}

var (
	_ game.BattleStore   = (*Store)(nil)
	_ game.PlayerEconomy = (*Store)(nil)
)

func NewSQLiteStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need to close it.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) CreateBattleRecord(ctx context.Context, rec game.BattleRecord) (string, error) {
	row := BattleRecord{
		ID:             uuid.NewString(),
		PlayerID:       rec.PlayerID,
		OpponentID:     rec.OpponentID,
		PlayerDeckID:   rec.PlayerDeckID,
		OpponentDeckID: rec.OpponentDeckID,
		Mode:           rec.Mode,
		Status:         StatusInProgress,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create battle record: %w", err)
	}
	return row.ID, nil
}

func (s *Store) UpdateBattleResult(ctx context.Context, battleID string, out game.BattleOutcome) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&BattleRecord{}).Where("id = ?", battleID).Updates(map[string]interface{}{
		"status":       StatusCompleted,
		"winner_id":    out.WinnerID,
		"turn_count":   out.TurnCount,
		"duration_ms":  out.Duration.Milliseconds(),
		"data":         out.Data,
		"completed_at": &now,
	})
	if res.Error != nil {
		return fmt.Errorf("update battle %s: %w", battleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update battle %s: %w", battleID, ErrBattleNotFound)
	}
	return nil
}

// GetBattle loads one battle record.
func (s *Store) GetBattle(ctx context.Context, battleID string) (*BattleRecord, error) {
	var rec BattleRecord
	if err := s.db.WithContext(ctx).Where("id = ?", battleID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("battle %s: %w", battleID, ErrBattleNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

// RecentBattles lists the latest battles a player took part in, newest first.
func (s *Store) RecentBattles(ctx context.Context, userID string, limit int) ([]BattleRecord, error) {
	var out []BattleRecord
	q := s.db.WithContext(ctx).
		Where("player_id = ? OR opponent_id = ?", userID, userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateUserStats(ctx context.Context, userID string, d game.StatDeltas) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ps PlayerStats
		if err := tx.Where("user_id = ?", userID).First(&ps).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			ps = PlayerStats{UserID: userID}
		}
		ps.GamesPlayed += d.GamesPlayed
		ps.Wins += d.Wins
		ps.Losses += d.Losses
		ps.Surrenders += d.Surrenders
		return tx.Save(&ps).Error
	})
}

// GetStats returns a player's counters. Unknown players have zero stats.
func (s *Store) GetStats(ctx context.Context, userID string) (PlayerStats, error) {
	var ps PlayerStats
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&ps).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PlayerStats{UserID: userID}, nil
	}
	return ps, err
}

func (s *Store) AddCurrency(ctx context.Context, userID, kind string, amount int) error {
	row := CurrencyBalance{UserID: userID, Kind: kind, Amount: amount, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount":     gorm.Expr("amount + ?", amount),
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
}

// Balance returns a player's balance of kind, zero when none was ever added.
func (s *Store) Balance(ctx context.Context, userID, kind string) (int, error) {
	var row CurrencyBalance
	err := s.db.WithContext(ctx).Where("user_id = ? AND kind = ?", userID, kind).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Amount, nil
}
