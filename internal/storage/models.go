package storage

import (
	"time"

	"gorm.io/gorm"
)

// Battle status values stored in BattleRecord.Status.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// BattleRecord is one persisted battle. Data holds the opaque JSON summary
// written when the battle ends.
type BattleRecord struct {
	ID             string `gorm:"primaryKey;size:36"`
	PlayerID       string `gorm:"index"`
	OpponentID     string `gorm:"index"`
	PlayerDeckID   string
	OpponentDeckID string
	Mode           string
	Status         string `gorm:"index"`
	WinnerID       string
	TurnCount      int
	DurationMS     int64
	Data           []byte
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (BattleRecord) TableName() string { return "battles" }

// PlayerStats holds lifetime counters per player.
type PlayerStats struct {
	gorm.Model
	UserID      string `gorm:"uniqueIndex"`
	GamesPlayed int
	Wins        int
	Losses      int
	Surrenders  int
}

func (PlayerStats) TableName() string { return "player_stats" }

// CurrencyBalance is one player's balance of one currency kind.
type CurrencyBalance struct {
	UserID    string `gorm:"primaryKey"`
	Kind      string `gorm:"primaryKey"`
	Amount    int
	UpdatedAt time.Time
}

func (CurrencyBalance) TableName() string { return "player_currency" }
