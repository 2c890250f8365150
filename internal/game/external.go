package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDeckNotFound     = errors.New("deck not found")
	ErrCardNotFound     = errors.New("card not found")
	ErrIllegalDeck      = errors.New("illegal deck")
	ErrBattleNotStarted = errors.New("battle not started")
)

// CardStore supplies deck lists and immutable card templates.
type CardStore interface {
	GetDeckCards(ctx context.Context, deckID string) ([]DeckCard, error)
	GetCardByID(ctx context.Context, id string) (*Card, error)
	// SearchCards returns up to limit cards; limit <= 0 means all.
	SearchCards(ctx context.Context, limit int) ([]*Card, error)
}

// BattleRecord describes a battle at creation time.
type BattleRecord struct {
	PlayerID       string
	OpponentID     string
	PlayerDeckID   string
	OpponentDeckID string
	Mode           string
}

// BattleOutcome is handed to the store when a battle ends. Data is the
// JSON-encoded BattleSummary and is opaque to the store.
type BattleOutcome struct {
	WinnerID  string
	TurnCount int
	Data      []byte
	Duration  time.Duration
}

// BattleStore persists battle records.
type BattleStore interface {
	CreateBattleRecord(ctx context.Context, rec BattleRecord) (string, error)
	UpdateBattleResult(ctx context.Context, battleID string, out BattleOutcome) error
}

// StatDeltas are added to a player's lifetime statistics.
type StatDeltas struct {
	GamesPlayed int
	Wins        int
	Losses      int
	Surrenders  int
}

// PlayerEconomy tracks player statistics and currency.
type PlayerEconomy interface {
	UpdateUserStats(ctx context.Context, userID string, deltas StatDeltas) error
	AddCurrency(ctx context.Context, userID, kind string, amount int) error
}

// ActionSink receives every committed action, e.g. for an audit queue.
type ActionSink interface {
	PublishAction(ctx context.Context, battleID string, action BattleAction) error
}

// Decision is one choice made by a computer opponent. ThinkingTime is a
// delay the host may honor before applying it.
type Decision struct {
	ID           uuid.UUID
	Request      ActionRequest
	Reason       string
	Score        float64
	ThinkingTime time.Duration
}

// Opponent is a computer-controlled seat.
type Opponent interface {
	PlayerID() string
	Decide(ctx context.Context, b *Battle) Decision
	// Record is told how the engine answered a decision.
	Record(d Decision, resp ActionResponse)
}
