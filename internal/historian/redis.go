// Package historian pushes every committed battle action onto a Redis list
// for an out-of-process consumer.
package historian

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peterkuimelis/pokebattle/internal/game"
)

// DefaultQueueName is the Redis list actions are pushed to.
const DefaultQueueName = "pokebattle_actions"

// ActionRecord is the JSON document pushed per action.
type ActionRecord struct {
	BattleID      string         `json:"battle_id"`
	ActionIndex   int            `json:"action_index"`
	Turn          int            `json:"turn"`
	Phase         string         `json:"phase"`
	ActorID       string         `json:"actor_id"`
	ActionType    string         `json:"action_type"`
	ActionPayload map[string]any `json:"action_payload"`
	Result        string         `json:"result"`
	Timestamp     int64          `json:"timestamp"`
}

// NewRecord flattens a committed action into the queue format.
func NewRecord(battleID string, a game.BattleAction) ActionRecord {
	payload := make(map[string]any, len(a.Request.Parameters)+3)
	for k, v := range a.Request.Parameters {
		payload[k] = v
	}
	if a.Request.SourceID != game.NoInstance {
		payload["source_id"] = int(a.Request.SourceID)
	}
	if a.Request.TargetID != game.NoInstance {
		payload["target_id"] = int(a.Request.TargetID)
	}
	if len(a.Effects) > 0 {
		payload["effects"] = a.Effects
	}
	ts := a.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return ActionRecord{
		BattleID:      battleID,
		ActionIndex:   a.Seq,
		Turn:          a.Turn,
		Phase:         a.Phase,
		ActorID:       a.PlayerID,
		ActionType:    a.Request.ActionType,
		ActionPayload: payload,
		Result:        a.Result.String(),
		Timestamp:     ts.UnixMilli(),
	}
}

// Publisher implements game.ActionSink on a Redis list.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

var _ game.ActionSink = (*Publisher)(nil)

// NewPublisher wraps an existing client. An empty queue uses DefaultQueueName.
func NewPublisher(rdb *redis.Client, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{rdb: rdb, queue: queue}
}

// Connect creates a client for addr and db and checks it answers.
func Connect(ctx context.Context, addr string, db int, queue string) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return NewPublisher(rdb, queue), nil
}

func (p *Publisher) Queue() string { return p.queue }

func (p *Publisher) Close() error { return p.rdb.Close() }

// PublishAction serializes the action and pushes it to the queue.
func (p *Publisher) PublishAction(ctx context.Context, battleID string, a game.BattleAction) error {
	data, err := json.Marshal(NewRecord(battleID, a))
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}
