package historian

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/pokebattle/internal/game"
)

func sampleAction() game.BattleAction {
	req := game.NewActionRequest(game.ActionAttack, "ash").
		WithSource(3).
		WithTarget(27).
		WithParam(game.ParamAttackIndex, 1)
	return game.BattleAction{
		Seq:      4,
		Turn:     3,
		Phase:    game.PhaseAction.String(),
		PlayerID: "ash",
		Request:  req,
		Result:   game.ResultSuccess,
		Effects:  []string{"Bulbasaur took 40 damage"},
		At:       time.UnixMilli(1700000000000),
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("battle-1", sampleAction())
	assert.Equal(t, "battle-1", rec.BattleID)
	assert.Equal(t, 4, rec.ActionIndex)
	assert.Equal(t, "ash", rec.ActorID)
	assert.Equal(t, "attack", rec.ActionType)
	assert.Equal(t, "SUCCESS", rec.Result)
	assert.Equal(t, int64(1700000000000), rec.Timestamp)
	assert.Equal(t, 3, rec.ActionPayload["source_id"])
	assert.Equal(t, 27, rec.ActionPayload["target_id"])
	assert.Equal(t, 1, rec.ActionPayload[game.ParamAttackIndex])
	assert.Contains(t, rec.ActionPayload, "effects")
}

func TestNewRecordOmitsEmptyIDs(t *testing.T) {
	rec := NewRecord("b", game.BattleAction{Request: game.NewActionRequest(game.ActionEndTurn, "gary")})
	assert.NotContains(t, rec.ActionPayload, "source_id")
	assert.NotContains(t, rec.ActionPayload, "target_id")
	assert.NotZero(t, rec.Timestamp, "zero time falls back to now")
}

func TestPublishAction(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis tests")
	}
	ctx := context.Background()
	queue := "pokebattle_test_" + uuid.NewString()
	p, err := Connect(ctx, addr, 0, queue)
	require.NoError(t, err)
	t.Cleanup(func() {
		p.rdb.Del(context.Background(), queue)
		p.Close()
	})

	require.NoError(t, p.PublishAction(ctx, "battle-1", sampleAction()))

	raw, err := p.rdb.LPop(ctx, queue).Result()
	require.NoError(t, err)
	var rec ActionRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, "battle-1", rec.BattleID)
	assert.Equal(t, "attack", rec.ActionType)
}
