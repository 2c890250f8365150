package game

import (
	"fmt"
	"strconv"
	"time"
)

// ActionRequest is the only command shape accepted by the engine.
type ActionRequest struct {
	ActionType string         `json:"action_type"`
	PlayerID   string         `json:"player_id"`
	SourceID   InstanceID     `json:"source_id,omitempty"`
	TargetID   InstanceID     `json:"target_id,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// NewActionRequest builds a request for a typed action.
func NewActionRequest(t ActionType, playerID string) ActionRequest {
	return ActionRequest{ActionType: t.String(), PlayerID: playerID}
}

// WithSource returns a copy with SourceID set.
func (r ActionRequest) WithSource(id InstanceID) ActionRequest {
	r.SourceID = id
	return r
}

// WithTarget returns a copy with TargetID set.
func (r ActionRequest) WithTarget(id InstanceID) ActionRequest {
	r.TargetID = id
	return r
}

// WithParam returns a copy with one extra parameter.
func (r ActionRequest) WithParam(key string, value any) ActionRequest {
	params := make(map[string]any, len(r.Parameters)+1)
	for k, v := range r.Parameters {
		params[k] = v
	}
	params[key] = value
	r.Parameters = params
	return r
}

// Type parses the action name.
func (r ActionRequest) Type() (ActionType, bool) {
	return ParseActionType(r.ActionType)
}

// IntParam reads an integer parameter. JSON numbers and numeric strings
// are accepted since requests may arrive decoded from JSON.
func (r ActionRequest) IntParam(key string) (int, bool) {
	v, ok := r.Parameters[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case InstanceID:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// InstanceParam reads an instance id parameter ("12", "#12" or a number).
func (r ActionRequest) InstanceParam(key string) (InstanceID, bool) {
	if s, ok := r.Parameters[key].(string); ok {
		return parseInstanceID(s)
	}
	n, ok := r.IntParam(key)
	if !ok || n <= 0 {
		return NoInstance, false
	}
	return InstanceID(n), true
}

func (r ActionRequest) String() string {
	s := fmt.Sprintf("%s by %s", r.ActionType, r.PlayerID)
	if r.SourceID != NoInstance {
		s += fmt.Sprintf(" source=#%d", r.SourceID)
	}
	if r.TargetID != NoInstance {
		s += fmt.Sprintf(" target=#%d", r.TargetID)
	}
	return s
}

// Request parameter keys.
const (
	ParamAttackIndex  = "attack_index"
	ParamEvolveTarget = "evolve_target"
)

// ActionResponse is the synchronous reply to every ActionRequest.
type ActionResponse struct {
	Result  ActionResult   `json:"result"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Effects []string       `json:"effects,omitempty"`
}

func (r ActionResponse) Success() bool {
	return r.Result == ResultSuccess
}

func succeed(message string, effects ...string) ActionResponse {
	return ActionResponse{Result: ResultSuccess, Message: message, Effects: effects}
}

func reject(result ActionResult, format string, args ...any) ActionResponse {
	return ActionResponse{Result: result, Message: fmt.Sprintf(format, args...)}
}

// BattleAction is one committed entry of the battle's audit log.
type BattleAction struct {
	Seq      int           `json:"seq"`
	Turn     int           `json:"turn"`
	Phase    string        `json:"phase"`
	PlayerID string        `json:"player_id"`
	Request  ActionRequest `json:"request"`
	Result   ActionResult  `json:"result"`
	Message  string        `json:"message"`
	Effects  []string      `json:"effects,omitempty"`
	At       time.Time     `json:"at"`
}
