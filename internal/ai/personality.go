package ai

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Difficulty selects the action-phase strategy.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// ParseDifficulty accepts the lower-case difficulty names.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium", "":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Focus biases scoring toward attacking or toward building the board.
type Focus string

const (
	FocusOffense  Focus = "offense"
	FocusDefense  Focus = "defense"
	FocusBalanced Focus = "balanced"
)

// Personality tunes how a DecisionMaker weighs its options. Aggression and
// RiskTolerance are in [0,1].
type Personality struct {
	Name          string        `yaml:"name"`
	Aggression    float64       `yaml:"aggression"`
	RiskTolerance float64       `yaml:"risk_tolerance"`
	StrategyFocus Focus         `yaml:"strategy_focus"`
	ThinkingTime  time.Duration `yaml:"thinking_time"`
}

// Built-in presets.
var presets = map[string]Personality{
	"balanced":   {Name: "balanced", Aggression: 0.5, RiskTolerance: 0.5, StrategyFocus: FocusBalanced, ThinkingTime: 800 * time.Millisecond},
	"aggressive": {Name: "aggressive", Aggression: 0.9, RiskTolerance: 0.7, StrategyFocus: FocusOffense, ThinkingTime: 400 * time.Millisecond},
	"defensive":  {Name: "defensive", Aggression: 0.2, RiskTolerance: 0.2, StrategyFocus: FocusDefense, ThinkingTime: 1200 * time.Millisecond},
	"reckless":   {Name: "reckless", Aggression: 1.0, RiskTolerance: 1.0, StrategyFocus: FocusOffense, ThinkingTime: 200 * time.Millisecond},
}

// DefaultPersonality is used when no preset is named.
const DefaultPersonality = "balanced"

// Preset returns a built-in personality by name.
func Preset(name string) (Personality, bool) {
	if name == "" {
		name = DefaultPersonality
	}
	p, ok := presets[strings.ToLower(name)]
	return p, ok
}

// PresetNames lists the built-in personalities in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Normalize clamps the sliders to [0,1] and fills in a missing focus.
func (p Personality) Normalize() Personality {
	p.Aggression = clamp01(p.Aggression)
	p.RiskTolerance = clamp01(p.RiskTolerance)
	switch p.StrategyFocus {
	case FocusOffense, FocusDefense, FocusBalanced:
	default:
		p.StrategyFocus = FocusBalanced
	}
	if p.ThinkingTime < 0 {
		p.ThinkingTime = 0
	}
	return p
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

type personalityFile struct {
	Personalities []Personality `yaml:"personalities"`
}

// LoadPersonalities reads personality definitions from a YAML file:
//
//	personalities:
//	  - name: turtle
//	    aggression: 0.1
//	    risk_tolerance: 0.3
//	    strategy_focus: defense
//	    thinking_time: 1.5s
func LoadPersonalities(path string) (map[string]Personality, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading personality file: %w", err)
	}
	return ParsePersonalities(data)
}

// ParsePersonalities decodes the YAML personality format.
func ParsePersonalities(data []byte) (map[string]Personality, error) {
	var f personalityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing personality file: %w", err)
	}
	out := make(map[string]Personality, len(f.Personalities))
	for i, p := range f.Personalities {
		if p.Name == "" {
			return nil, fmt.Errorf("personality %d has no name", i+1)
		}
		out[strings.ToLower(p.Name)] = p.Normalize()
	}
	return out, nil
}
