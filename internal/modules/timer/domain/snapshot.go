package domain

import (
	"strconv"
	"strings"
	"time"
)

// Snapshot is the persisted form of a timer. Goal fields are stored as text
// and timestamps as Unix milliseconds.
type Snapshot struct {
	Round        int    `json:"round"`
	Hours        string `json:"hours"`
	Minutes      string `json:"minutes"`
	Seconds      string `json:"seconds"`
	TimerStartMs *int64 `json:"timerStartMs"`
	PauseStartMs *int64 `json:"pauseStartMs"`
	IsRunning    bool   `json:"isRunning"`
}

func NewSnapshot(goal Goal, state State) Snapshot {
	return Snapshot{
		Round:        state.Round,
		Hours:        strconv.Itoa(goal.Hours),
		Minutes:      strconv.Itoa(goal.Minutes),
		Seconds:      strconv.Itoa(goal.Seconds),
		TimerStartMs: toMillis(state.StartedAt),
		PauseStartMs: toMillis(state.PausedAt),
		IsRunning:    state.Running,
	}
}

// Goal parses the stored goal; unparsable fields fall back to the defaults.
func (s Snapshot) Goal(defaults Goal) Goal {
	return Goal{
		Hours:   parseInt(s.Hours, defaults.Hours),
		Minutes: parseInt(s.Minutes, defaults.Minutes),
		Seconds: parseInt(s.Seconds, defaults.Seconds),
	}
}

// State rebuilds timer state, repairing combinations that violate the
// invariants so a corrupt store cannot wedge the engine.
func (s Snapshot) State() State {
	state := NewState()
	if s.Round > 1 {
		state.Round = s.Round
	}
	if s.TimerStartMs == nil {
		return state
	}
	started := time.UnixMilli(*s.TimerStartMs)
	state.StartedAt = &started
	state.Running = s.IsRunning
	if !s.IsRunning && s.PauseStartMs != nil {
		paused := time.UnixMilli(*s.PauseStartMs)
		state.PausedAt = &paused
	}
	return state
}

// AttachDefaults is the goal used when the store has nothing for a field at
// attach time.
var AttachDefaults = Goal{Hours: 1}

// DecodeSettings reads host-provided settings where integers may arrive as
// JSON numbers or decimal strings. Round defaults to 1.
func DecodeSettings(raw map[string]any, defaults Goal) Snapshot {
	snap := Snapshot{
		Round:     IntegerSetting(raw, "round", 1),
		Hours:     strconv.Itoa(IntegerSetting(raw, "hours", defaults.Hours)),
		Minutes:   strconv.Itoa(IntegerSetting(raw, "minutes", defaults.Minutes)),
		Seconds:   strconv.Itoa(IntegerSetting(raw, "seconds", defaults.Seconds)),
		IsRunning: BooleanSetting(raw, "isRunning"),
	}
	if v, ok := int64Setting(raw, "timerStartMs"); ok {
		snap.TimerStartMs = &v
	}
	if v, ok := int64Setting(raw, "pauseStartMs"); ok {
		snap.PauseStartMs = &v
	}
	return snap
}

func IntegerSetting(raw map[string]any, key string, fallback int) int {
	v, ok := int64Setting(raw, key)
	if !ok {
		return fallback
	}
	return int(v)
}

func BooleanSetting(raw map[string]any, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

func int64Setting(raw map[string]any, key string) (int64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func toMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
