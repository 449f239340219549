package core

import (
	"time"

	"github.com/google/uuid"
)

// PhaseEvent describes one phase transition of a light
type PhaseEvent struct {
	ID        string        `json:"id"`
	LightID   string        `json:"light_id"`
	Sequence  uint64        `json:"seq"`
	From      Phase         `json:"from"`
	To        Phase         `json:"to"`
	Interval  time.Duration `json:"interval"`
	Timestamp time.Time     `json:"ts"`
}

// NewPhaseEvent creates a transition event stamped with a fresh ID and the current time
func NewPhaseEvent(lightID string, seq uint64, from, to Phase, interval time.Duration) PhaseEvent {
	return PhaseEvent{
		ID:        uuid.NewString(),
		LightID:   lightID,
		Sequence:  seq,
		From:      from,
		To:        to,
		Interval:  interval,
		Timestamp: time.Now(),
	}
}

// IsGreen reports whether the transition turned the light green
func (e PhaseEvent) IsGreen() bool {
	return e.To == Green
}
