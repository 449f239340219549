// Package core provides the central types shared by the traffic light packages
package core

import (
	"fmt"
	"strings"
)

// Phase is the two-valued state of a light
type Phase int32

const (
	// Red is the initial phase of every light
	Red Phase = iota

	// Green lets waiting consumers proceed
	Green
)

var phaseNames = map[Phase]string{
	Red:   "red",
	Green: "green",
}

// String returns the lower-case phase name
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// IsValid reports whether p is Red or Green
func (p Phase) IsValid() bool {
	_, ok := phaseNames[p]
	return ok
}

// Toggle returns the phase that follows p
func (p Phase) Toggle() Phase {
	if p == Green {
		return Red
	}
	return Green
}

// ParsePhase converts a phase name into a Phase, ignoring case
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	}
	return Red, fmt.Errorf("invalid phase %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("invalid phase %d", int32(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
