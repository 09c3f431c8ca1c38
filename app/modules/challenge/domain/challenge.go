package challengedomain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type decides which gates and scoring rule apply to a challenge.
type Type string

const (
	TypeNormal     Type = "normal"
	TypeExclusive  Type = "exclusive"
	TypeDecreasing Type = "decreasing"
	TypeUnlocking  Type = "unlocking"
)

// Valid reports whether t is a known challenge type.
func (t Type) Valid() bool {
	switch t {
	case TypeNormal, TypeExclusive, TypeDecreasing, TypeUnlocking:
		return true
	}
	return false
}

// ErrInvalidChallenge wraps every field-level validation failure.
var ErrInvalidChallenge = errors.New("invalid challenge")

// Challenge is the engine's view of a challenge row. Category and SortOrder
// are presentation metadata only.
type Challenge struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Flag          string      `json:"flag,omitempty"`
	Points        int         `json:"points"`
	Type          Type        `json:"type"`
	DecayPercent  int         `json:"decay_percent,omitempty"`
	RequiredCount int         `json:"required_count,omitempty"`
	Prerequisites []uuid.UUID `json:"prerequisites,omitempty"`
	Locked        bool        `json:"locked"`
	Released      bool        `json:"released"`
	TimedRelease  bool        `json:"timed_release"`
	ReleaseAt     time.Time   `json:"release_at,omitzero"`
	SortOrder     int         `json:"sort_order"`
}

// Validate checks the type-specific field rules.
func (c Challenge) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidChallenge)
	}
	if NormalizeFlag(c.Flag) == "" {
		return fmt.Errorf("%w: flag is required", ErrInvalidChallenge)
	}
	if c.Points < 1 {
		return fmt.Errorf("%w: points must be at least 1", ErrInvalidChallenge)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidChallenge, c.Type)
	}
	if c.Type == TypeDecreasing {
		if c.DecayPercent < 1 || c.DecayPercent > 99 {
			return fmt.Errorf("%w: decay percentage must be between 1 and 99", ErrInvalidChallenge)
		}
	} else if c.DecayPercent != 0 {
		return fmt.Errorf("%w: decay percentage only applies to decreasing challenges", ErrInvalidChallenge)
	}
	if c.RequiredCount < 0 {
		return fmt.Errorf("%w: required count cannot be negative", ErrInvalidChallenge)
	}
	if c.Type != TypeUnlocking && (c.RequiredCount != 0 || len(c.Prerequisites) > 0) {
		return fmt.Errorf("%w: prerequisites only apply to unlocking challenges", ErrInvalidChallenge)
	}
	if c.TimedRelease && c.ReleaseAt.IsZero() {
		return fmt.Errorf("%w: timed release needs a release time", ErrInvalidChallenge)
	}
	return nil
}

// IsReleased reports whether participants may see and submit the challenge.
// A timed challenge opens at ReleaseAt even if the release job has not run yet.
func (c Challenge) IsReleased(now time.Time) bool {
	if c.Released {
		return true
	}
	return c.TimedRelease && !c.ReleaseAt.IsZero() && !now.Before(c.ReleaseAt)
}
