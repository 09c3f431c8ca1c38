package ledgerdomain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidRegistration marks a malformed cohort or participant.
var ErrInvalidRegistration = errors.New("invalid registration")

// Cohort is a group whose members pool their points.
type Cohort struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

// Participant belongs to exactly one cohort. Staff bypass the hunt window
// and release gates.
type Participant struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	CohortID    uuid.UUID `json:"cohort_id"`
	IsStaff     bool      `json:"is_staff"`
}

// Validate checks the fields the identity provider must supply.
func (p Participant) Validate() error {
	switch {
	case p.ID == uuid.Nil:
		return errors.Join(ErrInvalidRegistration, errors.New("participant id is required"))
	case strings.TrimSpace(p.DisplayName) == "":
		return errors.Join(ErrInvalidRegistration, errors.New("display name is required"))
	case p.CohortID == uuid.Nil:
		return errors.Join(ErrInvalidRegistration, errors.New("cohort is required"))
	}
	return nil
}
