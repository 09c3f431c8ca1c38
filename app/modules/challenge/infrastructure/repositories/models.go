package challengedb

import (
	"context"
	"time"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Challenge is the persisted challenge row.
type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:c"`

	ID            uuid.UUID            `bun:"id,pk,type:uuid"`
	Name          string               `bun:"name,notnull,unique"`
	Description   string               `bun:"description,notnull,default:''"`
	Category      string               `bun:"category,notnull,default:''"`
	Flag          string               `bun:"flag,notnull"`
	Points        int                  `bun:"points,notnull"`
	Type          challengedomain.Type `bun:"type,notnull,default:'normal'"`
	DecayPercent  int                  `bun:"decay_percent,notnull,default:0"`
	RequiredCount int                  `bun:"required_count,notnull,default:0"`
	Locked        bool                 `bun:"locked,notnull,default:false"`
	Released      bool                 `bun:"released,notnull,default:false"`
	TimedRelease  bool                 `bun:"timed_release,notnull,default:false"`
	ReleaseAt     time.Time            `bun:"release_at,nullzero"`
	SortOrder     int                  `bun:"sort_order,notnull,default:0"`
	CreatedAt     time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Challenge)(nil)

func (c *Challenge) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ToDomain converts the row plus its prerequisite edges into the engine type.
func (c *Challenge) ToDomain(prerequisites []uuid.UUID) challengedomain.Challenge {
	return challengedomain.Challenge{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Category:      c.Category,
		Flag:          c.Flag,
		Points:        c.Points,
		Type:          c.Type,
		DecayPercent:  c.DecayPercent,
		RequiredCount: c.RequiredCount,
		Prerequisites: prerequisites,
		Locked:        c.Locked,
		Released:      c.Released,
		TimedRelease:  c.TimedRelease,
		ReleaseAt:     c.ReleaseAt,
		SortOrder:     c.SortOrder,
	}
}

// FromDomain copies the editable fields of d onto the row.
func FromDomain(d challengedomain.Challenge) *Challenge {
	return &Challenge{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Flag:          d.Flag,
		Points:        d.Points,
		Type:          d.Type,
		DecayPercent:  d.DecayPercent,
		RequiredCount: d.RequiredCount,
		Locked:        d.Locked,
		Released:      d.Released,
		TimedRelease:  d.TimedRelease,
		ReleaseAt:     d.ReleaseAt,
		SortOrder:     d.SortOrder,
	}
}

// Prerequisite is one "requires" edge: ChallengeID requires PrerequisiteID.
type Prerequisite struct {
	bun.BaseModel `bun:"table:challenge_prerequisites,alias:cp"`

	ChallengeID    uuid.UUID `bun:"challenge_id,pk,type:uuid"`
	PrerequisiteID uuid.UUID `bun:"prerequisite_id,pk,type:uuid"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
