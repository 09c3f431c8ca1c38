// Package httpmw holds the chi middleware shared by the HTTP routes.
package httpmw

import (
	"context"
	"net/http"

	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/google/uuid"
)

type ctxKey string

const (
	participantKey ctxKey = "participant_id"
	actorKey       ctxKey = "actor_id"
)

// Identity headers set by the upstream identity proxy.
const (
	ParticipantHeader = "X-Participant-ID"
	ActorHeader       = "X-Actor-ID"
)

// RequireParticipant reads the participant id header into the context.
func RequireParticipant(next http.Handler) http.Handler {
	return requireUUIDHeader(ParticipantHeader, participantKey, next)
}

// RequireActor reads the admin actor id header into the context.
func RequireActor(next http.Handler) http.Handler {
	return requireUUIDHeader(ActorHeader, actorKey, next)
}

func requireUUIDHeader(header string, key ctxKey, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(header))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), key, id)
		ctx = attr.WithCorrelationID(ctx, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParticipantID returns the id stored by RequireParticipant.
func ParticipantID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(participantKey).(uuid.UUID)
	return id, ok
}

// ActorID returns the id stored by RequireActor.
func ActorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey).(uuid.UUID)
	return id, ok
}
