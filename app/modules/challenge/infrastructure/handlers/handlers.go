package challengehandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Handlers exposes the challenge admin routes.
type Handlers interface {
	HandleListChallenges(w http.ResponseWriter, r *http.Request)
	HandleCreateChallenge(w http.ResponseWriter, r *http.Request)
	HandleUpdateChallenge(w http.ResponseWriter, r *http.Request)
	HandleSetPrerequisites(w http.ResponseWriter, r *http.Request)
	HandleReleaseChallenge(w http.ResponseWriter, r *http.Request)
	HandleScheduleRelease(w http.ResponseWriter, r *http.Request)
	HandleReleaseDue(w http.ResponseWriter, r *http.Request)
}

// ChallengeHandlers implements Handlers on top of the challenge service.
type ChallengeHandlers struct {
	service challengeservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewChallengeHandlers creates a new ChallengeHandlers instance.
func NewChallengeHandlers(service challengeservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &ChallengeHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

type prerequisitesRequest struct {
	Prerequisites []uuid.UUID `json:"prerequisites"`
	RequiredCount int         `json:"required_count"`
}

type scheduleRequest struct {
	When     string `json:"when"`
	Timezone string `json:"timezone"`
}

func (h *ChallengeHandlers) HandleListChallenges(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListChallenges(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ChallengeHandlers) HandleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var in challengeservice.ChallengeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.service.CreateChallenge(r.Context(), in)
	h.writeResult(w, r, http.StatusCreated, res, err)
}

func (h *ChallengeHandlers) HandleUpdateChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	var in challengeservice.ChallengeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.service.UpdateChallenge(r.Context(), id, in)
	h.writeResult(w, r, http.StatusOK, res, err)
}

func (h *ChallengeHandlers) HandleSetPrerequisites(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	var req prerequisitesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.service.SetPrerequisites(r.Context(), id, req.Prerequisites, req.RequiredCount)
	h.writeResult(w, r, http.StatusOK, res, err)
}

func (h *ChallengeHandlers) HandleReleaseChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	res, err := h.service.ReleaseChallenge(r.Context(), id)
	h.writeResult(w, r, http.StatusOK, res, err)
}

func (h *ChallengeHandlers) HandleScheduleRelease(w http.ResponseWriter, r *http.Request) {
	id, ok := challengeID(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.service.ScheduleRelease(r.Context(), id, req.When, req.Timezone)
	h.writeResult(w, r, http.StatusOK, res, err)
}

func (h *ChallengeHandlers) HandleReleaseDue(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"
	res, err := h.service.ReleaseDueChallenges(r.Context(), dryRun)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if res.IsFailure() {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusOK, res.Success)
}

func (h *ChallengeHandlers) writeResult(w http.ResponseWriter, r *http.Request, status int, res challengeservice.ChallengeResult, err error) {
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if res.IsFailure() {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, status, res.Success)
}

func (h *ChallengeHandlers) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "Challenge request failed",
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func challengeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid challenge id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// failureStatus maps a domain rejection to its HTTP status.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, challengeservice.ErrChallengeNotFound):
		return http.StatusNotFound
	case errors.Is(err, challengedomain.ErrPrerequisiteCycle),
		errors.Is(err, challengeservice.ErrLockedTypeChange),
		errors.Is(err, challengeservice.ErrExclusiveConflict):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, failureStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
