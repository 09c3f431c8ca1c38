package ledgerhandlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	ledgerservice "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/application"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/httpmw"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Handlers exposes the participant-facing and admin ledger routes.
type Handlers interface {
	HandleSubmit(w http.ResponseWriter, r *http.Request)
	HandleStandings(w http.ResponseWriter, r *http.Request)
	HandleStandingsChart(w http.ResponseWriter, r *http.Request)
	HandleDecayTable(w http.ResponseWriter, r *http.Request)
	HandleChallengeStats(w http.ResponseWriter, r *http.Request)
	HandleMyStats(w http.ResponseWriter, r *http.Request)

	HandleListCohorts(w http.ResponseWriter, r *http.Request)
	HandleRegisterCohort(w http.ResponseWriter, r *http.Request)
	HandleRegisterParticipant(w http.ResponseWriter, r *http.Request)
	HandleInvalidateCompletion(w http.ResponseWriter, r *http.Request)
	HandleInvalidateSubmission(w http.ResponseWriter, r *http.Request)
	HandleExport(w http.ResponseWriter, r *http.Request)
}

// LedgerHandlers implements Handlers on top of the ledger service.
type LedgerHandlers struct {
	service ledgerservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewLedgerHandlers creates a new LedgerHandlers instance.
func NewLedgerHandlers(service ledgerservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &LedgerHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

type submitRequest struct {
	Flag string `json:"flag"`
}

type cohortRequest struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type participantRequest struct {
	DisplayName string    `json:"display_name"`
	CohortID    uuid.UUID `json:"cohort_id"`
	IsStaff     bool      `json:"is_staff"`
}

// errorResult is the body every failed submission returns so clients can
// branch on "result" alone.
type errorResult struct {
	Result ledgerdomain.Result `json:"result"`
	Error  string              `json:"error,omitempty"`
}

func (h *LedgerHandlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	participantID, ok := httpmw.ParticipantID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	challengeID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResult{Result: ledgerdomain.ResultError, Error: "invalid request body"})
		return
	}

	res, err := h.service.Submit(r.Context(), participantID, challengeID, req.Flag)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Submission failed",
			attr.UUID("participant_id", participantID),
			attr.UUID("challenge_id", challengeID),
			attr.Error(err),
		)
		status := http.StatusInternalServerError
		if errors.Is(err, ledgerservice.ErrTransient) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResult{Result: ledgerdomain.ResultError})
		return
	}
	if res.IsFailure() {
		writeJSON(w, failureStatus(*res.Failure), errorResult{Result: ledgerdomain.ResultError, Error: (*res.Failure).Error()})
		return
	}
	writeJSON(w, http.StatusOK, res.Success)
}

func (h *LedgerHandlers) HandleStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.service.CohortStandings(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (h *LedgerHandlers) HandleStandingsChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.StandingsChart(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (h *LedgerHandlers) HandleDecayTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.service.DecayTable(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *LedgerHandlers) HandleChallengeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.service.ChallengeStats(r.Context(), id)
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

func (h *LedgerHandlers) HandleMyStats(w http.ResponseWriter, r *http.Request) {
	participantID, ok := httpmw.ParticipantID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	stats, err := h.service.ParticipantStats(r.Context(), participantID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *LedgerHandlers) HandleListCohorts(w http.ResponseWriter, r *http.Request) {
	cohorts, err := h.service.ListCohorts(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cohorts)
}

func (h *LedgerHandlers) HandleRegisterCohort(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	var req cohortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.service.RegisterCohort(r.Context(), req.Name, req.SortOrder, actorID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if res.IsFailure() {
		writeFailure(w, *res.Failure)
		return
	}
	writeJSON(w, http.StatusCreated, res.Success)
}

func (h *LedgerHandlers) HandleRegisterParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := h.service.RegisterParticipant(r.Context(), ledgerdomain.Participant{
		ID:          id,
		DisplayName: req.DisplayName,
		CohortID:    req.CohortID,
		IsStaff:     req.IsStaff,
	})
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

func (h *LedgerHandlers) HandleInvalidateCompletion(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.service.InvalidateCompletion(r.Context(), id, actorID)
	h.writeInvalidation(w, r, res, err)
}

func (h *LedgerHandlers) HandleInvalidateSubmission(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.service.InvalidateSubmission(r.Context(), id, actorID)
	h.writeInvalidation(w, r, res, err)
}

func (h *LedgerHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportWorkbook(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="hunt-export.xlsx"`)
	_, _ = w.Write(data)
}

func (h *LedgerHandlers) writeInvalidation(w http.ResponseWriter, r *http.Request, res ledgerservice.InvalidationOutcome, err error) {
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

func (h *LedgerHandlers) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "Ledger request failed",
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	status := http.StatusInternalServerError
	if errors.Is(err, ledgerservice.ErrTransient) {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, http.StatusText(status), status)
}

func actor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := httpmw.ActorID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// failureStatus maps a domain rejection to its HTTP status.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, ledgerservice.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledgerservice.ErrAlreadyInvalidated):
		return http.StatusConflict
	case errors.Is(err, ledgerservice.ErrValidation):
		return http.StatusBadRequest
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
