package ledgerhandlers

import (
	"github.com/Black-And-White-Club/flag-hunt/app/shared/httpmw"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the participant-facing routes. Submissions require the
// participant header and are rate limited per client address.
func Routes(r chi.Router, h Handlers, limiter *httpmw.ClientLimiter) {
	r.Get("/standings", h.HandleStandings)
	r.Get("/standings/chart.png", h.HandleStandingsChart)
	r.Get("/challenges/decay", h.HandleDecayTable)
	r.Get("/challenges/{id}/stats", h.HandleChallengeStats)

	r.Group(func(r chi.Router) {
		r.Use(httpmw.RequireParticipant)
		r.Get("/me/stats", h.HandleMyStats)
		r.With(httpmw.LimitByClient(limiter)).Post("/challenges/{id}/submissions", h.HandleSubmit)
	})
}

// AdminRoutes mounts the staff routes. Callers wrap r with the actor middleware.
func AdminRoutes(r chi.Router, h Handlers) {
	r.Get("/cohorts", h.HandleListCohorts)
	r.Post("/cohorts", h.HandleRegisterCohort)
	r.Put("/participants/{id}", h.HandleRegisterParticipant)
	r.Post("/completions/{id}/invalidate", h.HandleInvalidateCompletion)
	r.Post("/submissions/{id}/invalidate", h.HandleInvalidateSubmission)
	r.Get("/export.xlsx", h.HandleExport)
}
