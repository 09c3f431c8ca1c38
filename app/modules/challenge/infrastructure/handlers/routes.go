package challengehandlers

import "github.com/go-chi/chi/v5"

// Routes mounts the challenge admin routes on r. Callers wrap r with the
// actor middleware.
func Routes(r chi.Router, h Handlers) {
	r.Get("/challenges", h.HandleListChallenges)
	r.Post("/challenges", h.HandleCreateChallenge)
	r.Post("/challenges/release-due", h.HandleReleaseDue)
	r.Put("/challenges/{id}", h.HandleUpdateChallenge)
	r.Put("/challenges/{id}/prerequisites", h.HandleSetPrerequisites)
	r.Post("/challenges/{id}/release", h.HandleReleaseChallenge)
	r.Post("/challenges/{id}/schedule", h.HandleScheduleRelease)
}
