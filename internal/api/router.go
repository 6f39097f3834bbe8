package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scaffold/internal/journalservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /stream inside the auth group.
func NewRouter(svc *journalservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/events", h.ListEvents)
	r.Post("/events", h.AddEvent)
	r.Get("/timeline", h.RenderTimeline)

	r.Get("/affirmations", h.ListAffirmations)
	r.Post("/affirmations", h.AddAffirmation)
	r.Get("/affirmations/next", h.NextAffirmation)

	r.Get("/reflections", h.ListReflections)
	r.Post("/reflections", h.Reflect)

	r.Get("/holograms", h.ListHolograms)
	r.Post("/holograms", h.AddLayer)
	r.Get("/holograms/{concept}/synthesis", h.Synthesize)

	r.Get("/reinforcements", h.ListReinforcements)
	r.Post("/reinforcements", h.Drill)

	if sseHandler != nil {
		r.Get("/stream", sseHandler.ServeHTTP)
	}

	return r
}
