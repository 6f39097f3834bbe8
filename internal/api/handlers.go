package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scaffold/internal/journalservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *journalservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *journalservice.Service) *Handler {
	return &Handler{svc: svc}
}

// conceptParam extracts the {concept} URL segment. chi routes on RawPath
// when the request has one, so only then is the segment still escaped
// (e.g. an encoded slash).
func conceptParam(r *http.Request) string {
	raw := chi.URLParam(r, "concept")
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListEvents handles GET /api/events.
//
//	@Summary		List timeline events in insertion order
//	@Tags			events
//	@Produce		json
//	@Success		200	{object}	map[string][]models.TimelineEvent
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events(r.Context())
	if err != nil {
		writeError(w, "list events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": nonNilSlice(events)})
}

// AddEvent handles POST /api/events.
//
//	@Summary		Persist a timeline event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EventRequest	true	"Event"
//	@Success		201		{object}	models.TimelineEvent
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [post]
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "add event", err)
		return
	}
	ev := req.Event()
	if err := h.svc.AddEvent(r.Context(), ev); err != nil {
		writeError(w, "add event", err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// RenderTimeline handles GET /api/timeline and returns the rendered
// timeline as plain text.
func (h *Handler) RenderTimeline(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.RenderTimeline(r.Context())
	if err != nil {
		writeError(w, "render timeline", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// ListAffirmations handles GET /api/affirmations.
func (h *Handler) ListAffirmations(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Affirmations(r.Context())
	if err != nil {
		writeError(w, "list affirmations", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"affirmations": nonNilSlice(items)})
}

// AddAffirmation handles POST /api/affirmations.
//
//	@Summary		Persist an affirmation and add it to the rotation
//	@Tags			affirmations
//	@Accept			json
//	@Param			body	body		TextRequest	true	"Affirmation"
//	@Success		201		{object}	TextRequest
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/affirmations [post]
func (h *Handler) AddAffirmation(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "add affirmation", err)
		return
	}
	if err := h.svc.AddAffirmation(r.Context(), req.Text); err != nil {
		writeError(w, "add affirmation", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// NextAffirmation handles GET /api/affirmations/next. The text is empty
// when no affirmations exist.
func (h *Handler) NextAffirmation(w http.ResponseWriter, r *http.Request) {
	text, err := h.svc.NextAffirmation(r.Context())
	if err != nil {
		writeError(w, "next affirmation", err)
		return
	}
	writeJSON(w, http.StatusOK, NextAffirmationResponse{Text: text})
}

// ListReflections handles GET /api/reflections.
func (h *Handler) ListReflections(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Reflections(r.Context())
	if err != nil {
		writeError(w, "list reflections", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reflections": nonNilSlice(items)})
}

// Reflect handles POST /api/reflections.
func (h *Handler) Reflect(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "reflect", err)
		return
	}
	if err := h.svc.Reflect(r.Context(), req.Text); err != nil {
		writeError(w, "reflect", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListHolograms handles GET /api/holograms.
//
//	@Summary		List hologram layers
//	@Tags			holograms
//	@Produce		json
//	@Param			concept	query		string	false	"Filter by concept"
//	@Success		200		{object}	map[string][]models.Hologram
//	@Security		BearerAuth
//	@Router			/holograms [get]
func (h *Handler) ListHolograms(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Holograms(r.Context(), r.URL.Query().Get("concept"))
	if err != nil {
		writeError(w, "list holograms", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holograms": nonNilSlice(items)})
}

// AddLayer handles POST /api/holograms.
func (h *Handler) AddLayer(w http.ResponseWriter, r *http.Request) {
	var req LayerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "add layer", err)
		return
	}
	synthesis, err := h.svc.AddHologramLayer(r.Context(), req.Concept, req.Facet, req.Description)
	if err != nil {
		writeError(w, "add layer", err)
		return
	}
	writeJSON(w, http.StatusCreated, LayerResponse{Concept: req.Concept, Synthesis: synthesis})
}

// Synthesize handles GET /api/holograms/{concept}/synthesis.
//
//	@Summary		Synthesize the current layers of a concept
//	@Tags			holograms
//	@Produce		json
//	@Param			concept	path		string	true	"Concept"
//	@Success		200		{object}	SynthesisResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/holograms/{concept}/synthesis [get]
func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	concept := conceptParam(r)
	synthesis, err := h.svc.Synthesize(r.Context(), concept)
	if err != nil {
		writeError(w, "synthesize", err)
		return
	}
	writeJSON(w, http.StatusOK, SynthesisResponse{Concept: concept, Synthesis: synthesis})
}

// ListReinforcements handles GET /api/reinforcements.
func (h *Handler) ListReinforcements(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Reinforcements(r.Context(), r.URL.Query().Get("concept"))
	if err != nil {
		writeError(w, "list reinforcements", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reinforcements": nonNilSlice(items)})
}

// Drill handles POST /api/reinforcements.
//
//	@Summary		Run a compression drill
//	@Tags			reinforcements
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DrillRequest	true	"Drill"
//	@Success		201		{object}	DrillResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reinforcements [post]
func (h *Handler) Drill(w http.ResponseWriter, r *http.Request) {
	var req DrillRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "drill", err)
		return
	}
	summaries, err := h.svc.Drill(r.Context(), req.Concept, req.Expansion, req.WordCounts)
	if err != nil {
		writeError(w, "drill", err)
		return
	}
	writeJSON(w, http.StatusCreated, DrillResponse{Concept: req.Concept, Summaries: nonNilSlice(summaries)})
}
