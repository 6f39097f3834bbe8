package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scaffold/internal/models"
)

// EventRequest is the request body for persisting a timeline event.
// Empty fields are allowed.
type EventRequest struct {
	Timestamp   string `json:"timestamp" example:"2025-01-01"`
	Description string `json:"description" example:"Launch new venture"`
	Outcome     string `json:"outcome" example:"Success and fulfillment"`
}

// Validate accepts any event.
func (r *EventRequest) Validate() error { return nil }

// Event converts the request into a record.
func (r *EventRequest) Event() models.TimelineEvent {
	return models.TimelineEvent{Timestamp: r.Timestamp, Description: r.Description, Outcome: r.Outcome}
}

// TextRequest is the request body for affirmations and reflections.
type TextRequest struct {
	Text string `json:"text" example:"I adapt and grow." validate:"required"`
}

// Validate validates the request.
func (r *TextRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required),
	)
}

// LayerRequest is the request body for adding a hologram layer.
type LayerRequest struct {
	Concept     string `json:"concept" example:"Resilience" validate:"required"`
	Facet       string `json:"facet" example:"visual" validate:"required"`
	Description string `json:"description" example:"oak tree bending but not breaking"`
}

// Validate validates the request.
func (r *LayerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Concept, validation.Required),
		validation.Field(&r.Facet, validation.Required),
	)
}

// DrillRequest is the request body for a compression drill.
type DrillRequest struct {
	Concept    string `json:"concept" example:"Abundant mindset" validate:"required"`
	Expansion  string `json:"expansion" example:"I trust that opportunities continually flow toward me." validate:"required"`
	WordCounts []int  `json:"word_counts" example:"12,6,3"`
}

// Validate validates the request.
func (r *DrillRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Concept, validation.Required),
		validation.Field(&r.Expansion, validation.Required),
		validation.Field(&r.WordCounts, validation.Length(0, models.MaxDrillWordCounts)),
	)
}

// LayerResponse is returned after adding a hologram layer.
type LayerResponse struct {
	Concept   string `json:"concept"`
	Synthesis string `json:"synthesis"`
}

// DrillResponse is returned after a drill.
type DrillResponse struct {
	Concept   string   `json:"concept"`
	Summaries []string `json:"summaries"`
}

// SynthesisResponse is returned by the synthesis endpoint.
type SynthesisResponse struct {
	Concept   string `json:"concept"`
	Synthesis string `json:"synthesis"`
}

// NextAffirmationResponse is returned by the rotation endpoint.
type NextAffirmationResponse struct {
	Text string `json:"text"`
}
