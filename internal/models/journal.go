// Package models defines the record types persisted in the vault document.
package models

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Collection names one of the ordered sequences inside the vault document.
type Collection string

// The five collections of a vault document.
const (
	Events         Collection = "events"
	Affirmations   Collection = "affirmations"
	Reflections    Collection = "reflections"
	Reinforcements Collection = "reinforcements"
	Holograms      Collection = "holograms"
)

// Collections lists every collection in document order.
var Collections = []Collection{Events, Affirmations, Reflections, Reinforcements, Holograms}

// Validate reports whether c is one of the known collections.
func (c Collection) Validate() error {
	return validation.Validate(string(c), validation.Required, validation.In(
		string(Events), string(Affirmations), string(Reflections),
		string(Reinforcements), string(Holograms),
	))
}

// TimelineEvent is one imagined scene of a timeline.
type TimelineEvent struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
}

// UnmarshalJSON rejects records missing any of the three keys.
// Empty strings are accepted.
func (e *TimelineEvent) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if err := requireKeys(m, "timestamp", "description", "outcome"); err != nil {
		return err
	}
	*e = TimelineEvent{
		Timestamp:   m["timestamp"],
		Description: m["description"],
		Outcome:     m["outcome"],
	}
	return nil
}

// Entry keys used by reinforcement and hologram records.
const (
	KeyConcept     = "concept"
	KeyPhase       = "phase"
	KeyText        = "text"
	KeyFacet       = "facet"
	KeyDescription = "description"
	KeyDrillID     = "drill_id"
)

// MaxDrillWordCounts bounds the word counts accepted for one drill at the
// transport boundary; each count costs one vault write.
const MaxDrillWordCounts = 64

// PhaseDecompress is the phase of the full expansion recorded by a drill.
const PhaseDecompress = "decompress"

// CompressPhase returns the phase name of a drill step keeping count words.
func CompressPhase(count int) string {
	return fmt.Sprintf("compress_%d", count)
}

// Entry is an open-ended string mapping used for reinforcement and hologram
// records. Required keys depend on the collection; extra keys are kept.
type Entry map[string]string

// ByConcept returns a predicate matching records of the given concept.
func ByConcept[T interface{ Concept() string }](concept string) func(T) bool {
	return func(r T) bool { return r.Concept() == concept }
}

// Reinforcement is an Entry stored in the reinforcements collection.
type Reinforcement Entry

// NewReinforcement builds a reinforcement record.
func NewReinforcement(concept, phase, text string) Reinforcement {
	return Reinforcement{KeyConcept: concept, KeyPhase: phase, KeyText: text}
}

// Concept returns the reinforced concept.
func (r Reinforcement) Concept() string { return r[KeyConcept] }

// Phase returns the drill phase, e.g. "decompress" or "compress_3".
func (r Reinforcement) Phase() string { return r[KeyPhase] }

// Text returns the recorded text of the phase.
func (r Reinforcement) Text() string { return r[KeyText] }

// Validate requires the concept, phase and text keys. Values may be empty.
func (r Reinforcement) Validate() error {
	return requireKeys(map[string]string(r), KeyConcept, KeyPhase, KeyText)
}

// Hologram is an Entry stored in the holograms collection.
type Hologram Entry

// NewHologram builds a hologram layer record.
func NewHologram(concept, facet, description string) Hologram {
	return Hologram{KeyConcept: concept, KeyFacet: facet, KeyDescription: description}
}

// Concept returns the mapped concept.
func (h Hologram) Concept() string { return h[KeyConcept] }

// Facet returns the perspective name of the layer.
func (h Hologram) Facet() string { return h[KeyFacet] }

// Description returns the layer description.
func (h Hologram) Description() string { return h[KeyDescription] }

// Validate requires the concept, facet and description keys. Values may be empty.
func (h Hologram) Validate() error {
	return requireKeys(map[string]string(h), KeyConcept, KeyFacet, KeyDescription)
}

func requireKeys(m map[string]string, keys ...string) error {
	if m == nil {
		return fmt.Errorf("record is null")
	}
	rules := make([]*validation.KeyRules, len(keys))
	for i, k := range keys {
		rules[i] = validation.Key(k)
	}
	// MapRule.Validate is called directly; validation.Validate would recurse
	// into the Validatable record types.
	return validation.Map(rules...).AllowExtraKeys().Validate(m)
}
