package journal

import (
	"fmt"
	"strings"

	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/vault"
)

// HolographicMapper describes one concept through several facets.
//
// Every layer is appended to the holograms collection, so the vault keeps
// the full history of a (concept, facet) pair, while the in-memory view
// holds only the latest description per facet.
type HolographicMapper struct {
	concept string
	store   *vault.Vault
	layers  map[string]string
	order   []string // facets in first-insertion order
}

// NewHolographicMapper returns a mapper for concept with no layers.
func NewHolographicMapper(concept string, store *vault.Vault) *HolographicMapper {
	return &HolographicMapper{
		concept: concept,
		store:   store,
		layers:  make(map[string]string),
	}
}

// RestoreHolographicMapper rebuilds the in-memory view of concept by
// replaying its persisted layers in order. Nothing is written.
func RestoreHolographicMapper(concept string, store *vault.Vault) (*HolographicMapper, error) {
	m := NewHolographicMapper(concept, store)
	history, err := vault.ReadFilteredAs(store, models.Holograms, models.ByConcept[models.Hologram](concept))
	if err != nil {
		return nil, err
	}
	for _, h := range history {
		m.set(h.Facet(), h.Description())
	}
	return m, nil
}

// AddLayer sets the description of facet and persists a new layer record.
// An existing facet keeps its position in the synthesis.
func (m *HolographicMapper) AddLayer(facet, description string) error {
	m.set(facet, description)
	if err := m.store.Append(models.Holograms, models.NewHologram(m.concept, facet, description)); err != nil {
		return fmt.Errorf("persist layer %q of %q: %w", facet, m.concept, err)
	}
	return nil
}

// Layers returns the facets in first-insertion order.
func (m *HolographicMapper) Layers() []string {
	return append([]string(nil), m.order...)
}

// Synthesize joins "facet: description" for every facet with " | ".
func (m *HolographicMapper) Synthesize() string {
	parts := make([]string, len(m.order))
	for i, facet := range m.order {
		parts[i] = fmt.Sprintf("%s: %s", facet, m.layers[facet])
	}
	return strings.Join(parts, " | ")
}

func (m *HolographicMapper) set(facet, description string) {
	if _, ok := m.layers[facet]; !ok {
		m.order = append(m.order, facet)
	}
	m.layers[facet] = description
}
