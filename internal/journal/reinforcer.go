package journal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/vault"
)

// CompressionReinforcer records decompression/compression drills.
type CompressionReinforcer struct {
	store *vault.Vault
	newID func() string
}

// NewCompressionReinforcer returns a reinforcer persisting to store.
func NewCompressionReinforcer(store *vault.Vault) *CompressionReinforcer {
	return &CompressionReinforcer{store: store, newID: uuid.NewString}
}

// Drill persists the full expansion, then one progressively shorter summary
// per entry of wordCounts, and returns the summaries in wordCounts order.
//
// A summary keeps the first min(count, words) whitespace-separated words of
// expansion; a count <= 0 yields "". Every record of one drill shares a
// drill_id.
func (r *CompressionReinforcer) Drill(concept, expansion string, wordCounts []int) ([]string, error) {
	drillID := r.newID()

	if err := r.persist(drillID, concept, models.PhaseDecompress, expansion); err != nil {
		return nil, err
	}

	words := strings.Fields(expansion)
	results := make([]string, 0, len(wordCounts))
	for _, count := range wordCounts {
		n := min(max(count, 0), len(words))
		summary := strings.Join(words[:n], " ")
		if err := r.persist(drillID, concept, models.CompressPhase(count), summary); err != nil {
			return nil, err
		}
		results = append(results, summary)
	}
	return results, nil
}

// History returns the persisted drill records of concept in insertion order.
func (r *CompressionReinforcer) History(concept string) ([]models.Reinforcement, error) {
	return vault.ReadFilteredAs(r.store, models.Reinforcements, models.ByConcept[models.Reinforcement](concept))
}

func (r *CompressionReinforcer) persist(drillID, concept, phase, text string) error {
	rec := models.NewReinforcement(concept, phase, text)
	rec[models.KeyDrillID] = drillID
	if err := r.store.Append(models.Reinforcements, rec); err != nil {
		return fmt.Errorf("persist %s of %q: %w", phase, concept, err)
	}
	return nil
}
