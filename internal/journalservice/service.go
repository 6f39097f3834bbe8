// Package journalservice coordinates the vault and the journal facades for
// the concurrent transports (HTTP API, MCP server).
package journalservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/scaffold/internal/apperr"
	"github.com/starford/scaffold/internal/journal"
	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/vault"
)

// ChangeFunc is called after a successful append to collection c.
type ChangeFunc func(c models.Collection)

// Service serializes all vault access behind one mutex. The vault and the
// facades are single-threaded; the transports are not.
type Service struct {
	mu     sync.Mutex
	store  *vault.Vault
	notify ChangeFunc
	logger *slog.Logger

	feedback   *journal.FeedbackLoop
	reinforcer *journal.CompressionReinforcer

	// Caches rebuilt from the vault on demand.
	timeline     *journal.TimelineEditor
	rotator      *journal.AffirmationRotator
	mappers      map[string]*journal.HolographicMapper
	lastChecksum string
}

// NewService creates a new journal service. notify may be nil.
func NewService(store *vault.Vault, notify ChangeFunc, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		notify:     notify,
		logger:     logger,
		feedback:   journal.NewFeedbackLoop(store),
		reinforcer: journal.NewCompressionReinforcer(store),
		mappers:    make(map[string]*journal.HolographicMapper),
	}
}

// AddEvent persists a timeline event.
func (s *Service) AddEvent(_ context.Context, ev models.TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Append(models.Events, ev); err != nil {
		return err
	}
	if s.timeline != nil {
		s.timeline.Add(ev)
	}
	s.changed(models.Events)
	return nil
}

// Events returns all persisted timeline events.
func (s *Service) Events(_ context.Context) ([]models.TimelineEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tl, err := s.loadTimeline()
	if err != nil {
		return nil, err
	}
	return tl.Events(), nil
}

// RenderTimeline renders the persisted events, one line per event.
func (s *Service) RenderTimeline(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tl, err := s.loadTimeline()
	if err != nil {
		return "", err
	}
	return tl.Render(), nil
}

func (s *Service) loadTimeline() (*journal.TimelineEditor, error) {
	if s.timeline != nil {
		return s.timeline, nil
	}
	events, err := vault.ReadAllAs[models.TimelineEvent](s.store, models.Events)
	if err != nil {
		return nil, err
	}
	s.timeline = journal.NewTimelineEditor(events...)
	return s.timeline, nil
}

// AddAffirmation persists an affirmation and adds it to the rotation.
func (s *Service) AddAffirmation(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Append(models.Affirmations, text); err != nil {
		return err
	}
	if s.rotator != nil {
		s.rotator.Add(text)
	}
	s.changed(models.Affirmations)
	return nil
}

// Affirmations returns all persisted affirmations.
func (s *Service) Affirmations(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return vault.ReadAllAs[string](s.store, models.Affirmations)
}

// NextAffirmation returns the next affirmation of the rotation, loading the
// rotation from the vault on first use. It returns "" when there are none.
func (s *Service) NextAffirmation(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotator == nil {
		items, err := vault.ReadAllAs[string](s.store, models.Affirmations)
		if err != nil {
			return "", err
		}
		s.rotator = journal.NewAffirmationRotator(items)
	}
	return s.rotator.Next(), nil
}

// Reflect persists a reflection.
func (s *Service) Reflect(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.feedback.Reflect(text); err != nil {
		return err
	}
	s.changed(models.Reflections)
	return nil
}

// Reflections returns all reflections, oldest first.
func (s *Service) Reflections(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback.History()
}

// AddHologramLayer adds a facet layer to concept and returns the updated synthesis.
func (s *Service) AddHologramLayer(_ context.Context, concept, facet, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.mapper(concept)
	if err != nil {
		return "", err
	}
	if err := m.AddLayer(facet, description); err != nil {
		// The in-memory view may be ahead of the vault now.
		delete(s.mappers, concept)
		return "", err
	}
	s.changed(models.Holograms)
	return m.Synthesize(), nil
}

// Holograms returns the persisted layers, filtered by concept when non-empty.
func (s *Service) Holograms(_ context.Context, concept string) ([]models.Hologram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if concept == "" {
		return vault.ReadAllAs[models.Hologram](s.store, models.Holograms)
	}
	return vault.ReadFilteredAs(s.store, models.Holograms, models.ByConcept[models.Hologram](concept))
}

// Synthesize returns the synthesis of concept, or apperr.ErrNotFound when
// the concept has no layers.
func (s *Service) Synthesize(_ context.Context, concept string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.mapper(concept)
	if err != nil {
		return "", err
	}
	if len(m.Layers()) == 0 {
		delete(s.mappers, concept)
		return "", fmt.Errorf("concept %q: %w", concept, apperr.ErrNotFound)
	}
	return m.Synthesize(), nil
}

// Drill runs a compression drill and returns the summaries.
func (s *Service) Drill(_ context.Context, concept, expansion string, wordCounts []int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.reinforcer.Drill(concept, expansion, wordCounts)
	if err != nil {
		return nil, err
	}
	s.changed(models.Reinforcements)
	return out, nil
}

// Reinforcements returns the persisted drill records, filtered by concept when non-empty.
func (s *Service) Reinforcements(_ context.Context, concept string) ([]models.Reinforcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if concept == "" {
		return vault.ReadAllAs[models.Reinforcement](s.store, models.Reinforcements)
	}
	return s.reinforcer.History(concept)
}

// Snapshot returns a decoded copy of the whole vault.
func (s *Service) Snapshot(_ context.Context) (*vault.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Reload drops the cached timeline, rotation and mappers when the vault file was
// changed by something other than this service.
func (s *Service) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, err := s.store.Checksum()
	if err != nil {
		s.logger.Warn("reload: checksum failed", slog.String("error", err.Error()))
		return
	}
	if sum == s.lastChecksum {
		return
	}
	s.lastChecksum = sum
	s.timeline = nil
	s.rotator = nil
	s.mappers = make(map[string]*journal.HolographicMapper)
	s.logger.Debug("reload: caches dropped", slog.String("checksum", sum))
}

func (s *Service) mapper(concept string) (*journal.HolographicMapper, error) {
	if m, ok := s.mappers[concept]; ok {
		return m, nil
	}
	m, err := journal.RestoreHolographicMapper(concept, s.store)
	if err != nil {
		return nil, err
	}
	s.mappers[concept] = m
	return m, nil
}

// changed records the checksum of our own write and notifies listeners.
// Must be called with s.mu held.
func (s *Service) changed(c models.Collection) {
	if sum, err := s.store.Checksum(); err == nil {
		s.lastChecksum = sum
	}
	s.logger.Debug("vault appended", slog.String("collection", string(c)))
	if s.notify != nil {
		s.notify(c)
	}
}
