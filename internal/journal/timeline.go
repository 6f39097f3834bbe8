package journal

import (
	"fmt"
	"strings"

	"github.com/starford/scaffold/internal/models"
)

// TimelineEditor accumulates timeline events in memory. It is not synced
// with the vault; callers persist events explicitly.
type TimelineEditor struct {
	events []models.TimelineEvent
}

// NewTimelineEditor returns an editor seeded with events.
func NewTimelineEditor(events ...models.TimelineEvent) *TimelineEditor {
	return &TimelineEditor{events: append([]models.TimelineEvent(nil), events...)}
}

// Add appends an event. Field contents are not validated.
func (e *TimelineEditor) Add(event models.TimelineEvent) {
	e.events = append(e.events, event)
}

// Events returns a copy of the held events in insertion order.
func (e *TimelineEditor) Events() []models.TimelineEvent {
	return append([]models.TimelineEvent(nil), e.events...)
}

// Render returns one "timestamp: description -> outcome" line per event.
func (e *TimelineEditor) Render() string {
	lines := make([]string, len(e.events))
	for i, ev := range e.events {
		lines[i] = fmt.Sprintf("%s: %s -> %s", ev.Timestamp, ev.Description, ev.Outcome)
	}
	return strings.Join(lines, "\n")
}
