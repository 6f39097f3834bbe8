package journal

import (
	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/vault"
)

// FeedbackLoop records reflections to track progress.
type FeedbackLoop struct {
	store *vault.Vault
}

// NewFeedbackLoop returns a FeedbackLoop persisting to store.
func NewFeedbackLoop(store *vault.Vault) *FeedbackLoop {
	return &FeedbackLoop{store: store}
}

// Reflect appends a reflection.
func (f *FeedbackLoop) Reflect(text string) error {
	return f.store.Append(models.Reflections, text)
}

// History returns all reflections, oldest first.
func (f *FeedbackLoop) History() ([]string, error) {
	return vault.ReadAllAs[string](f.store, models.Reflections)
}
