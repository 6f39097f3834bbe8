package vault

import (
	"encoding/json"
	"fmt"

	"github.com/starford/scaffold/internal/apperr"
	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/storage"
)

type validator interface {
	Validate() error
}

// ReadAllAs decodes every entry of c into T. An entry that does not decode,
// or fails T's Validate method, makes the whole read fail with
// apperr.ErrStorageCorrupt.
func ReadAllAs[T any](v *Vault, c models.Collection) ([]T, error) {
	raw, err := v.ReadAll(c)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](c, raw)
}

// ReadFilteredAs is ReadAllAs keeping only the entries for which keep holds.
func ReadFilteredAs[T any](v *Vault, c models.Collection, keep func(T) bool) ([]T, error) {
	all, err := ReadAllAs[T](v, c)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func decodeAll[T any](c models.Collection, raw []json.RawMessage) ([]T, error) {
	out := make([]T, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", apperr.ErrStorageCorrupt, c, i, err)
		}
		if val, ok := any(out[i]).(validator); ok {
			if err := val.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %w", apperr.ErrStorageCorrupt, c, i, err)
			}
		}
	}
	return out, nil
}

// Snapshot is a fully decoded copy of the document taken in a single read.
type Snapshot struct {
	Checksum       string
	Events         []models.TimelineEvent
	Affirmations   []string
	Reflections    []string
	Reinforcements []models.Reinforcement
	Holograms      []models.Hologram
}

// Snapshot reads and decodes the whole document once.
func (v *Vault) Snapshot() (*Snapshot, error) {
	doc, data, err := v.load()
	if err != nil {
		return nil, err
	}
	s := &Snapshot{Checksum: storage.Checksum(data)}
	if s.Events, err = decodeCollection[models.TimelineEvent](doc, models.Events); err != nil {
		return nil, err
	}
	if s.Affirmations, err = decodeCollection[string](doc, models.Affirmations); err != nil {
		return nil, err
	}
	if s.Reflections, err = decodeCollection[string](doc, models.Reflections); err != nil {
		return nil, err
	}
	if s.Reinforcements, err = decodeCollection[models.Reinforcement](doc, models.Reinforcements); err != nil {
		return nil, err
	}
	if s.Holograms, err = decodeCollection[models.Hologram](doc, models.Holograms); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeCollection[T any](doc document, c models.Collection) ([]T, error) {
	raw, err := doc.entries(c)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](c, raw)
}
