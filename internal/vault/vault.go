// Package vault implements the JSON document store that owns all durable
// journal state.
//
// The document is a single JSON object holding five ordered collections
// (see models.Collections). Every operation reads the whole file; every
// mutating operation then writes the whole file back through an atomic
// replace. A Vault keeps no document state between calls and is not safe
// for concurrent use.
package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/starford/scaffold/internal/apperr"
	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/storage"
)

// DefaultPath is the document location used when none is configured.
const DefaultPath = "vault.json"

// Vault is the persistent store bound to one document path.
type Vault struct {
	fs   storage.Provider
	name string // file name relative to the provider root
	path string
}

// New binds a Vault to the document at path without touching the file.
// The parent directory must exist.
func New(path string) (*Vault, error) {
	if path == "" {
		path = DefaultPath
	}
	fs, err := storage.NewFS(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorageIO, err)
	}
	return &Vault{fs: fs, name: filepath.Base(path), path: path}, nil
}

// Open binds a Vault to path and creates an empty document if none exists.
func Open(path string) (*Vault, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := v.EnsureInitialized(); err != nil {
		return nil, err
	}
	return v, nil
}

// Path returns the document path the Vault is bound to.
func (v *Vault) Path() string {
	return v.path
}

// EnsureInitialized writes a document with five empty collections when no
// file exists. An existing file is never rewritten, even if malformed.
func (v *Vault) EnsureInitialized() error {
	ok, err := v.fs.Exists(v.name)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorageIO, err)
	}
	if ok {
		return nil
	}
	doc := make(document, len(models.Collections))
	for _, c := range models.Collections {
		doc[string(c)] = json.RawMessage("[]")
	}
	return v.save(doc)
}

// Append adds record to the end of collection c. record is stored as its
// JSON encoding without validation.
func (v *Vault) Append(c models.Collection, record any) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %q", apperr.ErrUnknownCollection, c)
	}
	raw, err := marshal(record)
	if err != nil {
		return fmt.Errorf("vault: encode %s record: %w", c, err)
	}

	doc, _, err := v.load()
	if err != nil {
		return err
	}
	entries, err := doc.entries(c)
	if err != nil {
		return err
	}
	entries = append(entries, raw)

	encoded, err := marshal(entries)
	if err != nil {
		return fmt.Errorf("vault: encode %s: %w", c, err)
	}
	doc[string(c)] = encoded
	return v.save(doc)
}

// ReadAll returns the raw entries of collection c in insertion order.
// A collection missing from the document reads as empty.
func (v *Vault) ReadAll(c models.Collection) ([]json.RawMessage, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownCollection, c)
	}
	doc, _, err := v.load()
	if err != nil {
		return nil, err
	}
	return doc.entries(c)
}

// ReadFiltered returns the raw entries of c for which keep holds, in order.
func (v *Vault) ReadFiltered(c models.Collection, keep func(json.RawMessage) bool) ([]json.RawMessage, error) {
	all, err := v.ReadAll(c)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, 0, len(all))
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Checksum returns the SHA-256 of the document bytes currently on disk.
func (v *Vault) Checksum() (string, error) {
	data, err := v.fs.Read(v.name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrStorageIO, err)
	}
	return storage.Checksum(data), nil
}

type document map[string]json.RawMessage

// marshal is json.Marshal without HTML escaping, so record text stays
// readable in the file.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (v *Vault) load() (document, []byte, error) {
	data, err := v.fs.Read(v.name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", apperr.ErrStorageIO, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", apperr.ErrStorageCorrupt, v.path, err)
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("%w: %s: document is null", apperr.ErrStorageCorrupt, v.path)
	}
	return doc, data, nil
}

func (v *Vault) save(doc document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("vault: encode document: %w", err)
	}
	if err := v.fs.Write(v.name, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorageIO, err)
	}
	return nil
}

// entries decodes collection c; an absent key yields an empty slice.
func (d document) entries(c models.Collection) ([]json.RawMessage, error) {
	raw, ok := d[string(c)]
	if !ok {
		return []json.RawMessage{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: collection %s is null", apperr.ErrStorageCorrupt, c)
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: collection %s: %w", apperr.ErrStorageCorrupt, c, err)
	}
	// Entries are sliced from the indented file; compact them so callers
	// see the same bytes Append encoded.
	for i, e := range out {
		var buf bytes.Buffer
		if err := json.Compact(&buf, e); err != nil {
			return nil, fmt.Errorf("%w: collection %s[%d]: %w", apperr.ErrStorageCorrupt, c, i, err)
		}
		out[i] = buf.Bytes()
	}
	return out, nil
}
