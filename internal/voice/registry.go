// Package voice defines the static voice table and the registry that resolves
// voice ids to their model artifacts.
package voice

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/book-expert/logger"
)

var (
	// ErrUnknownVoice indicates that the requested voice id is not registered.
	ErrUnknownVoice = errors.New("unknown voice")
	// ErrModelNotFound indicates that a voice's model artifact is missing on disk.
	ErrModelNotFound = errors.New("voice model not found")
)

// Registry is the read-only voice lookup built once at startup. It holds only
// voices whose artifacts were present when the registry was constructed.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// New builds a registry from the static table rooted at modelsDir, verifying
// every entry's artifacts. A voice with a missing artifact is excluded and
// logged; a missing default-voice artifact fails construction.
func New(modelsDir string, log *logger.Logger) (*Registry, error) {
	registry := &Registry{
		entries: make(map[string]Entry),
		order:   nil,
	}

	for _, entry := range Table(modelsDir) {
		err := verifyArtifacts(entry)
		if err != nil {
			if entry.ID == DefaultVoiceID {
				return nil, fmt.Errorf("default voice %q: %w", entry.ID, err)
			}

			log.Warn("Voice %q excluded: %v", entry.ID, err)

			continue
		}

		registry.entries[entry.ID] = entry
		registry.order = append(registry.order, entry.ID)
	}

	log.Info("Voice registry loaded with %d voices.", len(registry.order))

	return registry, nil
}

// Resolve returns the entry for the given voice id. An empty id resolves to
// the default GLaDOS entry; ids are matched case-insensitively.
func (r *Registry) Resolve(voiceID string) (Entry, error) {
	key := strings.ToLower(strings.TrimSpace(voiceID))
	if key == "" {
		key = DefaultVoiceID
	}

	entry, found := r.entries[key]
	if !found {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownVoice, voiceID)
	}

	return entry, nil
}

// List returns the registered entries in stable listing order: GLaDOS first,
// then the Kokoro presets grouped by category.
func (r *Registry) List() []Entry {
	entries := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.entries[id])
	}

	return entries
}

// IDs returns the registered voice ids in listing order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)

	return ids
}

// verifyArtifacts checks that every file the entry references exists.
func verifyArtifacts(entry Entry) error {
	_, err := os.Stat(entry.ModelPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrModelNotFound, entry.ModelPath)
	}

	if entry.StylePath != "" {
		_, err = os.Stat(entry.StylePath)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrModelNotFound, entry.StylePath)
		}
	}

	return nil
}
