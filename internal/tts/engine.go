// Package tts runs the ONNX acoustic models that turn text into audio
// samples: a dedicated GLaDOS voice model and the shared Kokoro model with
// per-voice style vectors.
package tts

import (
	"context"
	"path/filepath"

	"github.com/book-expert/logger"

	"github.com/aperture-labs/glados-mcp/internal/core"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

// phonemizerModelFile is the grapheme model expected next to the voice
// models. The spelling matches the published artifact.
const phonemizerModelFile = "phomenizer_en.onnx"

// Config points the engine at its model artifacts. SharedLibrary optionally
// names the onnxruntime shared library to load.
type Config struct {
	ModelsDir     string
	SharedLibrary string
}

// Engine synthesizes speech with each voice's acoustic model. It is safe for
// concurrent use; sessions and style banks load once and are shared.
type Engine struct {
	cache      *sessionCache
	styles     *styleCache
	phonemizer *phonemizer
}

// New creates an engine. Models load lazily on first synthesis, so
// construction never touches the onnxruntime library.
func New(cfg Config, log *logger.Logger) *Engine {
	cache := newSessionCache(cfg.SharedLibrary, log)

	return &Engine{
		cache:      cache,
		styles:     newStyleCache(),
		phonemizer: newPhonemizer(cache, filepath.Join(cfg.ModelsDir, phonemizerModelFile), log),
	}
}

// Synthesize renders text with the entry's model and returns mono samples at
// the entry's native rate.
func (e *Engine) Synthesize(
	ctx context.Context,
	entry voice.Entry,
	text string,
) (core.Audio, error) {
	if entry.Category == voice.CategoryGLaDOS {
		return e.synthesizeGLaDOS(ctx, entry, text)
	}

	return e.synthesizeKokoro(ctx, entry, text)
}

// Close releases every loaded model session.
func (e *Engine) Close() {
	e.cache.close()
}
