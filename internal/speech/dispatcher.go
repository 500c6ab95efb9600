// Package speech implements the synthesis dispatcher that turns speak
// requests into played or rendered audio.
package speech

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/aperture-labs/glados-mcp/internal/core"
	"github.com/aperture-labs/glados-mcp/internal/persona"
	"github.com/aperture-labs/glados-mcp/internal/speech/text"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

var (
	// ErrInvalidInput indicates an empty or unspeakable request text.
	ErrInvalidInput = errors.New("text cannot be empty")
	// ErrSynthesis indicates the inference runtime failed or returned a
	// malformed buffer.
	ErrSynthesis = errors.New("synthesis failed")
)

// Request describes one speak or render call. A nil Volume uses the resolved
// voice's default; overrides are clamped to [0, 1].
type Request struct {
	Text    string
	VoiceID string
	Volume  *float64
}

// Result summarizes a completed request. Spoken carries the text that was
// actually synthesized, sassy prefix included.
type Result struct {
	RequestID string
	VoiceID   string
	Category  voice.Category
	Spoken    string
	Seconds   float64
}

// Dispatcher validates requests, resolves voices, and routes synthesized
// audio to the playback sink or the WAV encoder. It holds no per-request
// state and is safe for concurrent use.
type Dispatcher struct {
	registry  *voice.Registry
	synth     core.Synthesizer
	sink      core.Sink
	converter *text.Converter
	persona   *persona.Persona
	log       *logger.Logger
}

// New wires a dispatcher from its collaborators.
func New(
	registry *voice.Registry,
	synth core.Synthesizer,
	sink core.Sink,
	p *persona.Persona,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		synth:     synth,
		sink:      sink,
		converter: text.NewConverter(),
		persona:   p,
		log:       log,
	}
}

// Speak synthesizes the request and plays it on the output device, blocking
// until playback finishes.
func (d *Dispatcher) Speak(ctx context.Context, req Request) (Result, error) {
	result, audio, volume, err := d.prepare(ctx, req)
	if err != nil {
		return Result{}, err
	}

	err = d.sink.Play(ctx, audio, volume)
	if err != nil {
		return Result{}, fmt.Errorf("failed to play audio: %w", err)
	}

	d.log.Info("Spoke request %s (%s, %.2fs).", result.RequestID, result.VoiceID, result.Seconds)

	return result, nil
}

// Render synthesizes the request and returns it encoded as a PCM16 WAV
// instead of playing it.
func (d *Dispatcher) Render(ctx context.Context, req Request) (Result, []byte, error) {
	result, audio, _, err := d.prepare(ctx, req)
	if err != nil {
		return Result{}, nil, err
	}

	wavBytes, err := EncodeWAV(audio)
	if err != nil {
		return Result{}, nil, fmt.Errorf("failed to encode audio: %w", err)
	}

	d.log.Info("Rendered request %s (%s, %d bytes).", result.RequestID, result.VoiceID, len(wavBytes))

	return result, wavBytes, nil
}

// prepare runs the shared half of both paths: validate, resolve, flavor,
// normalize, synthesize, and check the runtime's output.
func (d *Dispatcher) prepare(
	ctx context.Context,
	req Request,
) (Result, core.Audio, float64, error) {
	entry, err := d.validate(req)
	if err != nil {
		return Result{}, core.Audio{}, 0, err
	}

	spoken := req.Text
	if entry.Category == voice.CategoryGLaDOS {
		prefix, fired := d.persona.Prefix()
		if fired {
			spoken = prefix + spoken
		}
	}

	requestID := uuid.NewString()
	normalized := d.converter.TextToSpoken(spoken)

	audio, err := d.synth.Synthesize(ctx, entry, normalized)
	if err != nil {
		d.log.Error("Synthesis failed for request %s (%s): %v", requestID, entry.ID, err)

		return Result{}, core.Audio{}, 0, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	err = validateAudio(audio)
	if err != nil {
		return Result{}, core.Audio{}, 0, err
	}

	result := Result{
		RequestID: requestID,
		VoiceID:   entry.ID,
		Category:  entry.Category,
		Spoken:    spoken,
		Seconds:   audio.Seconds(),
	}

	return result, audio, volumeFor(entry, req.Volume), nil
}

// validate rejects empty text before the registry or the runtime is touched.
func (d *Dispatcher) validate(req Request) (voice.Entry, error) {
	if strings.TrimSpace(req.Text) == "" {
		return voice.Entry{}, ErrInvalidInput
	}

	entry, err := d.registry.Resolve(req.VoiceID)
	if err != nil {
		return voice.Entry{}, fmt.Errorf("failed to resolve voice: %w", err)
	}

	return entry, nil
}

// validateAudio rejects malformed runtime output before it reaches the
// device or the encoder.
func validateAudio(audio core.Audio) error {
	if len(audio.Samples) == 0 {
		return fmt.Errorf("%w: runtime returned an empty buffer", ErrSynthesis)
	}

	if audio.SampleRate <= 0 {
		return fmt.Errorf("%w: runtime returned sample rate %d", ErrSynthesis, audio.SampleRate)
	}

	for _, sample := range audio.Samples {
		value := float64(sample)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: runtime returned non-finite samples", ErrSynthesis)
		}
	}

	return nil
}

func volumeFor(entry voice.Entry, override *float64) float64 {
	volume := entry.DefaultVolume
	if override != nil {
		volume = *override
	}

	return math.Max(0, math.Min(1, volume))
}
