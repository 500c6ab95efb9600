// Package core defines the shared data types and interfaces of the speech
// service.
package core

import (
	"context"

	"github.com/aperture-labs/glados-mcp/internal/voice"
)

// Audio is a synthesized waveform buffer plus its sample rate.
type Audio struct {
	Samples    []float32
	SampleRate int
}

// Seconds returns the playback duration of the buffer.
func (a Audio) Seconds() float64 {
	if a.SampleRate <= 0 {
		return 0
	}

	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Synthesizer turns normalized text into audio for a resolved voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, entry voice.Entry, text string) (Audio, error)
}

// Sink is the exclusive audio output. Play blocks until the buffer has been
// played or ctx is canceled; PlayFile starts a packaged sound without
// blocking.
type Sink interface {
	Play(ctx context.Context, audio Audio, volume float64) error
	PlayFile(ctx context.Context, path string) error
}

// ObjectStore is a key-value blob store for rendered audio.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
