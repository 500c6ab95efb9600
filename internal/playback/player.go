// Package playback owns the output device. Speech requests are serialized
// in arrival order; alert sounds are fire-and-forget and never displace an
// active speech buffer.
package playback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/book-expert/logger"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/aperture-labs/glados-mcp/internal/core"
)

var (
	// ErrPlayback indicates the output device failed or a sound file could
	// not be read.
	ErrPlayback = errors.New("playback failed")
	// ErrDeviceBusy is returned instead of queueing when the player was
	// configured to reject concurrent requests.
	ErrDeviceBusy = errors.New("output device is busy")
)

// resampleQuality balances fidelity against CPU when an alert has to be
// blended into a stream running at a different rate.
const resampleQuality = 4

// Player serializes speech playback on a single output device. Waiters are
// granted the device in the order they arrived.
type Player struct {
	mu             sync.Mutex
	device         device
	deviceRate     beep.SampleRate
	busy           bool
	queue          []chan struct{}
	rejectWhenBusy bool
	log            *logger.Logger
}

// New creates a player. With rejectWhenBusy set, Play returns ErrDeviceBusy
// while another request holds the device instead of waiting for it.
func New(log *logger.Logger, rejectWhenBusy bool) *Player {
	return &Player{
		mu:             sync.Mutex{},
		device:         beepDevice{},
		deviceRate:     0,
		busy:           false,
		queue:          nil,
		rejectWhenBusy: rejectWhenBusy,
		log:            log,
	}
}

// Play blocks until the device is free, then streams the buffer at the given
// gain until it finishes or ctx is cancelled. Gain is expected in [0, 1].
func (p *Player) Play(ctx context.Context, audio core.Audio, volume float64) error {
	err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release()

	err = p.prepareDevice(beep.SampleRate(audio.SampleRate))
	if err != nil {
		return err
	}

	done := make(chan struct{})
	streamer := newBufferStreamer(scaleSamples(audio.Samples, volume))

	p.device.play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.device.clear()
		p.log.Warn("Playback cancelled: %v", ctx.Err())

		return fmt.Errorf("playback interrupted: %w", ctx.Err())
	}
}

// PlayFile loads a WAV file and hands it to the device without waiting for
// it to finish. While speech holds the device the alert is resampled and
// mixed in alongside it; speech started afterwards replaces it.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("playback interrupted: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open sound file: %v", ErrPlayback, err)
	}

	streamer, format, err := wav.Decode(file)
	if err != nil {
		_ = file.Close()

		return fmt.Errorf("%w: decode sound file: %v", ErrPlayback, err)
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	_ = streamer.Close()
	_ = file.Close()

	alert := beep.Streamer(buffer.Streamer(0, buffer.Len()))

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy {
		if p.deviceRate > 0 && format.SampleRate != p.deviceRate {
			alert = beep.Resample(resampleQuality, format.SampleRate, p.deviceRate, alert)
		}

		p.device.play(alert)
		p.log.Info("Blended alert %s into active playback.", filepath.Base(path))

		return nil
	}

	err = p.device.init(format.SampleRate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlayback, err)
	}

	p.deviceRate = format.SampleRate
	p.device.play(alert)

	return nil
}

// acquire claims the device, queueing behind earlier callers unless the
// player rejects concurrent requests.
func (p *Player) acquire(ctx context.Context) error {
	p.mu.Lock()

	if !p.busy && len(p.queue) == 0 {
		p.busy = true
		p.mu.Unlock()

		return nil
	}

	if p.rejectWhenBusy {
		p.mu.Unlock()

		return ErrDeviceBusy
	}

	ticket := make(chan struct{})
	p.queue = append(p.queue, ticket)
	p.mu.Unlock()

	select {
	case <-ticket:
		return nil
	case <-ctx.Done():
		p.abandon(ticket)

		return fmt.Errorf("playback interrupted: %w", ctx.Err())
	}
}

// release hands the device to the oldest waiter, or marks it idle when the
// queue is empty.
func (p *Player) release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		close(next)

		return
	}

	p.busy = false
}

// abandon withdraws a cancelled ticket from the queue. When the grant raced
// the cancellation the ticket already owns the device, so it is passed on.
func (p *Player) abandon(ticket chan struct{}) {
	p.mu.Lock()

	for i, waiting := range p.queue {
		if waiting == ticket {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			p.mu.Unlock()

			return
		}
	}

	p.mu.Unlock()
	p.release()
}

// prepareDevice reinitializes the output at the buffer's rate, replacing any
// alert still sounding.
func (p *Player) prepareDevice(rate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.device.init(rate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlayback, err)
	}

	p.deviceRate = rate

	return nil
}

// scaleSamples applies the gain into a copy so the caller's buffer stays
// untouched.
func scaleSamples(samples []float32, volume float64) []float32 {
	gain := float32(volume)
	scaled := make([]float32, len(samples))

	for i, sample := range samples {
		scaled[i] = sample * gain
	}

	return scaled
}
