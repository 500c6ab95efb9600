package playback

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aperture-labs/glados-mcp/internal/core"
	"github.com/aperture-labs/glados-mcp/internal/speech"
)

const (
	eventuallyWait = 2 * time.Second
	eventuallyTick = 5 * time.Millisecond
)

// fakeDevice stands in for the speaker. In manual mode streamers queue up
// until finish drains them, so tests control when playback completes.
type fakeDevice struct {
	mu        sync.Mutex
	manual    bool
	initErr   error
	initRates []beep.SampleRate
	clears    int
	pending   []beep.Streamer
	peaks     []float64
}

func (d *fakeDevice) init(rate beep.SampleRate) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initErr != nil {
		return d.initErr
	}

	d.initRates = append(d.initRates, rate)
	d.pending = nil

	return nil
}

func (d *fakeDevice) play(streamers ...beep.Streamer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.manual {
		d.pending = append(d.pending, streamers...)

		return
	}

	d.peaks = append(d.peaks, drainPeak(streamers...))
}

func (d *fakeDevice) clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clears++
	d.pending = nil
}

// finish drains the oldest pending streamer, firing any completion callback
// embedded in it, and returns the loudest sample it saw.
func (d *fakeDevice) finish(t *testing.T) float64 {
	t.Helper()

	d.mu.Lock()
	require.NotEmpty(t, d.pending, "no pending playback to finish")
	streamer := d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()

	return drainPeak(streamer)
}

func (d *fakeDevice) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pending)
}

func (d *fakeDevice) initCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.initRates)
}

func (d *fakeDevice) clearCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.clears
}

func (d *fakeDevice) snapshotInitRates() []beep.SampleRate {
	d.mu.Lock()
	defer d.mu.Unlock()

	rates := make([]beep.SampleRate, len(d.initRates))
	copy(rates, d.initRates)

	return rates
}

func (d *fakeDevice) snapshotPeaks() []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	peaks := make([]float64, len(d.peaks))
	copy(peaks, d.peaks)

	return peaks
}

func drainPeak(streamers ...beep.Streamer) float64 {
	buf := make([][2]float64, 256)
	peak := 0.0

	for _, streamer := range streamers {
		for {
			copied, ok := streamer.Stream(buf)
			for i := 0; i < copied; i++ {
				peak = math.Max(peak, math.Abs(buf[i][0]))
			}

			if !ok {
				break
			}
		}
	}

	return peak
}

func queuedWaiters(p *Player) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.queue)
}

func newTestPlayer(t *testing.T, rejectWhenBusy bool) (*Player, *fakeDevice) {
	t.Helper()

	log, err := logger.New(t.TempDir(), "playback-test.log")
	require.NoError(t, err)

	player := New(log, rejectWhenBusy)
	device := &fakeDevice{}
	player.device = device

	return player, device
}

func constantAudio(value float32, rate int) core.Audio {
	samples := make([]float32, 64)
	for i := range samples {
		samples[i] = value
	}

	return core.Audio{Samples: samples, SampleRate: rate}
}

func TestPlay_AppliesGain(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)

	err := player.Play(context.Background(), constantAudio(1.0, 22050), 0.55)
	require.NoError(t, err)

	rates := device.snapshotInitRates()
	require.Len(t, rates, 1)
	assert.Equal(t, beep.SampleRate(22050), rates[0])

	peaks := device.snapshotPeaks()
	require.Len(t, peaks, 1)
	assert.InDelta(t, 0.55, peaks[0], 0.001)
}

func TestPlay_ReinitializesPerRequest(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)

	err := player.Play(context.Background(), constantAudio(0.5, 22050), 1.0)
	require.NoError(t, err)

	err = player.Play(context.Background(), constantAudio(0.5, 24000), 1.0)
	require.NoError(t, err)

	rates := device.snapshotInitRates()
	require.Len(t, rates, 2)
	assert.Equal(t, beep.SampleRate(22050), rates[0])
	assert.Equal(t, beep.SampleRate(24000), rates[1])
}

func TestPlay_DeviceInitFailure(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)
	device.initErr = ErrPlayback

	err := player.Play(context.Background(), constantAudio(0.5, 22050), 1.0)
	require.ErrorIs(t, err, ErrPlayback)
}

func TestPlay_SerializesInArrivalOrder(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)
	device.manual = true

	results := make(chan error, 3)
	speak := func(volume float64) {
		results <- player.Play(context.Background(), constantAudio(1.0, 22050), volume)
	}

	go speak(0.2)
	require.Eventually(t, func() bool {
		return device.pendingCount() == 1
	}, eventuallyWait, eventuallyTick)

	go speak(0.4)
	require.Eventually(t, func() bool {
		return queuedWaiters(player) == 1
	}, eventuallyWait, eventuallyTick)

	go speak(0.6)
	require.Eventually(t, func() bool {
		return queuedWaiters(player) == 2
	}, eventuallyWait, eventuallyTick)

	var order []float64

	for i := 0; i < 3; i++ {
		require.Eventually(t, func() bool {
			return device.pendingCount() == 1
		}, eventuallyWait, eventuallyTick, "exactly one request may hold the device")

		order = append(order, device.finish(t))
		require.NoError(t, <-results)
	}

	require.Len(t, order, 3)
	assert.InDelta(t, 0.2, order[0], 0.001)
	assert.InDelta(t, 0.4, order[1], 0.001)
	assert.InDelta(t, 0.6, order[2], 0.001)
}

func TestPlay_RejectsWhenBusy(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, true)
	device.manual = true

	firstDone := make(chan error, 1)

	go func() {
		firstDone <- player.Play(context.Background(), constantAudio(1.0, 22050), 1.0)
	}()

	require.Eventually(t, func() bool {
		return device.pendingCount() == 1
	}, eventuallyWait, eventuallyTick)

	err := player.Play(context.Background(), constantAudio(1.0, 22050), 1.0)
	require.ErrorIs(t, err, ErrDeviceBusy)

	device.finish(t)
	require.NoError(t, <-firstDone)
}

func TestPlay_CancelWhileWaitingLeavesQueueClean(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)
	device.manual = true

	firstDone := make(chan error, 1)

	go func() {
		firstDone <- player.Play(context.Background(), constantAudio(1.0, 22050), 1.0)
	}()

	require.Eventually(t, func() bool {
		return device.pendingCount() == 1
	}, eventuallyWait, eventuallyTick)

	waitCtx, cancel := context.WithCancel(context.Background())
	secondDone := make(chan error, 1)

	go func() {
		secondDone <- player.Play(waitCtx, constantAudio(1.0, 22050), 1.0)
	}()

	require.Eventually(t, func() bool {
		return queuedWaiters(player) == 1
	}, eventuallyWait, eventuallyTick)

	cancel()
	require.ErrorIs(t, <-secondDone, context.Canceled)
	require.Eventually(t, func() bool {
		return queuedWaiters(player) == 0
	}, eventuallyWait, eventuallyTick)

	device.finish(t)
	require.NoError(t, <-firstDone)

	thirdDone := make(chan error, 1)

	go func() {
		thirdDone <- player.Play(context.Background(), constantAudio(1.0, 22050), 1.0)
	}()

	require.Eventually(t, func() bool {
		return device.pendingCount() == 1
	}, eventuallyWait, eventuallyTick)

	device.finish(t)
	require.NoError(t, <-thirdDone)
}

func TestPlay_CancelDuringPlaybackClearsDevice(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)
	device.manual = true

	playCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- player.Play(playCtx, constantAudio(1.0, 22050), 1.0)
	}()

	require.Eventually(t, func() bool {
		return device.pendingCount() == 1
	}, eventuallyWait, eventuallyTick)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, device.clearCount())

	nextDone := make(chan error, 1)

	go func() {
		nextDone <- player.Play(context.Background(), constantAudio(1.0, 22050), 1.0)
	}()

	require.Eventually(t, func() bool {
		return device.pendingCount() == 1
	}, eventuallyWait, eventuallyTick)

	device.finish(t)
	require.NoError(t, <-nextDone)
}

func TestPlayFile_MissingFile(t *testing.T) {
	t.Parallel()

	player, _ := newTestPlayer(t, false)

	err := player.PlayFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	require.ErrorIs(t, err, ErrPlayback)
}

func TestPlayFile_CancelledContext(t *testing.T) {
	t.Parallel()

	player, _ := newTestPlayer(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := player.PlayFile(ctx, "irrelevant.wav")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlayFile_PlaysOnIdleDevice(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)
	path := writeWAV(t, constantAudio(0.8, 24000))

	err := player.PlayFile(context.Background(), path)
	require.NoError(t, err)

	rates := device.snapshotInitRates()
	require.Len(t, rates, 1)
	assert.Equal(t, beep.SampleRate(24000), rates[0])

	peaks := device.snapshotPeaks()
	require.Len(t, peaks, 1)
	assert.InDelta(t, 0.8, peaks[0], 0.01)
}

func TestPlayFile_BlendsWhileSpeechActive(t *testing.T) {
	t.Parallel()

	player, device := newTestPlayer(t, false)
	device.manual = true

	speechDone := make(chan error, 1)

	go func() {
		speechDone <- player.Play(context.Background(), constantAudio(1.0, 22050), 1.0)
	}()

	require.Eventually(t, func() bool {
		return device.pendingCount() == 1
	}, eventuallyWait, eventuallyTick)

	path := writeWAV(t, constantAudio(0.8, 24000))

	err := player.PlayFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, device.pendingCount(), "alert should mix in next to the speech")
	assert.Equal(t, 1, device.initCount(), "blending must not reinitialize the device")

	device.finish(t)
	require.NoError(t, <-speechDone)
}

func TestScaleSamplesCopiesBuffer(t *testing.T) {
	t.Parallel()

	source := []float32{1.0, -1.0, 0.5}
	scaled := scaleSamples(source, 0.5)

	assert.Equal(t, []float32{1.0, -1.0, 0.5}, source)
	require.Len(t, scaled, 3)
	assert.InDelta(t, 0.5, scaled[0], 0.0001)
	assert.InDelta(t, -0.5, scaled[1], 0.0001)
	assert.InDelta(t, 0.25, scaled[2], 0.0001)
}

func writeWAV(t *testing.T, audio core.Audio) string {
	t.Helper()

	wavBytes, err := speech.EncodeWAV(audio)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sound.wav")
	err = os.WriteFile(path, wavBytes, 0o600)
	require.NoError(t, err)

	return path
}
