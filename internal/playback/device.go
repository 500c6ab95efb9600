package playback

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// deviceBufferDuration sizes the speaker buffer. A tenth of a second keeps
// latency low without audible underruns.
const deviceBufferDuration = time.Second / 10

// device abstracts the speaker package so tests can run without an audio
// backend.
type device interface {
	init(rate beep.SampleRate) error
	play(streamers ...beep.Streamer)
	clear()
}

// beepDevice drives the real output device. Initializing it again replaces
// whatever is currently playing.
type beepDevice struct{}

func (beepDevice) init(rate beep.SampleRate) error {
	return speaker.Init(rate, rate.N(deviceBufferDuration))
}

func (beepDevice) play(streamers ...beep.Streamer) {
	speaker.Play(streamers...)
}

func (beepDevice) clear() {
	speaker.Clear()
}
