package playback

// bufferStreamer streams a mono float32 buffer as stereo samples for the
// beep mixer. It is not safe for concurrent use; the speaker owns it once
// played.
type bufferStreamer struct {
	samples  []float32
	position int
}

func newBufferStreamer(samples []float32) *bufferStreamer {
	return &bufferStreamer{
		samples:  samples,
		position: 0,
	}
}

// Stream copies up to len(out) samples into both channels and reports
// whether any audio remains.
func (b *bufferStreamer) Stream(out [][2]float64) (int, bool) {
	if b.position >= len(b.samples) {
		return 0, false
	}

	copied := 0

	for i := range out {
		if b.position >= len(b.samples) {
			break
		}

		value := float64(b.samples[b.position])
		out[i][0] = value
		out[i][1] = value
		b.position++
		copied++
	}

	return copied, true
}

func (b *bufferStreamer) Err() error {
	return nil
}
