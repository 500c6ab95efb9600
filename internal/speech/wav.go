package speech

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/aperture-labs/glados-mcp/internal/core"
)

// WAV container constants for the PCM16 mono stream the service emits.
const (
	wavHeaderSize   = 44
	riffHeaderBytes = 36
	fmtChunkSize    = 16
	pcmFormat       = 1
	monoChannels    = 1
	bitsPerSample   = 16
	bytesPerSample  = 2
	pcmPeak         = 32767.0
)

// ErrMalformedWAV indicates bytes that are not the PCM16 mono WAV this
// service produces.
var ErrMalformedWAV = errors.New("malformed wav data")

// EncodeWAV serializes audio into a 16-bit PCM mono WAV file image. Decoding
// the result with DecodeWAV yields the same sample count and sample rate.
func EncodeWAV(audio core.Audio) ([]byte, error) {
	if len(audio.Samples) == 0 || audio.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: nothing to encode", ErrMalformedWAV)
	}

	dataSize := len(audio.Samples) * bytesPerSample
	out := make([]byte, wavHeaderSize+dataSize)
	writeWAVHeader(out, audio.SampleRate, dataSize)

	for i, sample := range audio.Samples {
		offset := wavHeaderSize + i*bytesPerSample
		binary.LittleEndian.PutUint16(out[offset:], uint16(pcm16(sample)))
	}

	return out, nil
}

// DecodeWAV parses a PCM16 mono WAV file image back into audio.
func DecodeWAV(data []byte) (core.Audio, error) {
	if len(data) < wavHeaderSize ||
		string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return core.Audio{}, fmt.Errorf("%w: missing RIFF header", ErrMalformedWAV)
	}

	var (
		sampleRate int
		payload    []byte
		haveFormat bool
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if chunkSize < 0 || body+chunkSize > len(data) {
			return core.Audio{}, fmt.Errorf("%w: truncated %q chunk", ErrMalformedWAV, chunkID)
		}

		switch chunkID {
		case "fmt ":
			rate, err := parseFormatChunk(data[body : body+chunkSize])
			if err != nil {
				return core.Audio{}, err
			}

			sampleRate = rate
			haveFormat = true
		case "data":
			payload = data[body : body+chunkSize]
		}

		// Chunks are padded to even sizes.
		offset = body + chunkSize + chunkSize%2
	}

	if !haveFormat || payload == nil {
		return core.Audio{}, fmt.Errorf("%w: missing fmt or data chunk", ErrMalformedWAV)
	}

	samples := make([]float32, len(payload)/bytesPerSample)
	for i := range samples {
		raw := int16(binary.LittleEndian.Uint16(payload[i*bytesPerSample:]))
		samples[i] = float32(raw) / pcmPeak
	}

	return core.Audio{Samples: samples, SampleRate: sampleRate}, nil
}

func writeWAVHeader(out []byte, sampleRate, dataSize int) {
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(riffHeaderBytes+dataSize))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(out[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(out[22:24], monoChannels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(sampleRate*monoChannels*bytesPerSample))
	binary.LittleEndian.PutUint16(out[32:34], monoChannels*bytesPerSample)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))
}

func parseFormatChunk(chunk []byte) (int, error) {
	if len(chunk) < fmtChunkSize {
		return 0, fmt.Errorf("%w: short fmt chunk", ErrMalformedWAV)
	}

	format := binary.LittleEndian.Uint16(chunk[0:2])
	channels := binary.LittleEndian.Uint16(chunk[2:4])
	sampleRate := binary.LittleEndian.Uint32(chunk[4:8])
	bits := binary.LittleEndian.Uint16(chunk[14:16])

	if format != pcmFormat || channels != monoChannels || bits != bitsPerSample {
		return 0, fmt.Errorf("%w: unsupported encoding", ErrMalformedWAV)
	}

	return int(sampleRate), nil
}

// pcm16 converts a float sample in [-1, 1] to a 16-bit PCM value, clamping
// anything outside that range.
func pcm16(sample float32) int16 {
	clamped := math.Max(-1, math.Min(1, float64(sample)))

	return int16(math.Round(clamped * pcmPeak))
}
