package tts

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
)

const (
	// styleWidth is the length of one Kokoro style vector.
	styleWidth = 256
	// styleFloatBytes is the on-disk size of one little-endian float32.
	styleFloatBytes = 4
)

// ErrMalformedStyle indicates a style file whose size is not a whole number
// of style rows.
var ErrMalformedStyle = errors.New("malformed style file")

// styleCache loads per-voice style banks on first use and keeps them for the
// life of the process. A bank is around half a megabyte.
type styleCache struct {
	mu    sync.Mutex
	banks map[string][][]float32
}

func newStyleCache() *styleCache {
	return &styleCache{
		mu:    sync.Mutex{},
		banks: make(map[string][][]float32),
	}
}

func (c *styleCache) rows(path string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, found := c.banks[path]
	if found {
		return cached, nil
	}

	loaded, err := loadStyleBank(path)
	if err != nil {
		return nil, err
	}

	c.banks[path] = loaded

	return loaded, nil
}

// loadStyleBank reads a raw little-endian float32 file holding one style row
// per trained phoneme count.
func loadStyleBank(path string) ([][]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read style file: %w", err)
	}

	rowBytes := styleWidth * styleFloatBytes
	if len(raw) == 0 || len(raw)%rowBytes != 0 {
		return nil, fmt.Errorf("%w: %s holds %d bytes", ErrMalformedStyle, path, len(raw))
	}

	rows := make([][]float32, len(raw)/rowBytes)

	for i := range rows {
		row := make([]float32, styleWidth)
		base := i * rowBytes

		for j := 0; j < styleWidth; j++ {
			bits := binary.LittleEndian.Uint32(raw[base+j*styleFloatBytes:])
			row[j] = math.Float32frombits(bits)
		}

		rows[i] = row
	}

	return rows, nil
}

// styleRow picks the row trained for the given phoneme count, clamping to
// the bank's bounds for very long inputs.
func styleRow(rows [][]float32, phonemeCount int) []float32 {
	index := phonemeCount
	if index >= len(rows) {
		index = len(rows) - 1
	}

	if index < 0 {
		index = 0
	}

	return rows[index]
}
