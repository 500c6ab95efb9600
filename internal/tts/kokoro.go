package tts

import (
	"context"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/aperture-labs/glados-mcp/internal/core"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

// Kokoro model graph names. All 26 presets share one model and differ only
// in the style vector fed alongside the tokens.
var (
	kokoroInputNames  = []string{"input_ids", "style", "speed"}
	kokoroOutputNames = []string{"waveform"}
)

// kokoroSpeed is the neutral speaking rate.
const kokoroSpeed = 1.0

func (e *Engine) synthesizeKokoro(
	ctx context.Context,
	entry voice.Entry,
	text string,
) (core.Audio, error) {
	phonemes, err := e.phonemizer.phonemize(ctx, text)
	if err != nil {
		return core.Audio{}, err
	}

	ids, phonemeCount := encodeKokoro(phonemes)
	if len(ids) <= 2 {
		return core.Audio{}, fmt.Errorf("%w: %q", ErrNoPhonemes, text)
	}

	bank, err := e.styles.rows(entry.StylePath)
	if err != nil {
		return core.Audio{}, err
	}

	session, err := e.cache.session(entry.ModelPath, kokoroInputNames, kokoroOutputNames)
	if err != nil {
		return core.Audio{}, err
	}

	inputs, err := kokoroInputs(ids, styleRow(bank, phonemeCount))
	if err != nil {
		return core.Audio{}, err
	}
	defer destroyValues(inputs...)

	err = ctx.Err()
	if err != nil {
		return core.Audio{}, fmt.Errorf("kokoro synthesis: %w", err)
	}

	outputs := make([]ort.Value, 1)

	err = session.Run(inputs, outputs)
	if err != nil {
		return core.Audio{}, fmt.Errorf("kokoro inference: %w", err)
	}
	defer destroyValues(outputs[0])

	samples, err := tensorSamples(outputs[0])
	if err != nil {
		return core.Audio{}, err
	}

	return core.Audio{Samples: samples, SampleRate: entry.SampleRate}, nil
}

func kokoroInputs(ids []int64, style []float32) ([]ort.Value, error) {
	tokenTensor, err := ort.NewTensor[int64](ort.NewShape(1, int64(len(ids))), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to create token tensor: %w", err)
	}

	styleTensor, err := ort.NewTensor[float32](ort.NewShape(1, styleWidth), style)
	if err != nil {
		destroyValues(tokenTensor)

		return nil, fmt.Errorf("failed to create style tensor: %w", err)
	}

	speedTensor, err := ort.NewTensor[float32](ort.NewShape(1), []float32{kokoroSpeed})
	if err != nil {
		destroyValues(tokenTensor, styleTensor)

		return nil, fmt.Errorf("failed to create speed tensor: %w", err)
	}

	return []ort.Value{tokenTensor, styleTensor, speedTensor}, nil
}
