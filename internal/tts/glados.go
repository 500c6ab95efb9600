package tts

import (
	"context"
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/aperture-labs/glados-mcp/internal/core"
	"github.com/aperture-labs/glados-mcp/internal/voice"
)

// GLaDOS model graph names.
var (
	piperInputNames  = []string{"input", "input_lengths", "scales"}
	piperOutputNames = []string{"output"}
)

// Inference scales the GLaDOS model was tuned with.
const (
	piperNoiseScale  = 0.667
	piperLengthScale = 1.0
	piperNoiseWidth  = 0.8
)

// ErrNoPhonemes indicates the text reduced to nothing the model can speak.
var ErrNoPhonemes = errors.New("no speakable phonemes")

func (e *Engine) synthesizeGLaDOS(
	ctx context.Context,
	entry voice.Entry,
	text string,
) (core.Audio, error) {
	phonemes, err := e.phonemizer.phonemize(ctx, text)
	if err != nil {
		return core.Audio{}, err
	}

	ids := encodePiper(phonemes)
	if len(ids) <= 2 {
		return core.Audio{}, fmt.Errorf("%w: %q", ErrNoPhonemes, text)
	}

	session, err := e.cache.session(entry.ModelPath, piperInputNames, piperOutputNames)
	if err != nil {
		return core.Audio{}, err
	}

	inputs, err := piperInputs(ids)
	if err != nil {
		return core.Audio{}, err
	}
	defer destroyValues(inputs...)

	err = ctx.Err()
	if err != nil {
		return core.Audio{}, fmt.Errorf("glados synthesis: %w", err)
	}

	outputs := make([]ort.Value, 1)

	err = session.Run(inputs, outputs)
	if err != nil {
		return core.Audio{}, fmt.Errorf("glados inference: %w", err)
	}
	defer destroyValues(outputs[0])

	samples, err := tensorSamples(outputs[0])
	if err != nil {
		return core.Audio{}, err
	}

	return core.Audio{Samples: samples, SampleRate: entry.SampleRate}, nil
}

func piperInputs(ids []int64) ([]ort.Value, error) {
	phonemeTensor, err := ort.NewTensor[int64](ort.NewShape(1, int64(len(ids))), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to create phoneme tensor: %w", err)
	}

	lengthTensor, err := ort.NewTensor[int64](ort.NewShape(1), []int64{int64(len(ids))})
	if err != nil {
		destroyValues(phonemeTensor)

		return nil, fmt.Errorf("failed to create length tensor: %w", err)
	}

	scales := []float32{piperNoiseScale, piperLengthScale, piperNoiseWidth}

	scaleTensor, err := ort.NewTensor[float32](ort.NewShape(int64(len(scales))), scales)
	if err != nil {
		destroyValues(phonemeTensor, lengthTensor)

		return nil, fmt.Errorf("failed to create scale tensor: %w", err)
	}

	return []ort.Value{phonemeTensor, lengthTensor, scaleTensor}, nil
}
