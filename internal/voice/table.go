package voice

import "path/filepath"

// Category groups voices the way list_voices reports them.
type Category string

// Voice categories, GLaDOS first, then the Kokoro groups.
const (
	CategoryGLaDOS              Category = "glados"
	CategoryKokoroFemaleUS      Category = "kokoro_female_us"
	CategoryKokoroFemaleBritish Category = "kokoro_female_british"
	CategoryKokoroMaleUS        Category = "kokoro_male_us"
	CategoryKokoroMaleBritish   Category = "kokoro_male_british"
)

// DefaultVoiceID is the voice used when a request names none.
const DefaultVoiceID = "glados"

// Model artifact file names, relative to the models directory.
const (
	gladosModelFile = "glados.onnx"
	kokoroModelFile = "kokoro-v1.0.fp16.onnx"
	styleDirName    = "voices"
	styleFileExt    = ".bin"
)

// Acoustic parameters per synthesizer family.
const (
	gladosSampleRate = 22050
	kokoroSampleRate = 24000

	gladosDefaultVolume = 0.55
	kokoroDefaultVolume = 1.0
)

// Entry describes one synthesizable voice. Entries are immutable after the
// registry is built.
type Entry struct {
	ID            string
	Category      Category
	ModelPath     string
	StylePath     string
	SampleRate    int
	DefaultVolume float64
}

// kokoroGroup associates a category with its preset ids.
type kokoroGroup struct {
	category Category
	ids      []string
}

// kokoroGroups lists the 26 Kokoro presets in listing order.
func kokoroGroups() []kokoroGroup {
	return []kokoroGroup{
		{
			category: CategoryKokoroFemaleUS,
			ids: []string{
				"af_alloy", "af_aoede", "af_bella", "af_jessica",
				"af_kore", "af_nicole", "af_nova", "af_river",
				"af_sarah", "af_sky",
			},
		},
		{
			category: CategoryKokoroFemaleBritish,
			ids:      []string{"bf_alice", "bf_emma", "bf_isabella", "bf_lily"},
		},
		{
			category: CategoryKokoroMaleUS,
			ids: []string{
				"am_adam", "am_echo", "am_eric", "am_fenrir",
				"am_liam", "am_michael", "am_onyx", "am_puck",
			},
		},
		{
			category: CategoryKokoroMaleBritish,
			ids:      []string{"bm_daniel", "bm_fable", "bm_george", "bm_lewis"},
		},
	}
}

// Table returns the full static voice table rooted at modelsDir, before any
// artifact verification. GLaDOS carries her own acoustic model; the Kokoro
// presets share one model and differ only in their style vector file.
func Table(modelsDir string) []Entry {
	gladosModel := filepath.Join(modelsDir, gladosModelFile)
	kokoroModel := filepath.Join(modelsDir, kokoroModelFile)

	entries := []Entry{{
		ID:            DefaultVoiceID,
		Category:      CategoryGLaDOS,
		ModelPath:     gladosModel,
		StylePath:     "",
		SampleRate:    gladosSampleRate,
		DefaultVolume: gladosDefaultVolume,
	}}

	for _, group := range kokoroGroups() {
		for _, id := range group.ids {
			entries = append(entries, Entry{
				ID:            id,
				Category:      group.category,
				ModelPath:     kokoroModel,
				StylePath:     filepath.Join(modelsDir, styleDirName, id+styleFileExt),
				SampleRate:    kokoroSampleRate,
				DefaultVolume: kokoroDefaultVolume,
			})
		}
	}

	return entries
}
