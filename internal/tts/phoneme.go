package tts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/book-expert/logger"
	ort "github.com/yalue/onnxruntime_go"
)

// Grapheme model contract: a forward transformer that maps character ids to
// per-position phoneme logits, decoded CTC style.
var (
	g2pInputNames  = []string{"text"}
	g2pOutputNames = []string{"output"}
)

const (
	g2pInputSymbols  = "_abcdefghijklmnopqrstuvwxyz'-"
	g2pOutputSymbols = "_abdefhijklmnoprstuvwzæçðøŋœɐɑɒɔɕəɚɛɜɝɞɟɡɢɥɦɨɪɫɬɭɮɯɰɱɲɳɴɵɶɸɹɺɻɽɾʀʁʂʃʄʈʉʊʋʌʍʎʏʐʑʒʔβθχᵻⱱˈˌːˑ"
)

var (
	g2pInputVocab  = buildVocab(g2pInputSymbols)
	g2pOutputRunes = []rune(g2pOutputSymbols)
)

// phonemizer turns normalized text into IPA for the acoustic models. Known
// words come from the lexicon; the rest go through the grapheme model. When
// that model is unavailable words pass through unchanged, which degrades
// pronunciation but never blocks speech.
type phonemizer struct {
	cache     *sessionCache
	modelPath string
	log       *logger.Logger
	warnOnce  sync.Once
}

func newPhonemizer(cache *sessionCache, modelPath string, log *logger.Logger) *phonemizer {
	return &phonemizer{
		cache:     cache,
		modelPath: modelPath,
		log:       log,
		warnOnce:  sync.Once{},
	}
}

// phonemize converts text word by word, preserving punctuation around each
// word so the acoustic models see sentence boundaries.
func (p *phonemizer) phonemize(ctx context.Context, input string) (string, error) {
	words := strings.Fields(input)
	parts := make([]string, 0, len(words))

	for _, token := range words {
		err := ctx.Err()
		if err != nil {
			return "", fmt.Errorf("phonemize: %w", err)
		}

		leading, core, trailing := splitAffixes(token)
		if core == "" {
			parts = append(parts, token)

			continue
		}

		parts = append(parts, leading+p.word(ctx, core)+trailing)
	}

	return strings.Join(parts, " "), nil
}

func (p *phonemizer) word(ctx context.Context, core string) string {
	lower := strings.ToLower(core)

	ipa, found := englishLexicon[lower]
	if found {
		return ipa
	}

	decoded, ok := p.grapheme(ctx, lower)
	if ok {
		return decoded
	}

	return lower
}

// grapheme runs the fallback model on one word. Any failure is reported
// once and treated as a miss.
func (p *phonemizer) grapheme(ctx context.Context, word string) (string, bool) {
	session, err := p.cache.session(p.modelPath, g2pInputNames, g2pOutputNames)
	if err != nil {
		p.warnOnce.Do(func() {
			p.log.Warn("Grapheme model unavailable, passing unknown words through: %v", err)
		})

		return "", false
	}

	ids := encodeG2PInput(word)
	if len(ids) == 0 {
		return "", false
	}

	if ctx.Err() != nil {
		return "", false
	}

	inputTensor, err := ort.NewTensor[int64](ort.NewShape(1, int64(len(ids))), ids)
	if err != nil {
		p.log.Warn("Grapheme tensor for %q failed: %v", word, err)

		return "", false
	}

	outputs := make([]ort.Value, 1)

	err = session.Run([]ort.Value{inputTensor}, outputs)
	if err != nil {
		destroyValues(inputTensor)
		p.log.Warn("Grapheme inference for %q failed: %v", word, err)

		return "", false
	}

	defer destroyValues(inputTensor, outputs[0])

	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return "", false
	}

	shape := logits.GetShape()
	if len(shape) != 3 {
		return "", false
	}

	decoded := decodeG2P(logits.GetData(), int(shape[1]), int(shape[2]))

	return decoded, decoded != ""
}

func encodeG2PInput(word string) []int64 {
	ids := make([]int64, 0, len(word))

	for _, symbol := range strings.ToLower(word) {
		id, known := g2pInputVocab[symbol]
		if !known {
			continue
		}

		ids = append(ids, id)
	}

	return ids
}

// decodeG2P greedily picks the best symbol per position, collapsing repeats
// and dropping blanks.
func decodeG2P(logits []float32, positions, vocabSize int) string {
	if vocabSize <= 0 {
		return ""
	}

	var out []rune

	previous := -1

	for pos := 0; pos < positions; pos++ {
		start := pos * vocabSize
		if start+vocabSize > len(logits) {
			break
		}

		best := argmax(logits[start : start+vocabSize])
		if best != previous && best > 0 && best < len(g2pOutputRunes) {
			out = append(out, g2pOutputRunes[best])
		}

		previous = best
	}

	return string(out)
}

func argmax(values []float32) int {
	best := 0

	for i, value := range values {
		if value > values[best] {
			best = i
		}
	}

	return best
}

// splitAffixes separates surrounding punctuation from the word itself.
// Apostrophes stay inside the word so contractions survive.
func splitAffixes(token string) (leading, core, trailing string) {
	runes := []rune(token)

	start := 0
	for start < len(runes) && !isWordRune(runes[start]) {
		start++
	}

	end := len(runes)
	for end > start && !isWordRune(runes[end-1]) {
		end--
	}

	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}
