package tts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPiperVocabAnchors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(piperPadID), piperVocab['_'])
	assert.Equal(t, int64(piperBOSID), piperVocab['^'])
	assert.Equal(t, int64(piperEOSID), piperVocab['$'])
	assert.Equal(t, int64(3), piperVocab[' '])
	assert.Equal(t, int64(4), piperVocab['!'])
}

func TestKokoroVocabAnchors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), kokoroVocab['$'])
	assert.Equal(t, int64(1), kokoroVocab[';'])
	assert.Equal(t, int64(4), kokoroVocab['.'])
	assert.Equal(t, int64(16), kokoroVocab[' '])
	assert.Equal(t, int64(17), kokoroVocab['A'])
	assert.Equal(t, int64(43), kokoroVocab['a'])
}

func TestEncodePiperInterleavesPads(t *testing.T) {
	t.Parallel()

	ids := encodePiper("wʌn")

	require.Len(t, ids, 8)
	assert.Equal(t, int64(piperBOSID), ids[0])
	assert.Equal(t, int64(piperEOSID), ids[7])

	assert.Equal(t, piperVocab['w'], ids[1])
	assert.Equal(t, int64(piperPadID), ids[2])
	assert.Equal(t, piperVocab['ʌ'], ids[3])
	assert.Equal(t, int64(piperPadID), ids[4])
	assert.Equal(t, piperVocab['n'], ids[5])
	assert.Equal(t, int64(piperPadID), ids[6])
}

func TestEncodePiperDropsUnknownSymbols(t *testing.T) {
	t.Parallel()

	ids := encodePiper("①②")

	require.Len(t, ids, 2)
	assert.Equal(t, int64(piperBOSID), ids[0])
	assert.Equal(t, int64(piperEOSID), ids[1])
}

func TestEncodeKokoroWrapsInPads(t *testing.T) {
	t.Parallel()

	ids, count := encodeKokoro("wʌn")

	assert.Equal(t, 3, count)
	require.Len(t, ids, 5)
	assert.Equal(t, int64(0), ids[0])
	assert.Equal(t, int64(0), ids[4])
	assert.Equal(t, kokoroVocab['w'], ids[1])
	assert.Equal(t, kokoroVocab['ʌ'], ids[2])
	assert.Equal(t, kokoroVocab['n'], ids[3])
}

func TestEncodeKokoroTruncatesLongInput(t *testing.T) {
	t.Parallel()

	ids, count := encodeKokoro(strings.Repeat("a", kokoroMaxPhonemes+200))

	assert.Equal(t, kokoroMaxPhonemes, count)
	assert.Len(t, ids, kokoroMaxPhonemes+2)
}

func TestSplitAffixes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		token    string
		leading  string
		core     string
		trailing string
	}{
		{token: "hello,", leading: "", core: "hello", trailing: ","},
		{token: "(word)", leading: "(", core: "word", trailing: ")"},
		{token: "don't", leading: "", core: "don't", trailing: ""},
		{token: "...", leading: "...", core: "", trailing: ""},
		{token: "line?!", leading: "", core: "line", trailing: "?!"},
	}

	for _, testCase := range cases {
		leading, core, trailing := splitAffixes(testCase.token)

		assert.Equal(t, testCase.leading, leading, "token %q", testCase.token)
		assert.Equal(t, testCase.core, core, "token %q", testCase.token)
		assert.Equal(t, testCase.trailing, trailing, "token %q", testCase.token)
	}
}

func TestDecodeG2PCollapsesRepeatsAndBlanks(t *testing.T) {
	t.Parallel()

	const vocabSize = 5

	// Per-position winners: 1, 1, 0, 2, 2, 1.
	winners := []int{1, 1, 0, 2, 2, 1}
	logits := make([]float32, len(winners)*vocabSize)

	for pos, winner := range winners {
		logits[pos*vocabSize+winner] = 1.0
	}

	decoded := decodeG2P(logits, len(winners), vocabSize)

	expected := string([]rune{g2pOutputRunes[1], g2pOutputRunes[2], g2pOutputRunes[1]})
	assert.Equal(t, expected, decoded)
}

func TestDecodeG2PRepeatAfterBlank(t *testing.T) {
	t.Parallel()

	const vocabSize = 3

	winners := []int{1, 0, 1}
	logits := make([]float32, len(winners)*vocabSize)

	for pos, winner := range winners {
		logits[pos*vocabSize+winner] = 1.0
	}

	decoded := decodeG2P(logits, len(winners), vocabSize)

	expected := string([]rune{g2pOutputRunes[1], g2pOutputRunes[1]})
	assert.Equal(t, expected, decoded)
}

func TestEncodeG2PInput(t *testing.T) {
	t.Parallel()

	ids := encodeG2PInput("Don't")

	require.Len(t, ids, 5)
	assert.Equal(t, g2pInputVocab['d'], ids[0])
	assert.Equal(t, g2pInputVocab['\''], ids[3])

	assert.Empty(t, encodeG2PInput("①"))
}
