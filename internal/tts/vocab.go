package tts

// Symbol inventories for the two acoustic models. Index order defines the id
// each symbol feeds the model, so these strings must stay byte-for-byte
// aligned with the vocabularies the models were trained on.

// piperSymbols lists the GLaDOS model's inventory: pad, begin, end, then
// punctuation and the espeak IPA set.
const piperSymbols = "_^$ !'(),-.:;?abcdefghijklmnopqrstuvwxyzæçðøħŋœǀǁǂǃɐɑɒɓɔɕɖɗɘəɚɛɜɝɞɟɠɡɢɣɤɥɦɧɨɪɫɬɭɮɯɰɱɲɳɴɵɶɸɹɺɻɽɾʀʁʂʃʄʈʉʊʋʌʍʎʏʐʑʒʔʕʘʙʛʜʝʟʡʢˈˌːˑ˞βθχᵻⱱ"

// Well-known piper ids.
const (
	piperPadID = 0
	piperBOSID = 1
	piperEOSID = 2
)

// Kokoro inventory: pad at id zero, then punctuation, Latin letters, and the
// IPA set, matching the model's training vocabulary.
const (
	kokoroPad         = "$"
	kokoroPunctuation = ";:,.!?¡¿—…\"«»“” "
	kokoroLetters     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	kokoroLettersIPA  = "ɑɐɒæɓʙβɔɕçɗɖðʤəɘɚɛɜɝɞɟʄɡɠɢʛɦɧħɥʜɨɪʝɭɬɫɮʟɱɯɰŋɳɲɴøɵɸθœɶʘɹɺɾɻʀʁɽʂʃʈʧʉʊʋⱱʌɣɤʍχʎʏʑʐʒʔʡʕʢǀǁǂǃˈˌːˑʼʴʰʱʲʷˠˤ˞↓↑→↗↘'̩'ᵻ"
)

// kokoroMaxPhonemes caps the input so the padded token sequence fits the
// model's 512-position context.
const kokoroMaxPhonemes = 510

var (
	piperVocab  = buildVocab(piperSymbols)
	kokoroVocab = buildVocab(kokoroPad + kokoroPunctuation + kokoroLetters + kokoroLettersIPA)
)

// buildVocab maps each symbol to its position. Later occurrences win, same
// as the dict construction the models were exported with.
func buildVocab(symbols string) map[rune]int64 {
	runes := []rune(symbols)
	vocab := make(map[rune]int64, len(runes))

	for i, symbol := range runes {
		vocab[symbol] = int64(i)
	}

	return vocab
}

// encodePiper turns an IPA phoneme string into the GLaDOS model's id
// sequence: begin marker, each symbol followed by a pad, end marker.
// Symbols outside the inventory are dropped.
func encodePiper(phonemes string) []int64 {
	runes := []rune(phonemes)
	ids := make([]int64, 0, 2*len(runes)+2)
	ids = append(ids, piperBOSID)

	for _, symbol := range runes {
		id, known := piperVocab[symbol]
		if !known {
			continue
		}

		ids = append(ids, id, piperPadID)
	}

	return append(ids, piperEOSID)
}

// encodeKokoro turns an IPA phoneme string into the Kokoro model's id
// sequence, wrapped in a leading and trailing pad. It returns the ids and
// the phoneme count used to pick the voice style row.
func encodeKokoro(phonemes string) ([]int64, int) {
	runes := []rune(phonemes)
	if len(runes) > kokoroMaxPhonemes {
		runes = runes[:kokoroMaxPhonemes]
	}

	ids := make([]int64, 0, len(runes)+2)
	ids = append(ids, 0)

	for _, symbol := range runes {
		id, known := kokoroVocab[symbol]
		if !known {
			continue
		}

		ids = append(ids, id)
	}

	return append(ids, 0), len(runes)
}
