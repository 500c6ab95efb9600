// Package text converts written text into the spoken form the synthesizers
// expect: abbreviations expanded, integers and percentages spelled out,
// whitespace and punctuation normalized.
package text

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Bases for spelling out integers.
const (
	tenBase          = 10
	twentyBase       = 20
	hundredBase      = 100
	thousandBase     = 1000
	maxSpelledNumber = 999999
)

// Regex patterns applied during conversion.
const (
	numberRegexPattern     = `\d+`
	percentRegexPattern    = `\d+\s*%`
	whitespaceRegexPattern = `\s+`
)

// Word tables for spelled-out integers.
var (
	onesWords = []string{
		"", "one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine",
	}
	teenWords = []string{
		"ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}
	tensWords = []string{
		"", "", "twenty", "thirty", "forty", "fifty",
		"sixty", "seventy", "eighty", "ninety",
	}
)

// Converter normalizes text for synthesis. It is stateless after construction
// and safe for concurrent use.
type Converter struct {
	numberPattern     *regexp.Regexp
	percentPattern    *regexp.Regexp
	whitespacePattern *regexp.Regexp
	abbreviations     *strings.Replacer
	typography        *strings.Replacer
}

// NewConverter compiles the conversion patterns and replacers once.
func NewConverter() *Converter {
	abbreviations := []string{
		"Mr.", "Mister",
		"Mrs.", "Misses",
		"Ms.", "Miss",
		"Dr.", "Doctor",
		"St.", "Saint",
		"Co.", "Company",
		"Ltd.", "Limited",
		"Corp.", "Corporation",
		"Inc.", "Incorporated",
		"etc.", "et cetera",
		"vs.", "versus",
	}

	typography := []string{
		"—", "-",
		"–", "-",
		"‒", "-",
		"…", "...",
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	}

	return &Converter{
		numberPattern:     regexp.MustCompile(numberRegexPattern),
		percentPattern:    regexp.MustCompile(percentRegexPattern),
		whitespacePattern: regexp.MustCompile(whitespaceRegexPattern),
		abbreviations:     strings.NewReplacer(abbreviations...),
		typography:        strings.NewReplacer(typography...),
	}
}

// TextToSpoken converts written text into its spoken form. Empty input stays
// empty; everything else comes back trimmed and ending in sentence
// punctuation.
func (c *Converter) TextToSpoken(input string) string {
	if input == "" {
		return ""
	}

	spoken := c.abbreviations.Replace(input)
	spoken = c.percentPattern.ReplaceAllStringFunc(spoken, spellPercent)
	spoken = c.numberPattern.ReplaceAllStringFunc(spoken, spellInteger)
	spoken = c.whitespacePattern.ReplaceAllString(spoken, " ")
	spoken = c.typography.Replace(spoken)

	return ensureTerminalPunctuation(strings.TrimSpace(spoken))
}

// spellPercent rewrites "95%" as "ninety five percent".
func spellPercent(match string) string {
	digits := strings.TrimSpace(strings.TrimSuffix(match, "%"))

	return spellInteger(digits) + " percent"
}

// spellInteger spells out an integer, leaving it untouched when it is too
// large to read aloud comfortably.
func spellInteger(digits string) string {
	number, err := strconv.Atoi(digits)
	if err != nil || number > maxSpelledNumber {
		return digits
	}

	if number == 0 {
		return "zero"
	}

	var parts []string

	if number >= thousandBase {
		parts = append(parts, spellUnderThousand(number/thousandBase)+" thousand")
		number %= thousandBase
	}

	if number > 0 {
		parts = append(parts, spellUnderThousand(number))
	}

	return strings.Join(parts, " ")
}

func spellUnderThousand(number int) string {
	var parts []string

	if number >= hundredBase {
		parts = append(parts, onesWords[number/hundredBase]+" hundred")
		number %= hundredBase
	}

	if number > 0 {
		parts = append(parts, spellUnderHundred(number))
	}

	return strings.Join(parts, " ")
}

func spellUnderHundred(number int) string {
	switch {
	case number < tenBase:
		return onesWords[number]
	case number < twentyBase:
		return teenWords[number-tenBase]
	default:
		word := tensWords[number/tenBase]
		if number%tenBase > 0 {
			word += " " + onesWords[number%tenBase]
		}

		return word
	}
}

// ensureTerminalPunctuation makes the text end like a sentence, so the
// synthesizers do not trail off mid-phrase.
func ensureTerminalPunctuation(spoken string) string {
	if spoken == "" {
		return ""
	}

	lastRune, size := utf8.DecodeLastRuneInString(spoken)
	switch lastRune {
	case '.', '!', '?':
		return spoken
	case ',', ';', ':', '-':
		return spoken[:len(spoken)-size] + "."
	default:
		return spoken + "."
	}
}
