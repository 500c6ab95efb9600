package tts

// englishLexicon maps lowercase words to their IPA pronunciation. Lookups
// here win over the grapheme model, which keeps the words this service
// speaks most often, number words from the text converter and the canned
// persona lines included, stable across model updates.
var englishLexicon = map[string]string{
	// Number words produced by the text converter.
	"zero":      "ˈzɪɹoʊ",
	"one":       "wʌn",
	"two":       "tu",
	"three":     "θɹi",
	"four":      "fɔɹ",
	"five":      "faɪv",
	"six":       "sɪks",
	"seven":     "ˈsɛvən",
	"eight":     "eɪt",
	"nine":      "naɪn",
	"ten":       "tɛn",
	"eleven":    "ɪˈlɛvən",
	"twelve":    "twɛlv",
	"thirteen":  "θɝˈtin",
	"fourteen":  "fɔɹˈtin",
	"fifteen":   "fɪfˈtin",
	"sixteen":   "sɪksˈtin",
	"seventeen": "ˈsɛvənˈtin",
	"eighteen":  "eɪˈtin",
	"nineteen":  "naɪnˈtin",
	"twenty":    "ˈtwɛnti",
	"thirty":    "ˈθɝti",
	"forty":     "ˈfɔɹti",
	"fifty":     "ˈfɪfti",
	"sixty":     "ˈsɪksti",
	"seventy":   "ˈsɛvənti",
	"eighty":    "ˈeɪti",
	"ninety":    "ˈnaɪnti",
	"hundred":   "ˈhʌndɹəd",
	"thousand":  "ˈθaʊzənd",
	"percent":   "pɚˈsɛnt",
	"minus":     "ˈmaɪnəs",
	"point":     "pɔɪnt",

	// Expanded abbreviations.
	"mister":    "ˈmɪstɚ",
	"misses":    "ˈmɪsəz",
	"doctor":    "ˈdɑktɚ",
	"saint":     "seɪnt",
	"versus":    "ˈvɝsəs",
	"etcetera":  "ɛtˈsɛtɚə",
	"junior":    "ˈdʒunjɚ",
	"senior":    "ˈsinjɚ",
	"professor": "pɹəˈfɛsɚ",

	// Function words.
	"a":     "ə",
	"an":    "æn",
	"all":   "ɔl",
	"and":   "ænd",
	"are":   "ɑɹ",
	"as":    "æz",
	"at":    "æt",
	"be":    "bi",
	"but":   "bʌt",
	"by":    "baɪ",
	"can":   "kæn",
	"do":    "du",
	"for":   "fɔɹ",
	"from":  "fɹʌm",
	"has":   "hæz",
	"have":  "hæv",
	"i":     "aɪ",
	"if":    "ɪf",
	"in":    "ɪn",
	"is":    "ɪz",
	"it":    "ɪt",
	"me":    "mi",
	"my":    "maɪ",
	"no":    "noʊ",
	"not":   "nɑt",
	"of":    "ʌv",
	"on":    "ɑn",
	"or":    "ɔɹ",
	"so":    "soʊ",
	"that":  "ðæt",
	"the":   "ðə",
	"this":  "ðɪs",
	"to":    "tu",
	"was":   "wʌz",
	"we":    "wi",
	"will":  "wɪl",
	"with":  "wɪθ",
	"yes":   "jɛs",
	"you":   "ju",
	"your":  "jɔɹ",

	// Words the canned persona lines and alerts lean on.
	"activated":    "ˈæktəveɪtəd",
	"alert":        "əˈlɝt",
	"amusing":      "əˈmjuzɪŋ",
	"attention":    "əˈtɛnʃən",
	"chime":        "tʃaɪm",
	"elevator":     "ˈɛləveɪtɚ",
	"fascinating":  "ˈfæsəneɪtɪŋ",
	"get":          "ɡɛt",
	"gets":         "ɡɛts",
	"hello":        "həˈloʊ",
	"hope":         "hoʊp",
	"how":          "haʊ",
	"nostalgic":    "nɑˈstældʒɪk",
	"oh":           "oʊ",
	"playing":      "ˈpleɪɪŋ",
	"predictable":  "pɹɪˈdɪktəbəl",
	"radio":        "ˈɹeɪdioʊ",
	"science":      "ˈsaɪəns",
	"see":          "si",
	"transmission": "tɹænzˈmɪʃən",
	"well":         "wɛl",

	// Everyday report vocabulary.
	"audio":     "ˈɔdioʊ",
	"bug":       "bʌɡ",
	"bugs":      "bʌɡz",
	"build":     "bɪld",
	"builds":    "bɪldz",
	"code":      "koʊd",
	"complete":  "kəmˈplit",
	"completed": "kəmˈplitəd",
	"data":      "ˈdeɪtə",
	"done":      "dʌn",
	"error":     "ˈɛɹɚ",
	"errors":    "ˈɛɹɚz",
	"failed":    "feɪld",
	"failure":   "ˈfeɪljɚ",
	"file":      "faɪl",
	"files":     "faɪlz",
	"fixed":     "fɪkst",
	"go":        "ɡoʊ",
	"language":  "ˈlæŋɡwədʒ",
	"line":      "laɪn",
	"passed":    "pæst",
	"powerful":  "ˈpaʊɚfəl",
	"ready":     "ˈɹɛdi",
	"running":   "ˈɹʌnɪŋ",
	"server":    "ˈsɝvɚ",
	"sound":     "saʊnd",
	"speech":    "spitʃ",
	"success":   "səkˈsɛs",
	"system":    "ˈsɪstəm",
	"test":      "tɛst",
	"testing":   "ˈtɛstɪŋ",
	"tests":     "tɛsts",
	"text":      "tɛkst",
	"time":      "taɪm",
	"voice":     "vɔɪs",
	"warning":   "ˈwɔɹnɪŋ",
	"world":     "wɝld",
}
