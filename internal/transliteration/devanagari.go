package transliteration

import "unicode"

const virama = "\u094d"

// Consonants carry an inherent "a" unless a vowel sign or virama follows, so
// each one is expanded into consonant, consonant+sign and consonant+virama
// keys and the mapper's longest match picks the right form.
var devanagariConsonants = map[string]string{
	"क": "k", "ख": "kh", "ग": "g", "घ": "gh", "ङ": "ng",
	"च": "ch", "छ": "chh", "ज": "j", "झ": "jh", "ञ": "ny",
	"ट": "t", "ठ": "th", "ड": "d", "ढ": "dh", "ण": "n",
	"त": "t", "थ": "th", "द": "d", "ध": "dh", "न": "n",
	"प": "p", "फ": "ph", "ब": "b", "भ": "bh", "म": "m",
	"य": "y", "र": "r", "ल": "l", "व": "v",
	"श": "sh", "ष": "sh", "स": "s", "ह": "h",

	// Nukta forms for borrowed sounds, in decomposed order.
	"\u0915\u093c": "q",
	"\u0916\u093c": "kh",
	"\u0917\u093c": "gh",
	"\u091c\u093c": "z",
	"\u092b\u093c": "f",
	"\u0921\u093c": "r",
	"\u0922\u093c": "rh",

	"\u091c\u094d\u091e": "gy",  // ज्ञ
	"\u0915\u094d\u0937": "ksh", // क्ष
}

var devanagariVowelSigns = map[string]string{
	"ा": "aa", "ि": "i", "ी": "ee", "ु": "u", "ू": "oo",
	"ृ": "ri", "े": "e", "ै": "ai", "ो": "o", "ौ": "au",
	"ॅ": "a", "ॉ": "o",
}

var devanagariOther = map[string]string{
	"अ": "a", "आ": "aa", "इ": "i", "ई": "ee", "उ": "u", "ऊ": "oo",
	"ऋ": "ri", "ए": "e", "ऐ": "ai", "ओ": "o", "औ": "au", "ऑ": "o",
	"ं": "n",
	"ँ": "n",
	"ः": "h",
	"़": "",
	virama: "",
	"ॐ": "Om",
	"।": ".",
	"॥": ".",
	"०": "0", "१": "1", "२": "2", "३": "3", "४": "4",
	"५": "5", "६": "6", "७": "7", "८": "8", "९": "9",
}

func devanagariGraphemes() map[string]string {
	m := make(map[string]string, len(devanagariConsonants)*(len(devanagariVowelSigns)+2)+len(devanagariVowelSigns)+len(devanagariOther))
	for c, lat := range devanagariConsonants {
		m[c] = lat + "a"
		m[c+virama] = lat
		for sign, v := range devanagariVowelSigns {
			m[c+sign] = lat + v
		}
	}
	for sign, v := range devanagariVowelSigns {
		m[sign] = v
	}
	for k, v := range devanagariOther {
		m[k] = v
	}
	return m
}

var devanagariPre = []Rule{
	// Word-final consonants after another letter drop the inherent vowel
	// (कमल -> kamal); a lone consonant keeps it (न -> na).
	{
		Pattern:     `([\x{0900}-\x{0963}])([\x{0915}-\x{0939}]\x{093C}?)($|[^\x{0900}-\x{097F}])`,
		Replacement: "${1}${2}" + virama + "${3}",
	},
}

var devanagariPost = []Rule{
	{Pattern: `[\x{200C}\x{200D}]`, Replacement: ""},
	{Pattern: `-{2,}`, Replacement: "-"},
}

func devanagariDefinition() Definition {
	return Definition{
		Script:    "devanagari",
		Name:      "Devanagari",
		Aliases:   []string{"hindi", "hi", "marathi", "nepali", "sanskrit"},
		Graphemes: devanagariGraphemes(),
		Pre:       devanagariPre,
		Post:      devanagariPost,
		Ranges:    []*unicode.RangeTable{unicode.Devanagari},
	}
}
