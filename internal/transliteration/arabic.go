package transliteration

import "unicode"

// articleMark tags a word-initial definite article during preprocessing so
// that a medial alif-lam reads as two plain letters. U+FDD0 is a permanent
// noncharacter, so it never appears in interchanged text.
const articleMark = "\uFDD0"

// Simplified Arabic romanization. Short vowels are dropped, emphatic
// consonants fold into their plain counterparts.
var arabicGraphemes = map[string]string{
	"ا": "a",
	"ب": "b",
	"ت": "t",
	"ث": "th",
	"ج": "j",
	"ح": "h",
	"خ": "kh",
	"د": "d",
	"ذ": "dh",
	"ر": "r",
	"ز": "z",
	"س": "s",
	"ش": "sh",
	"ص": "s",
	"ض": "d",
	"ط": "t",
	"ظ": "z",
	"ع": "‘",
	"غ": "gh",
	"ف": "f",
	"ق": "q",
	"ك": "k",
	"ل": "l",
	"م": "m",
	"ن": "n",
	"ه": "h",
	"و": "w",
	"ي": "y",
	"ة": "a",
	"ء": "'",
	"آ": "aa",
	"أ": "a",
	"إ": "i",
	"ؤ": "'",
	"ئ": "'",
	"ﻻ": "la",
	articleMark + "ال": "al-",
	"ـ": "", // tatweel

	"،": ",",
	"؛": ";",
	"؟": "?",
	"٠": "0", "١": "1", "٢": "2", "٣": "3", "٤": "4",
	"٥": "5", "٦": "6", "٧": "7", "٨": "8", "٩": "9",
}

var arabicPre = []Rule{
	// Harakat, shadda, sukun and the other combining marks. Must run before
	// anything that matches a letter+mark sequence.
	{Pattern: `[\x{064B}-\x{065F}]`, Replacement: ""},
	{Pattern: `يٰ`, Replacement: "ya"},
	{Pattern: `ى`, Replacement: "a"},
	{Pattern: `(^|\P{Arabic})ال`, Replacement: "${1}" + articleMark + "ال"},
}

var arabicPost = []Rule{
	{Pattern: `Mu hammad`, Replacement: "Muhammad"},
	{Pattern: `[\x{200C}\x{200D}\x{FDD0}]`, Replacement: ""},
	{Pattern: `-{2,}`, Replacement: "-"},
	{Pattern: `,{2,}`, Replacement: ","},
}

func arabicDefinition() Definition {
	return Definition{
		Script:    "arabic",
		Name:      "Arabic",
		Aliases:   []string{"ar"},
		Graphemes: arabicGraphemes,
		Pre:       arabicPre,
		Post:      arabicPost,
		Ranges:    []*unicode.RangeTable{unicode.Arabic},
	}
}
