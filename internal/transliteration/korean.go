package transliteration

import "unicode"

const (
	hangulBase = 0xAC00
	hangulEnd  = 0xD7A3
	jongN      = 28
	jungN      = 21
)

// Revised Romanization of Korean
var (
	choseong = []string{
		"g", "kk", "n", "d", "tt", "r", "m", "b", "pp",
		"s", "ss", "", "j", "jj", "ch", "k", "t", "p", "h",
	}
	jungseong = []string{
		"a", "ae", "ya", "yae", "eo", "e", "yeo", "ye", "o",
		"wa", "wae", "oe", "yo", "u", "wo", "we", "wi", "yu",
		"eu", "ui", "i",
	}
	jongseong = []string{
		"", "g", "kk", "gs", "n", "nj", "nh", "d", "l", "lg",
		"lm", "lb", "ls", "lt", "lp", "lh", "m", "b", "bs",
		"s", "ss", "ng", "j", "ch", "k", "t", "p", "h",
	}
)

// romanizeHangul decomposes a precomposed syllable into its jamo. Standalone
// jamo are left to pass through.
func romanizeHangul(r rune) (string, bool) {
	if r < hangulBase || r > hangulEnd {
		return "", false
	}
	code := int(r) - hangulBase
	jong := code % jongN
	jung := (code / jongN) % jungN
	cho := code / (jongN * jungN)
	return choseong[cho] + jungseong[jung] + jongseong[jong], true
}

func hangulDefinition() Definition {
	return Definition{
		Script:   "hangul",
		Name:     "Korean (Hangul)",
		Aliases:  []string{"korean", "ko"},
		Ranges:   []*unicode.RangeTable{unicode.Hangul},
		Romanize: romanizeHangul,
		Post: []Rule{
			{Pattern: `[\x{200B}-\x{200D}]`, Replacement: ""},
		},
	}
}
