package transliteration

import (
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

var pinyinArgs pinyin.Args

func init() {
	pinyinArgs = pinyin.NewArgs()
	pinyinArgs.Style = pinyin.Normal // no tone marks
}

func romanizeHan(r rune) (string, bool) {
	if !unicode.Is(unicode.Han, r) {
		return "", false
	}
	py := pinyin.SinglePinyin(r, pinyinArgs)
	if len(py) == 0 {
		return "", false
	}
	return py[0], true
}

func hanDefinition() Definition {
	return Definition{
		Script:  "han",
		Name:    "Chinese (Han)",
		Aliases: []string{"chinese", "zh"},
		Graphemes: map[string]string{
			"，": ",",
			"。": ".",
			"！": "!",
			"？": "?",
			"：": ":",
			"；": ";",
			"、": ",",
		},
		Ranges:   []*unicode.RangeTable{unicode.Han},
		Romanize: romanizeHan,
	}
}
