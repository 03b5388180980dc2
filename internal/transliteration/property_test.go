package transliteration

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// greedy is a reference mapper for the {"a", "ab"} table below.
func greedy(s string) string {
	var b strings.Builder
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "ab"):
			b.WriteString("2")
			s = s[2:]
		case s[0] == 'a':
			b.WriteString("1")
			s = s[1:]
		default:
			b.WriteByte(s[0])
			s = s[1:]
		}
	}
	return b.String()
}

func TestPropertyMapperMatchesReference(t *testing.T) {
	table := MustCompile(Definition{
		Script:    "test",
		Graphemes: map[string]string{"a": "1", "ab": "2"},
	})
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringMatching(`[abc ]{0,40}`).Draw(t, "input")
		got := table.Apply(in)
		if want := greedy(in); got != want {
			t.Fatalf("Apply(%q) = %q, want %q", in, got, want)
		}
		// every unmapped rune survives
		if strings.Count(got, "c") != strings.Count(in, "c") {
			t.Fatalf("Apply(%q) = %q lost input", in, got)
		}
	})
}

func TestPropertyDeterministic(t *testing.T) {
	scripts := append(Default().Scripts(), "", "unknown")
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "input")
		script := rapid.SampledFrom(scripts).Draw(t, "script")
		first := Transliterate(in, script)
		second := Transliterate(in, script)
		if first != second {
			t.Fatalf("Transliterate(%q, %q) not deterministic: %+v vs %+v", in, script, first, second)
		}
		if first.Original != in {
			t.Fatalf("Original = %q, want %q", first.Original, in)
		}
	})
}

func TestPropertyASCIIPassesThrough(t *testing.T) {
	scripts := append(Default().Scripts(), "")
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringMatching(`[A-Za-z0-9 .!?']{0,60}`).Draw(t, "input")
		script := rapid.SampledFrom(scripts).Draw(t, "script")
		if got := Transliterate(in, script).Transliterated; got != in {
			t.Fatalf("Transliterate(%q, %q) = %q", in, script, got)
		}
	})
}

func TestPropertyUnsupportedIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "input")
		res := Transliterate(in, "klingon")
		if res.Transliterated != in || res.Status != StatusUnsupportedScript {
			t.Fatalf("Transliterate(%q, klingon) = %+v", in, res)
		}
	})
}

func TestPropertyDevanagariLeavesNoSourceLetters(t *testing.T) {
	letters := []rune("कखगघचछजझटठडढणतथदधनपफबभमयरलवशषसहअआइईउऊएऐओऔािीुूेैोौंः्")
	rapid.Check(t, func(t *rapid.T) {
		rs := rapid.SliceOfN(rapid.SampledFrom(letters), 0, 30).Draw(t, "runes")
		got := Transliterate(string(rs), "devanagari").Transliterated
		for _, r := range got {
			if r > 0x7f {
				t.Fatalf("Transliterate(%q) = %q left %q unmapped", string(rs), got, r)
			}
		}
	})
}
