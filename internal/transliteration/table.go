package transliteration

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxGraphemeRunes bounds the length of a grapheme key and therefore the
// mapper's lookahead.
const MaxGraphemeRunes = 8

// ErrMalformedRuleTable is returned when a table definition fails validation.
var ErrMalformedRuleTable = errors.New("malformed rule table")

// Definition is the authoring form of a script's rules. Pre and Post run in
// slice order; reordering them changes output.
type Definition struct {
	Script    string
	Name      string
	Aliases   []string
	Graphemes map[string]string
	Pre       []Rule
	Post      []Rule
	// Ranges are the Unicode blocks counted toward this script during detection.
	Ranges []*unicode.RangeTable
	// Romanize handles runes with no grapheme entry, for scripts whose
	// syllables are computed rather than listed.
	Romanize func(r rune) (string, bool)
}

// Table is a compiled Definition. It is immutable and safe for concurrent use.
type Table struct {
	script    string
	name      string
	aliases   []string
	graphemes map[string]string
	maxKeyLen int
	pre       []compiledRule
	post      []compiledRule
	ranges    []*unicode.RangeTable
	romanize  func(rune) (string, bool)
}

// Compile validates def and builds its Table. Every error wraps
// ErrMalformedRuleTable.
func Compile(def Definition) (*Table, error) {
	t, err := compile(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRuleTable, def.Script, err)
	}
	return t, nil
}

// MustCompile is like Compile but panics on error. It is meant for tables
// built from static data.
func MustCompile(def Definition) *Table {
	t, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return t
}

func compile(def Definition) (*Table, error) {
	script := normalizeScript(def.Script)
	if script == "" {
		return nil, errors.New("empty script id")
	}

	graphemes := make(map[string]string, len(def.Graphemes))
	sources := make(map[string]string, len(def.Graphemes))
	maxKeyLen := 0
	for src, dst := range def.Graphemes {
		if src == "" {
			return nil, errors.New("empty grapheme key")
		}
		if !utf8.ValidString(src) || !utf8.ValidString(dst) {
			return nil, fmt.Errorf("grapheme %q: invalid UTF-8", src)
		}
		key := norm.NFC.String(src)
		if prev, ok := sources[key]; ok {
			return nil, fmt.Errorf("duplicate grapheme key %q (also %q)", src, prev)
		}
		n := utf8.RuneCountInString(key)
		if n > MaxGraphemeRunes {
			return nil, fmt.Errorf("grapheme %q longer than %d runes", src, MaxGraphemeRunes)
		}
		sources[key] = src
		graphemes[key] = norm.NFC.String(dst)
		maxKeyLen = max(maxKeyLen, n)
	}

	pre, err := compileRules(def.Pre)
	if err != nil {
		return nil, fmt.Errorf("pre: %w", err)
	}
	post, err := compileRules(def.Post)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}

	name := def.Name
	if name == "" {
		name = script
	}
	aliases := make([]string, 0, len(def.Aliases))
	for _, a := range def.Aliases {
		aliases = append(aliases, normalizeScript(a))
	}

	return &Table{
		script:    script,
		name:      name,
		aliases:   aliases,
		graphemes: graphemes,
		maxKeyLen: maxKeyLen,
		pre:       pre,
		post:      post,
		ranges:    def.Ranges,
		romanize:  def.Romanize,
	}, nil
}

// Script returns the table's script id.
func (t *Table) Script() string { return t.script }

// Name returns the human-readable script name.
func (t *Table) Name() string { return t.name }

// Aliases returns the alternative ids the table answers to.
func (t *Table) Aliases() []string { return append([]string(nil), t.aliases...) }

// Apply runs the full pipeline: pre rules, grapheme mapping, post rules.
func (t *Table) Apply(text string) string {
	if text == "" || t.empty() {
		return text
	}
	s := t.preprocess(norm.NFC.String(text))
	s = t.mapGraphemes(s)
	return t.postprocess(s)
}

func (t *Table) preprocess(s string) string { return applyRules(s, t.pre) }

func (t *Table) postprocess(s string) string { return applyRules(s, t.post) }

// mapGraphemes replaces the longest grapheme key at each position. Runes
// without an entry go through the romanizer if there is one and are copied
// unchanged otherwise.
func (t *Table) mapGraphemes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var ends [MaxGraphemeRunes]int
	for len(s) > 0 {
		// ends[k] is the byte length of the first k+1 runes.
		n, off := 0, 0
		for n < t.maxKeyLen && off < len(s) {
			_, size := utf8.DecodeRuneInString(s[off:])
			off += size
			ends[n] = off
			n++
		}

		matched := false
		for k := n - 1; k >= 0; k-- {
			if out, ok := t.graphemes[s[:ends[k]]]; ok {
				b.WriteString(out)
				s = s[ends[k]:]
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		r, size := utf8.DecodeRuneInString(s)
		if t.romanize != nil && !(r == utf8.RuneError && size == 1) {
			if out, ok := t.romanize(r); ok {
				b.WriteString(out)
				s = s[size:]
				continue
			}
		}
		b.WriteString(s[:size])
		s = s[size:]
	}
	return b.String()
}

func (t *Table) empty() bool {
	return len(t.graphemes) == 0 && len(t.pre) == 0 && len(t.post) == 0 && t.romanize == nil
}

func (t *Table) owns(r rune) bool {
	for _, rt := range t.ranges {
		if unicode.Is(rt, r) {
			return true
		}
	}
	return false
}
