package transliteration

import (
	"fmt"
	"unicode"

	"github.com/samber/lo"
)

// Latin is the detection bucket for letters that belong to no registered
// table. It never has a table of its own.
const Latin = "latin"

// Registry dispatches script ids and detected scripts to tables.
type Registry struct {
	tables []*Table
	byID   map[string]*Table
}

// NewRegistry indexes tables by script id and alias. Two tables claiming the
// same id is a malformed configuration.
func NewRegistry(tables ...*Table) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, id := range append([]string{t.script}, t.aliases...) {
			if id == Latin || id == "auto" {
				return nil, fmt.Errorf("%w: %s: reserved script id %q", ErrMalformedRuleTable, t.script, id)
			}
			if prev, ok := r.byID[id]; ok {
				return nil, fmt.Errorf("%w: %s: id %q already used by %s", ErrMalformedRuleTable, t.script, id, prev.script)
			}
			r.byID[id] = t
		}
		r.tables = append(r.tables, t)
	}
	return r, nil
}

// Lookup finds a table by script id or alias, ignoring case.
func (r *Registry) Lookup(script string) (*Table, bool) {
	t, ok := r.byID[normalizeScript(script)]
	return t, ok
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []*Table {
	return append([]*Table(nil), r.tables...)
}

// Scripts returns the registered script ids in registration order.
func (r *Registry) Scripts() []string {
	return lo.Map(r.tables, func(t *Table, _ int) string { return t.script })
}

// Detect picks the script with the most letters in text. Only letters and
// marks are counted; ties go to the script seen first. It returns Latin when
// no registered script wins, including for text with no letters at all.
func (r *Registry) Detect(text string) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range text {
		if !unicode.IsLetter(c) && !unicode.IsMark(c) {
			continue
		}
		bucket := r.classify(c)
		if _, seen := counts[bucket]; !seen {
			order = append(order, bucket)
		}
		counts[bucket]++
	}

	best, bestCount := Latin, 0
	for _, bucket := range order {
		if counts[bucket] > bestCount {
			best, bestCount = bucket, counts[bucket]
		}
	}
	return best
}

func (r *Registry) classify(c rune) string {
	for _, t := range r.tables {
		if t.owns(c) {
			return t.script
		}
	}
	return Latin
}
