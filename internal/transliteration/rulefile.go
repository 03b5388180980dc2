package transliteration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// RuleFile is the on-disk form of extra tables loaded at startup:
//
//	tables:
//	  - script: cyrillic
//	    name: Cyrillic
//	    aliases: [ru]
//	    ranges: [Cyrillic]
//	    graphemes: {"ж": "zh"}
//	    pre:  [{pattern: "ъ", replacement: ""}]
//	    post: [{pattern: "-{2,}", replacement: "-"}]
type RuleFile struct {
	Tables []RuleFileTable `yaml:"tables"`
}

type RuleFileTable struct {
	Script    string            `yaml:"script"`
	Name      string            `yaml:"name"`
	Aliases   []string          `yaml:"aliases"`
	Ranges    []string          `yaml:"ranges"`
	Graphemes map[string]string `yaml:"graphemes"`
	Pre       []Rule            `yaml:"pre"`
	Post      []Rule            `yaml:"post"`
}

// LoadRuleFile reads definitions from a YAML file.
func LoadRuleFile(path string) ([]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	defs, err := ParseRuleFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// ParseRuleFile decodes definitions from YAML. Unknown fields, duplicate keys
// and unknown range names are reported as ErrMalformedRuleTable.
func ParseRuleFile(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file RuleFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedRuleTable, err)
	}

	defs := make([]Definition, 0, len(file.Tables))
	for _, t := range file.Tables {
		ranges := make([]*unicode.RangeTable, 0, len(t.Ranges))
		for _, name := range t.Ranges {
			rt, ok := lookupRange(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown range %q", ErrMalformedRuleTable, t.Script, name)
			}
			ranges = append(ranges, rt)
		}
		defs = append(defs, Definition{
			Script:    t.Script,
			Name:      t.Name,
			Aliases:   t.Aliases,
			Graphemes: t.Graphemes,
			Pre:       t.Pre,
			Post:      t.Post,
			Ranges:    ranges,
		})
	}
	return defs, nil
}

// lookupRange resolves a Unicode script name such as "Cyrillic" or "Greek".
func lookupRange(name string) (*unicode.RangeTable, bool) {
	if rt, ok := unicode.Scripts[name]; ok {
		return rt, true
	}
	for k, rt := range unicode.Scripts {
		if strings.EqualFold(k, name) {
			return rt, true
		}
	}
	return nil, false
}

// MergeDefinitions returns base with overrides applied: an override replaces
// the base definition with the same script id, new scripts are appended.
// Rule files cannot express a Romanize hook or an empty range list, so an
// override keeps the base definition's hook and ranges when it has none.
func MergeDefinitions(base, overrides []Definition) []Definition {
	out := append([]Definition(nil), base...)
	index := make(map[string]int, len(out))
	for i, d := range out {
		index[normalizeScript(d.Script)] = i
	}
	for _, d := range overrides {
		id := normalizeScript(d.Script)
		if i, ok := index[id]; ok {
			if d.Romanize == nil {
				d.Romanize = out[i].Romanize
			}
			if len(d.Ranges) == 0 {
				d.Ranges = out[i].Ranges
			}
			out[i] = d
			continue
		}
		index[id] = len(out)
		out = append(out, d)
	}
	return out
}

// CompileAll compiles every definition, stopping at the first malformed one.
func CompileAll(defs []Definition) ([]*Table, error) {
	tables := make([]*Table, 0, len(defs))
	for _, d := range defs {
		t, err := Compile(d)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// NewFromRuleFile builds an engine over the builtin tables plus the tables in
// path. An empty path yields the builtin engine.
func NewFromRuleFile(path string) (*Engine, error) {
	defs := BuiltinDefinitions()
	if path != "" {
		extra, err := LoadRuleFile(path)
		if err != nil {
			return nil, err
		}
		defs = MergeDefinitions(defs, extra)
	}
	tables, err := CompileAll(defs)
	if err != nil {
		return nil, err
	}
	return New(tables...)
}

func normalizeScript(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
