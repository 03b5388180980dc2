package transliteration

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Rule is a whole-string rewrite. Pattern uses RE2 syntax and Replacement is a
// regexp template, so $1 refers to the first capture group.
type Rule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

type compiledRule struct {
	re          *regexp.Regexp
	whole       *regexp.Regexp
	replacement string
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i)
		}
		src := norm.NFC.String(r.Pattern)
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		whole, err := regexp.Compile(`^(?:` + src + `)$`)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, compiledRule{re: re, whole: whole, replacement: norm.NFC.String(r.Replacement)})
	}
	if err := checkCycles(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkCycles rejects a later rule that rewrites an earlier rule's output back
// into text the earlier rule consumes, e.g. "ى"->"a" followed by "a"->"ى".
func checkCycles(rules []compiledRule) error {
	for i, a := range rules {
		if a.replacement == "" || hasTemplate(a.replacement) {
			continue
		}
		for j := i + 1; j < len(rules); j++ {
			b := rules[j]
			if !b.whole.MatchString(a.replacement) {
				continue
			}
			back := b.re.ReplaceAllString(a.replacement, b.replacement)
			if back != "" && a.whole.MatchString(back) {
				return fmt.Errorf("rules %d and %d form a cycle (%q <-> %q)", i, j, a.re.String(), b.re.String())
			}
		}
	}
	return nil
}

func hasTemplate(s string) bool {
	return strings.ContainsRune(s, '$')
}

// applyRules runs each rule as one global left-to-right pass; a pattern that
// can match the empty string still terminates.
func applyRules(s string, rules []compiledRule) string {
	for _, r := range rules {
		if s == "" {
			return s
		}
		s = r.re.ReplaceAllString(s, r.replacement)
	}
	return s
}
