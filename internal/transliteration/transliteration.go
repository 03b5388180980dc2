// Package transliteration converts non-Latin text to a Latin approximation
// using per-script rule tables. Tables are compiled once and shared; every
// call is a pure function of its input.
package transliteration

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"
)

// MaxInputBytes is the largest text ValidateInput accepts.
const MaxInputBytes = 64 << 10

var (
	ErrUnsupportedScript = errors.New("unsupported script")
	ErrInvalidInput      = errors.New("invalid input")
)

type Status string

const (
	StatusOK                Status = "ok"
	StatusUnsupportedScript Status = "unsupported_script"
)

type Result struct {
	Original       string `json:"original"`
	Transliterated string `json:"transliterated"`
	// Script is the table that ran, or the requested/detected id when none did.
	Script string `json:"script_used"`
	Status Status `json:"status"`
}

// Err returns ErrUnsupportedScript for identity results and nil otherwise.
func (r Result) Err() error {
	if r.Status == StatusUnsupportedScript {
		return fmt.Errorf("%w: %q", ErrUnsupportedScript, r.Script)
	}
	return nil
}

// ValidateInput rejects text the callers should not forward to the engine.
func ValidateInput(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidInput)
	}
	if len(text) > MaxInputBytes {
		return fmt.Errorf("%w: text exceeds %d bytes", ErrInvalidInput, MaxInputBytes)
	}
	return nil
}

type Engine struct {
	registry *Registry
}

// New builds an engine over the given tables.
func New(tables ...*Table) (*Engine, error) {
	reg, err := NewRegistry(tables...)
	if err != nil {
		return nil, err
	}
	return &Engine{registry: reg}, nil
}

var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := New(BuiltinTables()...)
	if err != nil {
		panic(err)
	}
	return e
})

// Default returns the engine over the builtin tables.
func Default() *Engine {
	return defaultEngine()
}

// Transliterate runs text through the default engine.
func Transliterate(text, script string) Result {
	return Default().Transliterate(text, script)
}

// Registry exposes the engine's dispatcher.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Scripts lists the supported script ids.
func (e *Engine) Scripts() []string {
	return e.registry.Scripts()
}

// Transliterate converts text with the table for script, or with the detected
// script when script is empty or "auto". It never fails: an unknown script
// yields the text unchanged with StatusUnsupportedScript.
func (e *Engine) Transliterate(text, script string) Result {
	script = normalizeScript(script)
	if script == "" || script == "auto" {
		script = e.registry.Detect(text)
	}

	t, ok := e.registry.Lookup(script)
	if !ok {
		return Result{
			Original:       text,
			Transliterated: text,
			Script:         script,
			Status:         StatusUnsupportedScript,
		}
	}
	return Result{
		Original:       text,
		Transliterated: t.Apply(text),
		Script:         t.script,
		Status:         StatusOK,
	}
}
