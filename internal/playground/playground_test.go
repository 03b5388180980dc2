package playground

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jusunglee/romanize/internal/transliteration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestPlaygroundRomanizesWhileTyping(t *testing.T) {
	m := New(transliteration.Default())
	assert.Equal(t, "auto", m.Script())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("김치")})
	assert.Equal(t, "gimchi", m.Result().Transliterated)
	assert.Equal(t, "hangul", m.Result().Script)
	assert.Contains(t, m.View(), "gimchi")
}

func TestPlaygroundCyclesScripts(t *testing.T) {
	engine := transliteration.Default()
	m := New(engine)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("بيت")})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, engine.Scripts()[0], m.Script())
	assert.Equal(t, "byt", m.Result().Transliterated)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, engine.Scripts()[1], m.Script())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "auto", m.Script())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, engine.Scripts()[len(engine.Scripts())-1], m.Script(), "wraps around")
}

func TestPlaygroundUnsupportedNotice(t *testing.T) {
	m := New(transliteration.Default())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	assert.Equal(t, transliteration.StatusUnsupportedScript, m.Result().Status)
	assert.Contains(t, m.View(), "No rules for")
}
