// Package playground is a terminal UI that romanizes text as it is typed.
package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jusunglee/romanize/internal/transliteration"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Bold(true)

	scriptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	activeScriptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("39")).
				Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type Model struct {
	engine  *transliteration.Engine
	scripts []string
	current int
	input   textinput.Model
	result  transliteration.Result
	width   int
}

// New builds the playground over engine. The first script choice is "auto".
func New(engine *transliteration.Engine) Model {
	in := textinput.New()
	in.Placeholder = "Type or paste text in any supported script"
	in.Prompt = "> "
	in.CharLimit = transliteration.MaxInputBytes
	in.Focus()

	m := Model{
		engine:  engine,
		scripts: append([]string{"auto"}, engine.Scripts()...),
		input:   in,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.current = (m.current + 1) % len(m.scripts)
			m.refresh()
			return m, nil
		case tea.KeyShiftTab:
			m.current = (m.current - 1 + len(m.scripts)) % len(m.scripts)
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

func (m *Model) refresh() {
	m.result = m.engine.Transliterate(m.input.Value(), m.scripts[m.current])
}

// Script returns the selected script choice.
func (m Model) Script() string { return m.scripts[m.current] }

// Result returns the romanization of the current input.
func (m Model) Result() transliteration.Result { return m.result }

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Romanize Playground"))
	s.WriteString("\n")

	chips := make([]string, len(m.scripts))
	for i, name := range m.scripts {
		if i == m.current {
			chips[i] = activeScriptStyle.Render(name)
		} else {
			chips[i] = scriptStyle.Render(name)
		}
	}
	s.WriteString(strings.Join(chips, "  "))
	s.WriteString("\n\n")

	s.WriteString(m.input.View())
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("Romanized"))
	s.WriteString(outputStyle.Render(m.result.Transliterated))
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Script"))
	s.WriteString(scriptStyle.Render(m.result.Script))
	s.WriteString("\n")
	if m.result.Status == transliteration.StatusUnsupportedScript && m.input.Value() != "" {
		s.WriteString(warnStyle.Render(fmt.Sprintf("No rules for %q, text shown unchanged", m.result.Script)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(dimStyle.Render("Tab/Shift+Tab: change script  Esc: quit"))
	s.WriteString("\n")
	return s.String()
}

// Run starts the playground in the alternate screen.
func Run(engine *transliteration.Engine) error {
	_, err := tea.NewProgram(New(engine), tea.WithAltScreen()).Run()
	return err
}
