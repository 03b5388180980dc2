// envsetup provides a lightweight .env configuration wizard.
// It runs on first bot startup when no .env file exists, collecting the
// Discord token, an optional LLM provider for /translate, and the database URL.
package envsetup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultDatabaseURL = "sqlite://./romanize.db"

type step int

const (
	stepWelcome step = iota
	stepDiscord
	stepLLMProvider
	stepLLMKey
	stepDatabase
	stepConfirm
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	step         step
	discordToken string
	llmProvider  string
	llmAPIKey    string
	databaseURL  string
	input        textinput.Model
	path         string
	saved        bool
	err          error
}

// New returns the wizard model; the finished configuration is written to path.
func New(path string) model {
	in := textinput.New()
	in.Prompt = "> "
	in.Focus()
	return model{step: stepWelcome, input: in, path: path}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// next moves to s and resets the input, masking it for secrets.
func (m model) next(s step) model {
	m.step = s
	m.input.Reset()
	m.input.Placeholder = ""
	m.input.EchoMode = textinput.EchoNormal
	switch s {
	case stepDiscord, stepLLMKey:
		m.input.EchoMode = textinput.EchoPassword
	case stepDatabase:
		m.input.Placeholder = defaultDatabaseURL
	}
	return m
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil
	value := strings.TrimSpace(m.input.Value())

	switch m.step {
	case stepWelcome:
		m = m.next(stepDiscord)

	case stepDiscord:
		if value == "" {
			m.err = errors.New("Discord token is required")
			return m, nil
		}
		m.discordToken = value
		m = m.next(stepLLMProvider)

	case stepLLMProvider:
		switch strings.ToLower(value) {
		case "1", "anthropic":
			m.llmProvider = "anthropic"
			m = m.next(stepLLMKey)
		case "2", "google":
			m.llmProvider = "google"
			m = m.next(stepLLMKey)
		case "3", "none", "":
			m.llmProvider = ""
			m = m.next(stepDatabase)
		default:
			m.err = errors.New("Please enter 1, 2 or 3")
		}

	case stepLLMKey:
		if value == "" {
			m.err = errors.New("API key is required")
			return m, nil
		}
		m.llmAPIKey = value
		m = m.next(stepDatabase)

	case stepDatabase:
		if value == "" {
			value = defaultDatabaseURL
		}
		m.databaseURL = value
		m = m.next(stepConfirm)

	case stepConfirm:
		switch strings.ToLower(value) {
		case "y", "yes", "":
			if err := os.WriteFile(m.path, []byte(m.envFile()), 0600); err != nil {
				m.err = err
				return m, nil
			}
			m.saved = true
			return m, tea.Quit
		case "n", "no":
			m = New(m.path).next(stepDiscord)
		}
	}

	return m, nil
}

func (m model) envFile() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DATABASE_URL=%s\n", m.databaseURL)
	fmt.Fprintf(&b, "DISCORD_TOKEN=%s\n", m.discordToken)
	switch m.llmProvider {
	case "anthropic":
		b.WriteString("LLM_PROVIDER=anthropic\n")
		fmt.Fprintf(&b, "ANTHROPIC_API_KEY=%s\n", m.llmAPIKey)
	case "google":
		b.WriteString("LLM_PROVIDER=google\n")
		fmt.Fprintf(&b, "GOOGLE_API_KEY=%s\n", m.llmAPIKey)
	}
	return b.String()
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("Romanize Bot - Env Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard will help you configure the bot.\n")
		s.WriteString("You'll need:\n\n")
		s.WriteString("  - A Discord bot token\n")
		s.WriteString("  - Optionally, an LLM API key (Anthropic or Google) for /translate\n")
		s.WriteString("\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Ctrl+C to exit"))

	case stepDiscord:
		s.WriteString(titleStyle.Render("Step 1: Discord Bot Token"))
		s.WriteString("\n\n")
		s.WriteString("  1. Go to " + linkStyle.Render("https://discord.com/developers/applications") + "\n")
		s.WriteString("  2. Create a new application (or select existing)\n")
		s.WriteString("  3. Go to the Bot section and click 'Reset Token'\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your Discord token here:"))

	case stepLLMProvider:
		s.WriteString(titleStyle.Render("Step 2: Translation Provider"))
		s.WriteString("\n\n")
		s.WriteString("  1. Anthropic (Claude)\n")
		s.WriteString("  2. Google (Gemini)\n")
		s.WriteString("  3. None, romanization only\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Enter 1, 2 or 3:"))

	case stepLLMKey:
		s.WriteString(titleStyle.Render("Step 3: LLM API Key"))
		s.WriteString("\n\n")
		if m.llmProvider == "anthropic" {
			s.WriteString("  Create a key at " + linkStyle.Render("https://console.anthropic.com") + "\n")
		} else {
			s.WriteString("  Create a key at " + linkStyle.Render("https://aistudio.google.com/apikey") + "\n")
		}
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your API key here:"))

	case stepDatabase:
		s.WriteString(titleStyle.Render("Step 4: Database"))
		s.WriteString("\n\n")
		s.WriteString("  A SQLite path (sqlite://...) or a postgres:// URL.\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Database URL (Enter for default):"))

	case stepConfirm:
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("  Database:     " + successStyle.Render(m.databaseURL) + "\n")
		s.WriteString("  Discord:      " + successStyle.Render(maskToken(m.discordToken)) + "\n")
		provider := m.llmProvider
		if provider == "" {
			provider = "none"
		}
		s.WriteString("  LLM Provider: " + successStyle.Render(provider) + "\n")
		if m.llmAPIKey != "" {
			s.WriteString("  LLM API Key:  " + successStyle.Render(maskToken(m.llmAPIKey)) + "\n")
		}
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Save this configuration? [Y/n]:"))
	}

	if m.step != stepWelcome {
		s.WriteString("\n")
		s.WriteString(m.input.View())
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	s.WriteString("\n")
	return s.String()
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Run starts the setup wizard and reports whether a configuration was saved.
func Run(path string) (bool, error) {
	finalModel, err := tea.NewProgram(New(path)).Run()
	if err != nil {
		return false, err
	}
	return finalModel.(model).saved, nil
}

// NeedsSetup reports whether the env file at path is missing.
func NeedsSetup(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}
