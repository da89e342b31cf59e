// Package tui provides a terminal chat interface over the policy index.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/credostack/underwrite/internal/core/ports/driving"
)

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// turn is one exchange in the rendered transcript.
type turn struct {
	role string
	text string
}

// replyMsg carries the assistant response back into the update loop.
type replyMsg struct {
	text string
	err  error
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	ctx      context.Context
	chat     driving.ChatService
	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	status   string
	ready    bool
	waiting  bool
}

// New creates a chat model over the given service.
func New(ctx context.Context, chat driving.ChatService) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the credit policies and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		chat:     chat,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Chat mode: %s. Ctrl-R clears history, Ctrl-C quits.", chat.Mode()),
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + ih + th // header, status, frames
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+r":
			m.chat.Reset()
			m.turns = nil
			m.status = "Conversation cleared."
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		case "enter":
			if m.waiting {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.turns = append(m.turns, turn{role: "user", text: q})
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, m.send(q)
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
		} else {
			m.turns = append(m.turns, turn{role: "assistant", text: msg.text})
			m.status = "Ready."
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Underwrite Chat")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// send dispatches one chat turn off the update loop.
func (m Model) send(message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.chat.Send(m.ctx, message)
		return replyMsg{text: reply, err: err}
	}
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := userStyle.Render("You")
		if t.role == "assistant" {
			label = assistantStyle.Render("Assistant")
		}
		b.WriteString(label + "\n" + t.text)
	}
	return b.String()
}

// Run starts the interactive chat session and blocks until exit.
func Run(ctx context.Context, chat driving.ChatService) error {
	p := tea.NewProgram(New(ctx, chat), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
