package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planboard/internal/ai"
	"github.com/sadopc/planboard/internal/plan"
	"github.com/sadopc/planboard/internal/store"
)

type assistantModel struct {
	ctx       context.Context
	conv      *ai.Conversation
	newClient func(store.Preferences) (ai.Client, error)
	timeout   time.Duration
	prefs     store.Preferences

	width  int
	height int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	actions  []plan.ProcessedAction
	needsKey bool
}

func newAssistantModel(ctx context.Context, conv *ai.Conversation, newClient func(store.Preferences) (ai.Client, error), timeout time.Duration) assistantModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about the actions…"
	ti.Prompt = "› "
	ti.CharLimit = 500

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return assistantModel{
		ctx:       ctx,
		conv:      conv,
		newClient: newClient,
		timeout:   timeout,
		input:     ti,
		viewport:  viewport.New(0, 0),
		spinner:   s,
	}
}

func (m *assistantModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = max(10, w-12)
	m.viewport.Width = max(10, w-8)
	m.viewport.Height = max(3, h-10)
	m.refresh()
}

// setActions replaces the context sent with the next question.
func (m *assistantModel) setActions(actions []plan.ProcessedAction) {
	m.actions = actions
}

func (m *assistantModel) setPrefs(p store.Preferences) {
	m.prefs = p
}

// capturing reports whether keys go to the input or the key prompt.
func (m assistantModel) capturing() bool {
	return m.needsKey || m.input.Focused()
}

func (m *assistantModel) focus() tea.Cmd {
	return m.input.Focus()
}

func (m *assistantModel) refresh() {
	m.viewport.SetContent(m.renderTranscript(m.viewport.Width))
	m.viewport.GotoBottom()
}

func completeCmd(ctx context.Context, client ai.Client, p ai.Pending, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		reply, err := client.Complete(ctx, p.System, p.Question)
		return assistantReplyMsg{pending: p, reply: reply, err: err}
	}
}

func (m assistantModel) send() (assistantModel, tea.Cmd) {
	if strings.TrimSpace(m.input.Value()) == "" || m.conv.Busy() {
		return m, nil
	}

	client, err := m.newClient(m.prefs)
	if errors.Is(err, ai.ErrMissingAPIKey) {
		m.needsKey = true
		m.input.Blur()
		return m, nil
	}
	if err != nil {
		return m, statusCmd(fmt.Sprintf("Assistant unavailable: %v", err), true)
	}

	p, err := m.conv.Begin(m.input.Value(), m.actions)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyInput) {
			return m, nil
		}
		return m, statusCmd(err.Error(), true)
	}

	m.input.SetValue("")
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, completeCmd(m.ctx, client, p, m.timeout))
}

func (m assistantModel) update(msg tea.Msg) (assistantModel, tea.Cmd) {
	switch msg := msg.(type) {
	case assistantReplyMsg:
		if _, ok := m.conv.Finish(msg.pending, msg.reply, msg.err); ok {
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.conv.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m assistantModel) updateKeys(msg tea.KeyMsg) (assistantModel, tea.Cmd) {
	if m.needsKey {
		switch {
		case key.Matches(msg, keys.Enter):
			m.needsKey = false
			return m, func() tea.Msg { return navigateMsg{view: viewSettings, edit: true} }
		case key.Matches(msg, keys.Back):
			m.needsKey = false
		}
		return m, nil
	}

	if key.Matches(msg, keys.Clear) {
		m.conv.Clear()
		m.refresh()
		return m, statusCmd("Conversation cleared", false)
	}

	if m.input.Focused() {
		switch {
		case key.Matches(msg, keys.Enter):
			return m.send()
		case key.Matches(msg, keys.Back):
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Enter), msg.String() == "i":
		cmd := m.focus()
		return m, cmd
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m assistantModel) view() string {
	w := m.width - 4

	title := titleStyle.Render("Insight Assistant")
	title += mutedStyle.Render("  · " + m.prefs.Provider.Label())

	if m.needsKey {
		prompt := lipgloss.JoinVertical(lipgloss.Left,
			warningStyle.Render("No API key configured"),
			"",
			"Configure your "+m.prefs.Provider.Label()+" API key in Settings before asking questions.",
			"",
			mutedStyle.Render("enter: open settings  esc: dismiss"),
		)
		return lipgloss.JoinVertical(lipgloss.Left,
			title, "",
			activePanelStyle.Width(w).Render(prompt),
		)
	}

	status := mutedStyle.Render("enter: ask  esc: unfocus  ctrl+l: clear history")
	if !m.input.Focused() {
		status = mutedStyle.Render("enter/i: type a question  ↑/↓: scroll  ctrl+l: clear history")
	}
	if m.conv.Busy() {
		status = m.spinner.View() + mutedStyle.Render(" thinking…")
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "",
		m.viewport.View(), "",
		m.input.View(),
		status,
	))
}

func (m assistantModel) renderTranscript(w int) string {
	msgs := m.conv.Messages()
	if len(msgs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			highlightStyle.Render("Welcome to the insight assistant!"),
			"",
			mutedStyle.Width(w).Render("Ask about the actions in this plan. I can help with analysis, spot bottlenecks, suggest priorities and more."),
		)
	}

	body := lipgloss.NewStyle().Width(max(10, w-2))
	var blocks []string
	for _, msg := range msgs {
		stamp := msg.Time.Format("15:04")
		var label string
		switch {
		case msg.Role == ai.RoleUser:
			label = selectedItemStyle.Render("You")
		case msg.Failed:
			label = errorStyle.Render("Assistant")
		default:
			label = successStyle.Render("Assistant")
		}
		text := body.Render(msg.Content)
		if msg.Failed {
			text = errorStyle.Width(max(10, w-2)).Render(msg.Content)
		}
		blocks = append(blocks, label+mutedStyle.Render(" "+stamp), text, "")
	}
	return strings.Join(blocks, "\n")
}
