package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planboard/internal/plan"
	"github.com/sadopc/planboard/internal/tasks"
)

const cardHeight = 7

type actionsModel struct {
	width  int
	height int

	planID   string
	all      []plan.ProcessedAction
	visible  []plan.ProcessedAction
	progress map[string]tasks.Progress
	loading  bool
	err      error

	filter    plan.StatusFilter
	search    textinput.Model
	searching bool
	cursor    int
}

func newActionsModel() actionsModel {
	ti := textinput.New()
	ti.Placeholder = "search action, responsible, sector or id"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	return actionsModel{
		filter:   plan.FilterAll,
		search:   ti,
		progress: make(map[string]tasks.Progress),
	}
}

func (m *actionsModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.search.Width = max(10, w-12)
}

// reset clears the view for a newly selected plan.
func (m *actionsModel) reset(planID string) {
	m.planID = planID
	m.all = nil
	m.visible = nil
	m.progress = make(map[string]tasks.Progress)
	m.loading = true
	m.err = nil
	m.cursor = 0
}

func (m *actionsModel) setActions(actions []plan.ProcessedAction, err error) {
	m.loading = false
	m.err = err
	m.all = actions
	m.apply()
}

func (m *actionsModel) setProgress(actionKey string, p tasks.Progress) {
	m.progress[actionKey] = p
}

func (m *actionsModel) apply() {
	m.visible = plan.Filter(m.all, m.filter, m.search.Value())
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m actionsModel) selected() (plan.ProcessedAction, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return plan.ProcessedAction{}, false
	}
	return m.visible[m.cursor], true
}

func (m actionsModel) update(msg tea.Msg) (actionsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.searching {
		switch keyMsg.String() {
		case "esc", "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(keyMsg)
		m.apply()
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(keyMsg, keys.Filter):
		m.filter = m.filter.Next()
		m.apply()
	case key.Matches(keyMsg, keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.apply()
		}
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Enter):
		if a, ok := m.selected(); ok {
			return m, func() tea.Msg { return selectActionMsg{action: a} }
		}
	}
	return m, nil
}

func (m actionsModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4

	var rows []string
	rows = append(rows, m.renderFilters(), m.search.View(), "")

	switch {
	case m.loading:
		rows = append(rows, mutedStyle.Render("Loading actions…"))
	case m.err != nil:
		rows = append(rows, errorStyle.Render("Could not load actions: "+m.err.Error()))
	case len(m.all) == 0:
		rows = append(rows, mutedStyle.Render("This plan has no actions."))
	case len(m.visible) == 0:
		rows = append(rows, mutedStyle.Render("No actions match the current search and filter."))
	default:
		rows = append(rows, m.renderCards(w)...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m actionsModel) renderFilters() string {
	var buttons []string
	for _, f := range plan.StatusFilters {
		label := fmt.Sprintf("%s (%d)", f.Label(), len(plan.Filter(m.all, f, "")))
		if f == m.filter {
			buttons = append(buttons, activeTabStyle.Render(label))
		} else {
			buttons = append(buttons, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, buttons...)
}

func (m actionsModel) renderCards(w int) []string {
	perPage := max(1, (m.height-6)/cardHeight)
	start := 0
	if m.cursor >= perPage {
		start = m.cursor - perPage + 1
	}
	end := min(len(m.visible), start+perPage)

	var cards []string
	for i := start; i < end; i++ {
		cards = append(cards, m.renderCard(m.visible[i], w, i == m.cursor))
	}
	if len(m.visible) > perPage {
		cards = append(cards, mutedStyle.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(m.visible))))
	}
	return cards
}

func (m actionsModel) renderCard(a plan.ProcessedAction, w int, selected bool) string {
	inner := w - 6
	badge := delayBadge(a.DelayStatus)

	titleWidth := inner - lipgloss.Width(badge) - 1
	title := titleStyle.Render(truncate(fmt.Sprintf("#%d  %s", a.ID, a.Description), titleWidth))
	gap := max(1, inner-lipgloss.Width(title)-lipgloss.Width(badge))
	top := title + strings.Repeat(" ", gap) + badge

	meta := mutedStyle.Render(truncate(fmt.Sprintf("%s · %s · %s → %s · %s",
		a.Responsible, a.Sector, formatDate(a.StartDate), formatDate(a.EndDate), a.Status), inner))

	follow := mutedStyle.Render("—")
	if a.FollowUp != "" {
		follow = truncate(a.FollowUp, inner)
	}

	progress := mutedStyle.Render("no sub-tasks")
	if p, ok := m.progress[plan.ActionKey(m.planID, a.ID)]; ok && p.Total > 0 {
		progress = progressBar(p, min(30, inner/3))
	}

	style := panelStyle.Padding(0, 2)
	if selected {
		style = activePanelStyle.Padding(0, 2)
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, top, meta, follow, progress))
}
