package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planboard/internal/ai"
	"github.com/sadopc/planboard/internal/plan"
	"github.com/sadopc/planboard/internal/store"
	"github.com/sadopc/planboard/internal/tasks"
)

// viewState represents the currently active view.
type viewState int

const (
	viewActions viewState = iota
	viewCharts
	viewTasks
	viewAssistant
	viewSettings
)

var viewNames = []string{"Actions", "Charts", "Tasks", "Assistant", "Settings"}

// --- Messages ---

// Every async result names the plan it was requested for; results for a
// plan that is no longer selected are dropped.

type actionsLoadedMsg struct {
	planID  string
	actions []plan.ProcessedAction
	err     error
}

type taskListMsg struct {
	planID    string
	actionKey string
	tasks     []tasks.Task
	verb      string // "", "added", "updated", "deleted", "moved"
	err       error
}

type assistantReplyMsg struct {
	pending ai.Pending
	reply   string
	err     error
}

type prefsSavedMsg struct {
	prefs store.Preferences
	err   error
}

type selectActionMsg struct {
	action plan.ProcessedAction
}

// navigateMsg switches the active view. edit opens the view's form.
type navigateMsg struct {
	view viewState
	edit bool
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

// --- Helpers ---

// formatDate renders YYYY-MM-DD as DD/MM/YYYY.
func formatDate(s string) string {
	t, err := plan.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func progressBar(p tasks.Progress, width int) string {
	if width < 4 {
		width = 4
	}
	filled := p.Percentage * width / 100
	bar := lipgloss.NewStyle().Foreground(colorSuccess).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d/%d (%d%%)", bar, p.Completed, p.Total, p.Percentage)
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
