package tui

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// fault is shared across copies of Root so a panic caught in View is seen
// by the next Update.
type fault struct {
	err error
}

// Root wraps App and replaces it with a recovery screen when Update or
// View panics.
type Root struct {
	ctx    context.Context
	deps   Deps
	app    App
	fault  *fault
	width  int
	height int
}

func NewRoot(ctx context.Context, deps Deps) Root {
	return Root{
		ctx:   ctx,
		deps:  deps,
		app:   NewApp(ctx, deps),
		fault: &fault{},
	}
}

// Run starts the dashboard and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewRoot(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (r Root) Init() tea.Cmd {
	return r.app.Init()
}

func (r Root) crashed() bool {
	return r.fault.err != nil
}

func (r Root) record(v any) {
	r.fault.err = fmt.Errorf("%v", v)
	if r.app.logger != nil {
		r.app.logger.Error("dashboard crashed", "err", r.fault.err, "stack", string(debug.Stack()))
	}
}

func (r Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		r.width, r.height = ws.Width, ws.Height
	}
	if r.crashed() {
		return r.updateRecovery(msg)
	}

	defer func() {
		if v := recover(); v != nil {
			r.record(v)
			model, cmd = r, nil
		}
	}()

	var next tea.Model
	next, cmd = r.app.Update(msg)
	r.app = next.(App)
	return r, cmd
}

func (r Root) updateRecovery(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Quit):
		return r, tea.Quit
	case key.Matches(keyMsg, keys.Reload):
		return r.rebuild(r.app.planID())
	case key.Matches(keyMsg, keys.Home):
		return r.rebuild("")
	}
	return r, nil
}

// rebuild starts a fresh App showing planID, or the first plan when empty.
func (r Root) rebuild(planID string) (tea.Model, tea.Cmd) {
	deps := r.deps
	deps.InitialPlan = planID
	r.fault = &fault{}
	r.app = NewApp(r.ctx, deps)
	if r.width > 0 {
		next, _ := r.app.Update(tea.WindowSizeMsg{Width: r.width, Height: r.height})
		r.app = next.(App)
	}
	return r, r.app.Init()
}

func (r Root) View() (out string) {
	if r.crashed() {
		return r.recoveryView()
	}
	defer func() {
		if v := recover(); v != nil {
			r.record(v)
			out = r.recoveryView()
		}
	}()
	return r.app.View()
}

func (r Root) recoveryView() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Bold(true).Render("Oops! Something went wrong"),
		"",
		mutedStyle.Render(r.fault.err.Error()),
		"",
		"r: reload  h: home  q: quit",
	)
	panel := activePanelStyle.Render(body)
	if r.width == 0 {
		return panel
	}
	return lipgloss.Place(r.width, r.height, lipgloss.Center, lipgloss.Center, panel)
}
