package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planboard/internal/ai"
	"github.com/sadopc/planboard/internal/export"
	"github.com/sadopc/planboard/internal/plan"
	"github.com/sadopc/planboard/internal/store"
	"github.com/sadopc/planboard/internal/tasks"
)

const (
	sidebarExpandedWidth  = 28
	sidebarCollapsedWidth = 5
)

// Deps are the services the dashboard runs against.
type Deps struct {
	Registry     *plan.Registry
	Tasks        *tasks.Store
	Settings     store.KV
	Conversation *ai.Conversation
	// NewClient builds the assistant client from the current preferences.
	NewClient      func(store.Preferences) (ai.Client, error)
	Now            func() time.Time
	RequestTimeout time.Duration
	ExportDir      string
	Logger         *slog.Logger
	// InitialPlan selects the plan shown first; empty means the first plan.
	InitialPlan string
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	deps   Deps
	logger *slog.Logger
	width  int
	height int

	plans   []plan.Plan
	planIdx int
	prefs   store.Preferences

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	actions   actionsModel
	charts    chartsModel
	tasks     tasksModel
	assistant assistantModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(ctx context.Context, deps Deps) App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Conversation == nil {
		deps.Conversation = ai.NewConversation(deps.Logger)
	}
	if deps.NewClient == nil {
		deps.NewClient = func(store.Preferences) (ai.Client, error) { return nil, ai.ErrMissingAPIKey }
	}

	prefs := store.LoadPreferences(deps.Settings, deps.Logger)
	applyTheme(prefs.Theme)

	h := help.New()
	h.ShowAll = false

	a := App{
		ctx:        ctx,
		deps:       deps,
		logger:     deps.Logger,
		plans:      deps.Registry.Plans(),
		prefs:      prefs,
		activeView: viewActions,
		actions:    newActionsModel(),
		charts:     newChartsModel(),
		tasks:      newTasksModel(ctx, deps.Tasks),
		assistant:  newAssistantModel(ctx, deps.Conversation, deps.NewClient, deps.RequestTimeout),
		settings:   newSettingsModel(deps.Settings, prefs),
		help:       h,
	}
	a.assistant.setPrefs(prefs)

	for i, p := range a.plans {
		if p.ID == deps.InitialPlan {
			a.planIdx = i
		}
	}
	a.actions.reset(a.planID())
	return a
}

func (a App) Init() tea.Cmd {
	return a.loadActions()
}

func (a App) planID() string {
	if len(a.plans) == 0 {
		return ""
	}
	return a.plans[a.planIdx].ID
}

func (a App) currentPlan() (plan.Plan, bool) {
	if len(a.plans) == 0 {
		return plan.Plan{}, false
	}
	return a.plans[a.planIdx], true
}

func loadActionsCmd(r *plan.Registry, planID string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		actions, err := plan.Process(r.Actions(planID), now)
		return actionsLoadedMsg{planID: planID, actions: actions, err: err}
	}
}

func (a App) loadActions() tea.Cmd {
	return loadActionsCmd(a.deps.Registry, a.planID(), a.deps.Now())
}

// selectPlan switches to plan i and starts loading its actions.
func (a App) selectPlan(i int) (App, tea.Cmd) {
	if len(a.plans) == 0 {
		return a, nil
	}
	a.planIdx = (i + len(a.plans)) % len(a.plans)
	a.actions.reset(a.planID())
	a.charts.setActions(nil)
	a.assistant.setActions(nil)
	a.tasks.clear()
	if a.activeView == viewTasks {
		a.activeView = viewActions
	}
	a.logger.Debug("plan selected", "plan", a.planID())
	return a, a.loadActions()
}

// loadProgress fetches the sub-tasks of every action for the card progress bars.
func (a App) loadProgress(actions []plan.ProcessedAction) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(actions))
	for _, act := range actions {
		cmds = append(cmds, loadTasksCmd(a.ctx, a.deps.Tasks, a.planID(), plan.ActionKey(a.planID(), act.ID)))
	}
	return tea.Batch(cmds...)
}

func (a App) setPrefs(p store.Preferences) App {
	a.prefs = p
	applyTheme(p.Theme)
	a.settings.prefs = p
	a.assistant.setPrefs(p)
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a = a.resize()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.PrevPlan):
			return a.selectPlan(a.planIdx - 1)
		case key.Matches(msg, keys.NextPlan):
			return a.selectPlan(a.planIdx + 1)
		case key.Matches(msg, keys.Sidebar):
			p := a.prefs
			p.SidebarExpanded = !p.SidebarExpanded
			a = a.setPrefs(p).resize()
			return a, savePrefsCmd(a.deps.Settings, p)
		case key.Matches(msg, keys.Theme):
			p := a.prefs
			p.Theme = p.Theme.Toggle()
			a = a.setPrefs(p)
			return a, savePrefsCmd(a.deps.Settings, p)
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewActions)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewCharts)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewTasks)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewAssistant)
		case key.Matches(msg, keys.Tab5):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case actionsLoadedMsg:
		if msg.planID != a.planID() {
			a.logger.Debug("dropping stale actions", "plan", msg.planID)
			return a, nil
		}
		if msg.err != nil {
			a.logger.Error("load actions", "plan", msg.planID, "err", msg.err)
		}
		a.actions.setActions(msg.actions, msg.err)
		a.charts.setActions(msg.actions)
		a.assistant.setActions(msg.actions)
		return a, a.loadProgress(msg.actions)

	case taskListMsg:
		if msg.planID != a.planID() {
			return a, nil
		}
		if msg.err != nil && msg.verb == "" {
			a.logger.Warn("load tasks", "action", msg.actionKey, "err", msg.err)
		} else {
			a.actions.setProgress(msg.actionKey, tasks.ComputeProgress(msg.tasks))
		}
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.apply(msg)
		return a, cmd

	case selectActionMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.open(a.planID(), msg.action)
		a.activeView = viewTasks
		return a, cmd

	case navigateMsg:
		a.activeView = msg.view
		if msg.view == viewSettings && msg.edit {
			var cmd tea.Cmd
			a.settings, cmd = a.settings.showForm()
			return a, cmd
		}
		return a, nil

	case prefsSavedMsg:
		if msg.err != nil {
			a.logger.Error("save preferences", "err", msg.err)
			a.status, a.statusErr = fmt.Sprintf("Could not save settings: %v", msg.err), true
			return a, nil
		}
		a = a.setPrefs(msg.prefs).resize()
		a.status, a.statusErr = "Settings saved", false
		return a, nil

	case assistantReplyMsg, spinner.TickMsg:
		// The assistant keeps working while another view is active.
		var cmd tea.Cmd
		a.assistant, cmd = a.assistant.update(msg)
		return a, cmd

	case statusMsg:
		a.status, a.statusErr = msg.text, msg.isError
		if msg.isError {
			a.logger.Warn(msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (App, tea.Cmd) {
	a.activeView = v
	if v == viewAssistant {
		cmd := a.assistant.focus()
		return a, cmd
	}
	return a, nil
}

func (a App) resize() App {
	w := a.contentWidth()
	h := a.height - 6 // header + footer
	a.actions.setSize(w, h)
	a.charts.setSize(w, h)
	a.tasks.setSize(w, h)
	a.assistant.setSize(w, h)
	a.settings.setSize(w, h)
	return a
}

func (a App) sidebarWidth() int {
	if a.prefs.SidebarExpanded {
		return sidebarExpandedWidth
	}
	return sidebarCollapsedWidth
}

func (a App) contentWidth() int {
	return max(20, a.width-a.sidebarWidth())
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewActions:
		a.actions, cmd = a.actions.update(msg)
	case viewCharts:
		a.charts, cmd = a.charts.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewAssistant:
		a.assistant, cmd = a.assistant.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewActions:
		return a.actions.searching
	case viewTasks:
		return a.tasks.formActive || a.tasks.confirmDelete
	case viewAssistant:
		return a.assistant.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewActions:
		content = a.actions.view()
	case viewCharts:
		content = a.charts.view()
	case viewTasks:
		content = a.tasks.view()
	case viewAssistant:
		content = a.assistant.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.contentWidth()).
		Height(contentHeight).
		Render(content)

	sidebar := a.renderSidebar(contentHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func planIcon(icon string) string {
	switch icon {
	case "target":
		return "◎"
	case "shield":
		return "◈"
	case "leaf":
		return "✿"
	}
	return "•"
}

func (a App) renderSidebar(height int) string {
	var rows []string
	if a.prefs.SidebarExpanded {
		rows = append(rows, subtitleStyle.Render("PLANS"), "")
	} else {
		rows = append(rows, "", "")
	}

	for i, p := range a.plans {
		style := normalItemStyle
		marker := " "
		if i == a.planIdx {
			style = selectedItemStyle
			marker = "▌"
		}
		label := planIcon(p.Icon)
		if a.prefs.SidebarExpanded {
			label += " " + truncate(p.Name, sidebarExpandedWidth-7)
		}
		rows = append(rows, style.Render(marker+label))
	}

	if a.prefs.SidebarExpanded {
		rows = append(rows, "", mutedStyle.Render("[ ] switch  b hide"))
	}

	return sidebarStyle.
		Width(a.sidebarWidth() - 1).
		Height(height).
		Render(strings.Join(rows, "\n"))
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("planboard")
	if p, ok := a.currentPlan(); ok {
		title = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render(p.Name)+mutedStyle.Render("  "+p.Code),
			subtitleStyle.Render(p.Subtitle),
		)
	}
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	busy := ""
	if a.deps.Conversation.Busy() && a.activeView != viewAssistant {
		busy = a.assistant.spinner.View() + mutedStyle.Render(" assistant ")
	}
	if a.actions.loading {
		busy += mutedStyle.Render(" loading… ")
	}

	left := footerStyle.Render(helpView)
	right := busy + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("%d visible actions", len(a.actions.visible))))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.contentWidth() - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the currently visible actions of the selected plan.
func (a App) doExport(format int) tea.Cmd {
	p, ok := a.currentPlan()
	if !ok {
		return nil
	}
	actions := a.actions.visible
	dir := a.deps.ExportDir
	now := a.deps.Now()

	return func() tea.Msg {
		dateStr := now.Format("2006-01-02")
		base := filepath.Join(dir, fmt.Sprintf("planboard-%s-%s", p.ID, dateStr))

		var path string
		if format == 0 {
			path = base + ".csv"
			if err := export.ToCSV(actions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = base + ".json"
			if err := export.ToJSON(p, actions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
