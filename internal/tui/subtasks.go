package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planboard/internal/plan"
	"github.com/sadopc/planboard/internal/tasks"
)

// taskFields backs the task form. It is shared by pointer so huh's bound
// values survive value copies of the model.
type taskFields struct {
	description string
	responsible string
	sector      string
	status      string
	startDate   string
	endDate     string
	followUp    string
}

func (f *taskFields) draft() tasks.Draft {
	return tasks.Draft{
		Description: f.description,
		Responsible: f.responsible,
		Sector:      f.sector,
		Status:      tasks.SubStatus(f.status),
		StartDate:   f.startDate,
		EndDate:     f.endDate,
		FollowUp:    f.followUp,
	}
}

func (f *taskFields) load(t tasks.Task) {
	f.description = t.Description
	f.responsible = t.Responsible
	f.sector = t.Sector
	f.status = string(t.Status)
	f.startDate = t.StartDate
	f.endDate = t.EndDate
	f.followUp = t.FollowUp
}

type tasksModel struct {
	ctx    context.Context
	store  *tasks.Store
	width  int
	height int

	planID    string
	action    plan.ProcessedAction
	actionKey string
	list      []tasks.Task
	cursor    int
	loading   bool
	loaded    bool // a load of actionKey has succeeded
	busy      bool
	err       error

	confirmDelete bool

	formActive bool
	form       *huh.Form
	fields     *taskFields
	editingID  string // empty when adding
	formErrors map[tasks.Field]string
}

func newTasksModel(ctx context.Context, s *tasks.Store) tasksModel {
	return tasksModel{
		ctx:    ctx,
		store:  s,
		fields: &taskFields{},
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) hasAction() bool { return m.actionKey != "" }

func (m tasksModel) bounds() tasks.DateRange {
	return tasks.DateRange{Start: m.action.StartDate, End: m.action.EndDate}
}

// open selects the action whose tasks are shown and starts loading them.
func (m tasksModel) open(planID string, a plan.ProcessedAction) (tasksModel, tea.Cmd) {
	m.planID = planID
	m.action = a
	m.actionKey = plan.ActionKey(planID, a.ID)
	m.list = nil
	m.cursor = 0
	m.loading = true
	m.loaded = false
	m.err = nil
	m.confirmDelete = false
	m.closeForm()
	return m, loadTasksCmd(m.ctx, m.store, planID, m.actionKey)
}

// clear drops the selection, e.g. when another plan is selected.
func (m *tasksModel) clear() {
	m.planID = ""
	m.actionKey = ""
	m.list = nil
	m.loading = false
	m.loaded = false
	m.busy = false
	m.confirmDelete = false
	m.closeForm()
}

func (m *tasksModel) closeForm() {
	m.formActive = false
	m.form = nil
	m.formErrors = nil
}

func loadTasksCmd(ctx context.Context, s *tasks.Store, planID, actionKey string) tea.Cmd {
	return func() tea.Msg {
		list, err := s.Load(ctx, actionKey)
		return taskListMsg{planID: planID, actionKey: actionKey, tasks: list, err: err}
	}
}

// mutate runs fn against the store and reports the resulting list.
func (m tasksModel) mutate(verb string, fn func(ctx context.Context) error) tea.Cmd {
	ctx, s, planID, actionKey := m.ctx, m.store, m.planID, m.actionKey
	return func() tea.Msg {
		err := fn(ctx)
		return taskListMsg{planID: planID, actionKey: actionKey, tasks: s.List(actionKey), verb: verb, err: err}
	}
}

// apply installs a list result. Results for another action are ignored.
func (m tasksModel) apply(msg taskListMsg) (tasksModel, tea.Cmd) {
	if msg.actionKey != m.actionKey {
		return m, nil
	}
	m.loading = false
	m.busy = false

	var verr *tasks.ValidationError
	if errors.As(msg.err, &verr) {
		// The store rejected the submission; reopen the form with its errors.
		m.list = msg.tasks
		return m.showForm(verr.Fields)
	}
	if msg.err != nil {
		m.err = msg.err
		if msg.verb == "" {
			return m, nil
		}
		return m, statusCmd(fmt.Sprintf("Could not save task: %v", msg.err), true)
	}

	m.err = nil
	m.list = msg.tasks
	m.cursor = clampCursor(m.cursor, len(m.list))
	if msg.verb == "" {
		m.loaded = true
	}
	if msg.verb != "" {
		return m, statusCmd("Task "+msg.verb, false)
	}
	return m, nil
}

func (m tasksModel) selectedTask() (tasks.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.list) {
		return tasks.Task{}, false
	}
	return m.list[m.cursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirmDelete {
		switch keyMsg.String() {
		case "y", "Y":
			m.confirmDelete = false
			return m.deleteSelected()
		default:
			m.confirmDelete = false
		}
		return m, nil
	}

	if key.Matches(keyMsg, keys.Back) {
		return m, func() tea.Msg { return navigateMsg{view: viewActions} }
	}
	// Until the list is loaded there is nothing to edit against.
	if !m.hasAction() || m.busy || !m.loaded {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		m.editingID = ""
		*m.fields = taskFields{
			status:    string(tasks.SubNotStarted),
			startDate: m.action.StartDate,
			endDate:   m.action.EndDate,
		}
		return m.showForm(nil)
	case key.Matches(keyMsg, keys.Edit), key.Matches(keyMsg, keys.Enter):
		if t, ok := m.selectedTask(); ok {
			m.editingID = t.ID
			m.fields.load(t)
			return m.showForm(nil)
		}
	case key.Matches(keyMsg, keys.Delete):
		if _, ok := m.selectedTask(); ok {
			m.confirmDelete = true
		}
	case key.Matches(keyMsg, keys.CycleStatus):
		if t, ok := m.selectedTask(); ok {
			next := t.Status.Next()
			m.busy = true
			return m, m.mutate("updated", func(ctx context.Context) error {
				_, err := m.store.Update(ctx, t.ID, tasks.Patch{Status: &next})
				return err
			})
		}
	case key.Matches(keyMsg, keys.MoveUp):
		return m.move(-1)
	case key.Matches(keyMsg, keys.MoveDown):
		return m.move(1)
	}
	return m, nil
}

func (m tasksModel) move(delta int) (tasksModel, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	target := clampCursor(m.cursor+delta, len(m.list))
	if target == m.cursor {
		return m, nil
	}
	m.cursor = target
	m.busy = true
	return m, m.mutate("moved", func(ctx context.Context) error {
		_, err := m.store.Reorder(ctx, t.ID, target)
		return err
	})
}

func (m tasksModel) deleteSelected() (tasksModel, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	m.busy = true
	return m, m.mutate("deleted", func(ctx context.Context) error {
		return m.store.Delete(ctx, t.ID)
	})
}

// validator reports the first rule failing for field, using the rest of
// the form as context so cross-field rules apply while typing.
func (m tasksModel) validator(field tasks.Field) func(string) error {
	fields, bounds := m.fields, m.bounds()
	return func(v string) error {
		d := fields.draft()
		switch field {
		case tasks.FieldDescription:
			d.Description = v
		case tasks.FieldResponsible:
			d.Responsible = v
		case tasks.FieldSector:
			d.Sector = v
		case tasks.FieldStartDate:
			d.StartDate = v
		case tasks.FieldEndDate:
			d.EndDate = v
		}
		_, err := tasks.Validate(d, bounds)
		var verr *tasks.ValidationError
		if errors.As(err, &verr) {
			if msg, ok := verr.Fields[field]; ok {
				return errors.New(msg)
			}
		}
		return nil
	}
}

func (m tasksModel) showForm(errs map[tasks.Field]string) (tasksModel, tea.Cmd) {
	statusOptions := make([]huh.Option[string], len(tasks.SubStatuses))
	for i, s := range tasks.SubStatuses {
		statusOptions[i] = huh.NewOption(string(s), string(s))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").
				CharLimit(tasks.MaxDescriptionLen).
				Value(&m.fields.description).
				Validate(m.validator(tasks.FieldDescription)),
			huh.NewInput().Title("Responsible").
				CharLimit(tasks.MaxResponsibleLen).
				Value(&m.fields.responsible).
				Validate(m.validator(tasks.FieldResponsible)),
			huh.NewInput().Title("Sector").
				CharLimit(tasks.MaxSectorLen).
				Value(&m.fields.sector).
				Validate(m.validator(tasks.FieldSector)),
			huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(&m.fields.status),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start date").
				Description(fmt.Sprintf("YYYY-MM-DD, from %s", m.action.StartDate)).
				Value(&m.fields.startDate).
				Validate(m.validator(tasks.FieldStartDate)),
			huh.NewInput().Title("End date").
				Description(fmt.Sprintf("YYYY-MM-DD, until %s", m.action.EndDate)).
				Value(&m.fields.endDate).
				Validate(m.validator(tasks.FieldEndDate)),
			huh.NewText().Title("Follow-up").Value(&m.fields.followUp),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formErrors = errs
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.closeForm()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.closeForm()
		return m.submit()
	}
	return m, cmd
}

func (m tasksModel) submit() (tasksModel, tea.Cmd) {
	d := m.fields.draft()
	m.busy = true

	if m.editingID == "" {
		actionKey, bounds := m.actionKey, m.bounds()
		return m, m.mutate("added", func(ctx context.Context) error {
			_, err := m.store.Add(ctx, actionKey, bounds, d)
			return err
		})
	}

	// Bounds are checked here since Update only knows the task itself.
	if _, err := tasks.Validate(d, m.bounds()); err != nil {
		m.busy = false
		var verr *tasks.ValidationError
		if errors.As(err, &verr) {
			return m.showForm(verr.Fields)
		}
		return m, statusCmd(err.Error(), true)
	}
	id := m.editingID
	patch := tasks.Patch{
		Description: &d.Description,
		Responsible: &d.Responsible,
		Sector:      &d.Sector,
		Status:      &d.Status,
		StartDate:   &d.StartDate,
		EndDate:     &d.EndDate,
		FollowUp:    &d.FollowUp,
	}
	return m, m.mutate("updated", func(ctx context.Context) error {
		_, err := m.store.Update(ctx, id, patch)
		return err
	})
}

func (m tasksModel) view() string {
	w := m.width - 4

	if !m.hasAction() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Tasks"), "",
			mutedStyle.Render("Select an action in the Actions view (1) and press enter."),
		))
	}

	header := titleStyle.Render(truncate(fmt.Sprintf("#%d  %s", m.action.ID, m.action.Description), w-8))
	window := mutedStyle.Render(fmt.Sprintf("%s → %s  ", formatDate(m.action.StartDate), formatDate(m.action.EndDate))) +
		delayBadge(m.action.DelayStatus)

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		rows := []string{header, window, "", title}
		for _, f := range []tasks.Field{tasks.FieldDescription, tasks.FieldResponsible, tasks.FieldSector,
			tasks.FieldStatus, tasks.FieldStartDate, tasks.FieldEndDate} {
			if msg, ok := m.formErrors[f]; ok {
				rows = append(rows, errorStyle.Render("  ✗ "+msg))
			}
		}
		rows = append(rows, "", m.form.View())
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows := []string{header, window, progressBar(tasks.ComputeProgress(m.list), 30), ""}

	switch {
	case m.loading && len(m.list) == 0:
		rows = append(rows, mutedStyle.Render("Loading tasks…"))
	case m.err != nil && len(m.list) == 0:
		rows = append(rows, errorStyle.Render("Could not load tasks: "+m.err.Error()))
	case len(m.list) == 0:
		rows = append(rows, mutedStyle.Render("No tasks. Press n to add one."))
	default:
		rows = append(rows, m.renderList(w)...)
	}

	rows = append(rows, "")
	switch {
	case m.confirmDelete:
		t, _ := m.selectedTask()
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  Delete %q? y: confirm  any key: cancel", truncate(t.Description, 40))))
	case m.busy:
		rows = append(rows, mutedStyle.Render("  Saving…"))
	default:
		rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  space: status  K/J: move  esc: back"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderList(w int) []string {
	var rows []string
	for i, t := range m.list {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%s %d. %s", cursor, statusGlyph(t.Status), t.Order+1, truncate(t.Description, max(10, w-60)))
		meta := mutedStyle.Render(fmt.Sprintf("  %s · %s · %s → %s · %s",
			truncate(t.Responsible, 18), truncate(t.Sector, 16), formatDate(t.StartDate), formatDate(t.EndDate), t.Status))
		rows = append(rows, style.Render(line)+meta)
	}
	return rows
}

func statusGlyph(s tasks.SubStatus) string {
	switch s {
	case tasks.SubDone:
		return successStyle.Render("●")
	case tasks.SubInProgress:
		return warningStyle.Render("◐")
	}
	return mutedStyle.Render("○")
}
