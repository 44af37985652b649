package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/planboard/internal/ai"
	"github.com/sadopc/planboard/internal/store"
)

// prefFields backs the settings form; shared by pointer so the bound
// values survive value copies.
type prefFields struct {
	theme    string
	sidebar  bool
	provider string
	apiKey   string
}

type settingsModel struct {
	kv     store.KV
	width  int
	height int

	prefs      store.Preferences
	formActive bool
	form       *huh.Form
	fields     *prefFields
}

func newSettingsModel(kv store.KV, prefs store.Preferences) settingsModel {
	return settingsModel{
		kv:     kv,
		prefs:  prefs,
		fields: &prefFields{},
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

// savePrefsCmd persists p and reports the outcome.
func savePrefsCmd(kv store.KV, p store.Preferences) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{prefs: p, err: store.SavePreferences(kv, p)}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.fields = prefFields{
		theme:    string(s.prefs.Theme),
		sidebar:  s.prefs.SidebarExpanded,
		provider: string(s.prefs.Provider),
		apiKey:   s.prefs.APIKey,
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Light", string(store.ThemeLight)),
					huh.NewOption("Dark", string(store.ThemeDark)),
				).Value(&s.fields.theme),
			huh.NewConfirm().Title("Expand sidebar").
				Affirmative("Expanded").
				Negative("Collapsed").
				Value(&s.fields.sidebar),
		).Title("Appearance"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Provider").
				Options(
					huh.NewOption(ai.ProviderGemini.Label(), string(ai.ProviderGemini)),
					huh.NewOption(ai.ProviderGPT.Label(), string(ai.ProviderGPT)),
				).Value(&s.fields.provider),
			huh.NewInput().Title("API key").
				Description(keyHint(ai.Provider(s.fields.provider))).
				EchoMode(huh.EchoModePassword).
				Value(&s.fields.apiKey),
		).Title("Insight Assistant"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, savePrefsCmd(s.kv, s.fields.preferences())
	}

	return s, cmd
}

func (f *prefFields) preferences() store.Preferences {
	p := store.Preferences{
		Theme:           store.Theme(f.theme),
		SidebarExpanded: f.sidebar,
		APIKey:          strings.TrimSpace(f.apiKey),
	}
	if p.Theme != store.ThemeDark {
		p.Theme = store.ThemeLight
	}
	provider, err := ai.ParseProvider(f.provider)
	if err != nil {
		provider = ai.ProviderGemini
	}
	p.Provider = provider
	return p
}

func keyHint(p ai.Provider) string {
	if p == ai.ProviderGPT {
		return "Get a key at https://platform.openai.com/api-keys"
	}
	return "Get a key at https://makersuite.google.com/app/apikey"
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	sidebar := "collapsed"
	if s.prefs.SidebarExpanded {
		sidebar = "expanded"
	}
	keyValue := highlightStyle.Render(store.MaskKey(s.prefs.APIKey))
	if s.prefs.APIKey == "" {
		keyValue = warningStyle.Render(store.MaskKey(s.prefs.APIKey))
	}

	rows := []string{
		title, "",
		settingRow("Theme", highlightStyle.Render(string(s.prefs.Theme))),
		settingRow("Sidebar", highlightStyle.Render(sidebar)),
		settingRow("AI provider", highlightStyle.Render(s.prefs.Provider.Label())),
		settingRow("API key", keyValue),
		"",
		mutedStyle.Render("Press enter to edit settings  t: toggle theme  b: toggle sidebar"),
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(label), value)
}
