package store

import "github.com/sadopc/planboard/internal/ai"

type Setting struct {
	Key   string
	Value string
}

// Theme is the dashboard color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preferences are the user-facing settings persisted across sessions.
type Preferences struct {
	Theme           Theme
	SidebarExpanded bool
	Provider        ai.Provider
	APIKey          string
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:           ThemeLight,
		SidebarExpanded: true,
		Provider:        ai.ProviderGemini,
	}
}
