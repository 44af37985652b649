package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sadopc/planboard/internal/ai"
)

// Settings keys.
const (
	KeyTheme           = "theme"
	KeySidebarExpanded = "sidebar_expanded"
	KeyAIProvider      = "ai_provider"
	KeyAIAPIKey        = "ai_api_key"
)

// KV is the key-value surface preferences are read from and written to.
type KV interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// LoadPreferences reads every preference key. A missing or unreadable key
// falls back to its default with a logged warning.
func LoadPreferences(kv KV, logger *slog.Logger) Preferences {
	p := DefaultPreferences()
	warn := func(key string, err error) {
		if logger != nil && !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("preference unavailable, using default", "key", key, "err", err)
		}
	}

	if v, err := kv.GetSetting(KeyTheme); err != nil {
		warn(KeyTheme, err)
	} else if t := Theme(v); t == ThemeLight || t == ThemeDark {
		p.Theme = t
	} else {
		warn(KeyTheme, fmt.Errorf("unknown theme %q", v))
	}

	if v, err := kv.GetSetting(KeySidebarExpanded); err != nil {
		warn(KeySidebarExpanded, err)
	} else if b, err := strconv.ParseBool(v); err != nil {
		warn(KeySidebarExpanded, err)
	} else {
		p.SidebarExpanded = b
	}

	if v, err := kv.GetSetting(KeyAIProvider); err != nil {
		warn(KeyAIProvider, err)
	} else if prov, err := ai.ParseProvider(v); err != nil {
		warn(KeyAIProvider, err)
	} else {
		p.Provider = prov
	}

	if v, err := kv.GetSetting(KeyAIAPIKey); err != nil {
		warn(KeyAIAPIKey, err)
	} else {
		p.APIKey = v
	}
	return p
}

// SavePreferences writes all preference keys. It stops at the first failure.
func SavePreferences(kv KV, p Preferences) error {
	pairs := []Setting{
		{KeyTheme, string(p.Theme)},
		{KeySidebarExpanded, strconv.FormatBool(p.SidebarExpanded)},
		{KeyAIProvider, string(p.Provider)},
		{KeyAIAPIKey, p.APIKey},
	}
	for _, set := range pairs {
		if err := kv.SetSetting(set.Key, set.Value); err != nil {
			return fmt.Errorf("save %s: %w", set.Key, err)
		}
	}
	return nil
}

// MaskKey shows only the last four characters of an API key.
func MaskKey(k string) string {
	if k == "" {
		return "not set"
	}
	r := []rune(k)
	if len(r) <= 4 {
		return strings.Repeat("•", len(r))
	}
	return strings.Repeat("•", 8) + string(r[len(r)-4:])
}
