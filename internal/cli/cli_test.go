package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/planboard/internal/ai"
	"github.com/sadopc/planboard/internal/plan"
	"github.com/sadopc/planboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHTTP replays a canned provider response and records the request body.
type stubHTTP struct {
	status int
	body   string
	sent   []byte
}

func (s *stubHTTP) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		s.sent, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
	}, nil
}

type testDirs struct {
	root string
	db   string
	log  string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	return testDirs{
		root: root,
		db:   filepath.Join(root, "planboard.db"),
		log:  filepath.Join(root, "planboard.log"),
	}
}

// run executes the CLI against isolated config, database and log paths.
func run(t *testing.T, d testDirs, args ...string) (string, error) {
	t.Helper()
	base := []string{
		"--config", filepath.Join(d.root, "missing.yaml"),
		"--db", d.db,
		"--log-file", d.log,
		"--today", "2024-08-01",
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, base...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPlansCommand(t *testing.T) {
	d := newTestDirs(t)
	out, err := run(t, d, "plans")
	require.NoError(t, err)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "LATE")
	for _, id := range []string{"saude_ona", "sst_iso45001", "ambiental_iso14001"} {
		assert.Contains(t, out, id)
	}
}

func TestActionsCommandFiltersByStatus(t *testing.T) {
	d := newTestDirs(t)
	out, err := run(t, d, "actions", "--plan", "saude_ona", "--status", "late")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, "header plus two late actions")
	assert.Contains(t, out, string(plan.DelayLate))
	assert.NotContains(t, out, "Ana Lima")
}

func TestActionsCommandShowsTaskProgress(t *testing.T) {
	d := newTestDirs(t)
	out, err := run(t, d, "actions", "--plan", "saude_ona", "--query", "carlos")
	require.NoError(t, err)

	assert.Contains(t, out, "Carlos Souza")
	assert.Contains(t, out, "3/5")
	assert.NotContains(t, out, "Mariana")
}

func TestActionsCommandNoMatch(t *testing.T) {
	d := newTestDirs(t)
	out, err := run(t, d, "actions", "-q", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No actions in saude_ona match.")
}

func TestActionsCommandErrors(t *testing.T) {
	d := newTestDirs(t)

	_, err := run(t, d, "actions", "--plan", "nope")
	assert.ErrorIs(t, err, plan.ErrUnknownPlan)

	_, err = run(t, d, "actions", "--status", "overdue")
	assert.Error(t, err)
}

func TestInvalidToday(t *testing.T) {
	d := newTestDirs(t)
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"plans", "--db", d.db, "--log-file", d.log, "--config", filepath.Join(d.root, "c.yaml"), "--today", "01/08/2024"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--today")
}

func TestCustomRegistry(t *testing.T) {
	d := newTestDirs(t)
	data := filepath.Join(d.root, "plans.yaml")
	require.NoError(t, os.WriteFile(data, []byte(`
plans:
  - id: custom
    name: "Custom"
    code: "1"
    actions:
      - id: 1
        action: "Única ação"
        responsible: "Rita"
        sector: "TI"
        start_date: "2024-01-01"
        end_date: "2024-12-31"
        status: "Planejado"
`), 0o644))

	out, err := run(t, d, "plans", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "custom")
	assert.NotContains(t, out, "saude_ona")
}

func TestExportCommand(t *testing.T) {
	d := newTestDirs(t)

	csvPath := filepath.Join(d.root, "out.csv")
	out, err := run(t, d, "export", "--plan", "sst_iso45001", "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 actions")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ID,Ação,Responsável"))

	jsonPath := filepath.Join(d.root, "out.json")
	_, err = run(t, d, "export", "--format", "JSON", "--status", "done", "--out", jsonPath)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count": 1`)
}

func TestExportCommandRejectsFormat(t *testing.T) {
	d := newTestDirs(t)
	_, err := run(t, d, "export", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestAskWithoutKey(t *testing.T) {
	d := newTestDirs(t)
	_, err := run(t, d, "ask", "quem está atrasado?")
	assert.ErrorIs(t, err, ai.ErrMissingAPIKey)
}

func stubProvider(t *testing.T, s *stubHTTP) {
	t.Helper()
	orig := httpClientFunc
	httpClientFunc = func(time.Duration) ai.HTTPClient { return s }
	t.Cleanup(func() { httpClientFunc = orig })
}

func saveKey(t *testing.T, d testDirs, provider ai.Provider) {
	t.Helper()
	s, err := store.New(d.db)
	require.NoError(t, err)
	p := store.DefaultPreferences()
	p.Provider = provider
	p.APIKey = "test-key"
	require.NoError(t, store.SavePreferences(s, p))
	require.NoError(t, s.Close())
}

func TestAskUsesSavedPreferences(t *testing.T) {
	d := newTestDirs(t)
	saveKey(t, d, ai.ProviderGemini)
	stub := &stubHTTP{status: 200, body: `{"candidates":[{"content":{"parts":[{"text":"Duas ações atrasadas."}]}}]}`}
	stubProvider(t, stub)

	out, err := run(t, d, "ask", "--plan", "saude_ona", "quantas", "atrasadas?")
	require.NoError(t, err)
	assert.Equal(t, "Duas ações atrasadas.\n", out)

	sent := string(stub.sent)
	assert.Contains(t, sent, "Carlos Souza")
	assert.Contains(t, sent, "quantas atrasadas?")
}

func TestAskProviderOverrideAndFailure(t *testing.T) {
	d := newTestDirs(t)
	saveKey(t, d, ai.ProviderGemini)
	stub := &stubHTTP{status: 401, body: `{"error":{"message":"Incorrect API key provided"}}`}
	stubProvider(t, stub)

	_, err := run(t, d, "ask", "--provider", "gpt", "oi")
	var apiErr *ai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ai.ProviderGPT, apiErr.Provider)

	_, err = run(t, d, "ask", "--provider", "claude", "oi")
	assert.Error(t, err)
}

func TestLogsWrittenToFile(t *testing.T) {
	d := newTestDirs(t)
	_, err := run(t, d, "export", "--out", filepath.Join(d.root, "x.csv"))
	require.NoError(t, err)

	data, err := os.ReadFile(d.log)
	require.NoError(t, err)
	assert.Contains(t, string(data), "exported actions")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestOpenLoggerFallsBackToDiscard(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	logger, closer := openLogger(filepath.Join(blocker, "sub", "x.log"), "info")
	assert.NotNil(t, logger)
	assert.Nil(t, closer)
}

func TestSettingsCommandMasksKey(t *testing.T) {
	d := newTestDirs(t)
	saveKey(t, d, ai.ProviderGPT)

	out, err := run(t, d, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "ai_provider")
	assert.Contains(t, out, "gpt")
	assert.Contains(t, out, "••••••••-key")
	assert.NotContains(t, out, "test-key")
}

func TestConfigCommand(t *testing.T) {
	d := newTestDirs(t)
	out, err := run(t, d, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "db_path: "+d.db)
	assert.Contains(t, out, "gemini_model: gemini-pro")

	cfgPath := filepath.Join(d.root, "conf", "config.yaml")
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"config", "--init", "--config", cfgPath, "--db", d.db})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Wrote "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persist: true")

	cmd = newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"config", "--init", "--config", cfgPath})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
