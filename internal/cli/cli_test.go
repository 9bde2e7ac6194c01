package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/todos/internal/memory"
	"github.com/mesh-intelligence/todos/internal/sqlite"
	"github.com/mesh-intelligence/todos/pkg/types"
)

type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	for _, name := range []string{"TODOS_CONFIG_DIR", "TODOS_DATA_DIR", "TODOS_BACKEND", "TODOS_LOG_LEVEL", "TODOS_SESSION_TTL", "TODOS_ADDR"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	return env{configDir: filepath.Join(dir, "config"), dataDir: filepath.Join(dir, "data")}
}

// exec runs the CLI with the env's directories and returns stdout, stderr
// and the exit code.
func (e env) exec(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(root, full, &errOut)
	return out.String(), errOut.String(), code
}

func seedSession(t *testing.T, dataDir, id string, updated time.Time) {
	t.Helper()
	b, err := sqlite.Open(dataDir)
	require.NoError(t, err)
	defer b.Close()

	s := types.NewSession(id)
	home := s.NewList("Home")
	require.NoError(t, home.Add(s.NewTodo("Buy milk", "")))
	require.NoError(t, s.AddList(home))
	s.Flash(types.SuccessMessage("The list has been created."))
	s.UpdatedAt = updated
	require.NoError(t, b.Save(context.Background(), s))
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, _, code := e.exec(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "todos v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)

	out, stderr, code := e.exec(t, "init")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "todos initialized successfully")
	assert.Contains(t, out, "wrote config.yaml")

	raw, err := os.ReadFile(filepath.Join(e.configDir, configFileExt))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, defaultSessionTTL.String(), cfg.SessionTTL)

	assert.FileExists(t, filepath.Join(e.dataDir, sqlite.DatabaseFile))

	// A second run keeps the existing file.
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("backend: sqlite\naddr: \":9000\"\n"), 0o644))
	out, _, code = e.exec(t, "init")
	require.Equal(t, exitSuccess, code)
	assert.NotContains(t, out, "wrote config.yaml")
	raw, err = os.ReadFile(filepath.Join(e.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(raw), ":9000")
}

func TestDecodeSettings(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, s settings)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, s settings) {
				assert.Equal(t, types.BackendSQLite, s.Backend)
				assert.Equal(t, defaultAddr, s.Addr)
				assert.Equal(t, defaultCookieName, s.CookieName)
				assert.Equal(t, defaultSessionTTL, s.SessionTTL)
				assert.Equal(t, slog.LevelInfo, s.LogLevel)
			},
		},
		{
			name: "explicit values",
			yaml: "backend: Memory\naddr: \":8080\"\ncookie_secure: true\nsession_ttl: 2h\nlog_level: debug\n",
			check: func(t *testing.T, s settings) {
				assert.Equal(t, types.BackendMemory, s.Backend)
				assert.Equal(t, ":8080", s.Addr)
				assert.True(t, s.CookieSecure)
				assert.Equal(t, 2*time.Hour, s.SessionTTL)
				assert.Equal(t, slog.LevelDebug, s.LogLevel)
			},
		},
		{name: "unknown backend", yaml: "backend: postgres\n", wantErr: true},
		{name: "bad log level", yaml: "log_level: loud\n", wantErr: true},
		{name: "negative ttl", yaml: "session_ttl: -1h\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			require.NoError(t, os.MkdirAll(e.configDir, 0o755))
			if tt.yaml != "" {
				require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(tt.yaml), 0o644))
			}
			v, err := loadConfig(e.configDir)
			require.NoError(t, err)
			s, err := decodeSettings(v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestEnvOverridesConfig(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("addr: \":1\"\n"), 0o644))
	t.Setenv("TODOS_ADDR", ":2")

	v, err := loadConfig(e.configDir)
	require.NoError(t, err)
	s, err := decodeSettings(v)
	require.NoError(t, err)
	assert.Equal(t, ":2", s.Addr)
}

func TestUnknownBackendIsUserError(t *testing.T) {
	e := newEnv(t)
	t.Setenv("TODOS_BACKEND", "postgres")
	_, stderr, code := e.exec(t, "sessions")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "unknown backend")
}

func TestSessionCommandsRejectMemoryBackend(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "sessions", args: []string{"sessions"}},
		{name: "show", args: []string{"show", "any-id"}},
		{name: "prune", args: []string{"prune"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			t.Setenv("TODOS_BACKEND", "memory")
			_, stderr, code := e.exec(t, tt.args...)
			assert.Equal(t, exitUserError, code)
			assert.Contains(t, stderr, "durable backend")
		})
	}
}

func TestShowAndSessions(t *testing.T) {
	e := newEnv(t)
	seedSession(t, e.dataDir, "sess-1", time.Now())

	out, stderr, code := e.exec(t, "show", "sess-1")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "session sess-1")
	assert.Contains(t, out, "#0 Home [open, 0/1]")
	assert.Contains(t, out, "[ ] Buy milk")
	assert.Contains(t, out, "pending success: The list has been created.")

	out, _, code = e.exec(t, "--json", "show", "sess-1")
	require.Equal(t, exitSuccess, code)
	var rec types.SessionRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "sess-1", rec.SessionID)
	require.Len(t, rec.Lists, 1)
	assert.Equal(t, "Home", rec.Lists[0].Name)

	_, stderr, code = e.exec(t, "show", "missing")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "not found")

	out, _, code = e.exec(t, "sessions")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "SESSION")
	assert.Contains(t, out, "sess-1")

	out, _, code = e.exec(t, "--json", "sessions")
	require.Equal(t, exitSuccess, code)
	var infos []types.SessionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].Lists)
}

func TestExportImport(t *testing.T) {
	src := newEnv(t)
	seedSession(t, src.dataDir, "sess-a", time.Now())
	seedSession(t, src.dataDir, "sess-b", time.Now())

	file := filepath.Join(t.TempDir(), "sessions.jsonl")
	out, stderr, code := src.exec(t, "export", file)
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "exported 2 session(s)")

	dst := newEnv(t)
	out, stderr, code = dst.exec(t, "import", file)
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "imported 2 session(s)")

	out, _, code = dst.exec(t, "show", "sess-b")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Buy milk")
}

func TestPrune(t *testing.T) {
	e := newEnv(t)
	seedSession(t, e.dataDir, "stale", time.Now().Add(-48*time.Hour))
	seedSession(t, e.dataDir, "fresh", time.Now())

	out, stderr, code := e.exec(t, "prune", "--older-than", "24h")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "pruned 1 session(s)")

	_, _, code = e.exec(t, "show", "stale")
	assert.Equal(t, exitUserError, code)
	_, _, code = e.exec(t, "show", "fresh")
	assert.Equal(t, exitSuccess, code)

	_, _, code = e.exec(t, "prune", "--older-than", "0s")
	assert.Equal(t, exitUserError, code)
}

func TestPruneLoop(t *testing.T) {
	store := memory.NewStore()
	s := types.NewSession("old")
	s.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Save(context.Background(), s))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pruneLoop(ctx, store, time.Minute, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	assert.Eventually(t, func() bool {
		infos, err := store.List(context.Background())
		return err == nil && len(infos) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestServeStopsOnCancel(t *testing.T) {
	rt := &runtime{
		settings: settings{
			Backend:    types.BackendMemory,
			Addr:       "127.0.0.1:0",
			CookieName: defaultCookieName,
			SessionTTL: time.Hour,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- rt.serve(ctx, time.Minute) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
