package integration

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// TestMain builds the todos binary once before running tests.
func TestMain(m *testing.M) {
	root, err := FindProjectRoot()
	if err != nil {
		buildErr = err
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "todos-test-*")
	if err != nil {
		buildErr = err
		os.Exit(1)
	}
	todosBin = filepath.Join(tmpDir, "todos")

	cmd := exec.Command("go", "build", "-o", todosBin, "./cmd/todos")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Err: err, Output: string(out)}
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestInitAndVersion(t *testing.T) {
	env := NewTestEnv(t)

	res := env.MustRun("version")
	assert.Contains(t, res.Stdout, "todos v")

	res = env.MustRun("init")
	assert.Contains(t, res.Stdout, "todos initialized successfully")
	assert.FileExists(t, filepath.Join(env.DataDir, "todos.db"))
}

func TestServeRoundTrip(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("init")

	addr := freeAddr(t)
	server := env.command("serve", "--addr", addr)
	require.NoError(t, server.Start())
	t.Cleanup(func() { _ = server.Process.Kill() })

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar, Timeout: 5 * time.Second}
	base := "http://" + addr

	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/lists")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond, "server did not come up")

	resp, err := client.PostForm(base+"/lists", url.Values{"list_name": {"Groceries"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.PostForm(base+"/lists/0/todos", url.Values{"todo": {"Buy milk"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	u, err := url.Parse(base)
	require.NoError(t, err)
	var sessionID string
	for _, c := range jar.Cookies(u) {
		if c.Name == "todos_session" {
			sessionID = c.Value
		}
	}
	require.NotEmpty(t, sessionID)

	require.NoError(t, server.Process.Signal(os.Interrupt))
	done := make(chan error, 1)
	go func() { done <- server.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}

	res := env.MustRun("--json", "show", sessionID)
	rec := ParseJSON[types.SessionRecord](t, res.Stdout)
	require.Len(t, rec.Lists, 1)
	assert.Equal(t, "Groceries", rec.Lists[0].Name)
	require.Len(t, rec.Lists[0].Todos, 1)
	assert.Equal(t, "Buy milk", rec.Lists[0].Todos[0].Name)

	export := filepath.Join(env.TempDir, "sessions.jsonl")
	res = env.MustRun("export", export)
	assert.Contains(t, res.Stdout, "exported 1 session(s)")
	raw, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), sessionID))
}
