// Package integration runs the built todos binary end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// todosBin is the path to the built todos binary.
	todosBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the working directory to the go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv is an isolated config and data directory pair.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates a TestEnv whose config.yaml selects the sqlite backend.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build todos: %v", buildErr)
	}
	if todosBin == "" {
		t.Fatal("todos binary not built")
	}

	tempDir := t.TempDir()
	env := &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
	}
	if err := os.MkdirAll(env.Config, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "backend: sqlite\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(env.Config, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// CmdResult holds the result of a todos invocation.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *TestEnv) command(args ...string) *exec.Cmd {
	all := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(todosBin, all...)
	cmd.Env = append(os.Environ(), "TODOS_CONFIG_DIR=", "TODOS_DATA_DIR=", "TODOS_BACKEND=")
	return cmd
}

// Run executes todos with args and returns its output and exit code.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()

	cmd := e.command(args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			e.t.Fatalf("failed to run todos: %v", err)
		}
		code = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

// MustRun executes todos and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	res := e.Run(args...)
	if res.ExitCode != 0 {
		e.t.Fatalf("todos %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, res.ExitCode, res.Stdout, res.Stderr)
	}
	return res
}

// ParseJSON parses command output into T.
func ParseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", s, err)
	}
	return v
}

// freeAddr returns a loopback address with a currently unused port.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}
