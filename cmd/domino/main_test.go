package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/domino"
	"github.com/aretw0/domino/internal/app"
	"github.com/aretw0/domino/internal/config"
	"github.com/aretw0/domino/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a snapshot directory and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--backend", "file", "--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, "domino %s", strings.Join(args, " "))
	return out
}

func TestCLI_Lifecycle(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "prefs\n", mustRun(t, dir, "new", "prefs", "theme=light", "size=1"))

	out := mustRun(t, dir, "set", "prefs", "theme=dark")
	assert.Contains(t, out, "prefs (modified)")
	assert.Contains(t, out, `theme = "dark"  (default "light")`)

	out = mustRun(t, dir, "inspect", "prefs", "-o", "json")
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, map[string]any{"theme": "dark"}, view["mutations"])

	out = mustRun(t, dir, "defaults", "prefs", "size=2")
	assert.Contains(t, out, "size = 2")

	out = mustRun(t, dir, "reset", "prefs", "theme")
	assert.Contains(t, out, "prefs (clean)")

	out = mustRun(t, dir, "reset", "prefs", "--clear")
	assert.Contains(t, out, "size = 1")

	assert.Equal(t, "prefs\n", mustRun(t, dir, "ls"))

	mustRun(t, dir, "rm", "prefs")
	assert.Empty(t, mustRun(t, dir, "ls"))
}

func TestCLI_NewGeneratesID(t *testing.T) {
	dir := t.TempDir()

	id := strings.TrimSpace(mustRun(t, dir, "new", "a=1"))

	assert.Len(t, id, 36)
	assert.Contains(t, mustRun(t, dir, "inspect", id), "a = 1")
}

func TestCLI_ResetAll(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "new", "x", "a=1", "b=2")
	mustRun(t, dir, "set", "x", "a=10", "b=20")

	out := mustRun(t, dir, "reset", "x")

	assert.Contains(t, out, "x (clean)")
	assert.Contains(t, out, "a = 1")
	assert.Contains(t, out, "b = 2")
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "inspect", "ghost")
	assert.Error(t, err)

	mustRun(t, dir, "new", "x")
	_, err = run(t, dir, "set", "x", "novalue")
	assert.Error(t, err)

	_, err = run(t, dir, "reset", "x", "a", "--clear")
	assert.Error(t, err)

	_, err = run(t, dir, "inspect", "x", "-o", "toml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, dir, "--backend", "tape", "ls")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestCLI_Version(t *testing.T) {
	out := mustRun(t, t.TempDir(), "version")

	assert.Equal(t, "domino version "+domino.Version+"\n", out)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	a, err := app.New(cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	handler, err := a.Handler()
	require.NoError(t, err)
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: handler}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	cmd := newServeCmd(&rootOptions{})
	cmd.SetErr(&bytes.Buffer{})
	go func() { done <- serve(ctx, cmd, a, srv) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return")
	}
}

func TestServe_HandlerServesHealth(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	a, err := app.New(cfg, logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	handler, err := a.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
