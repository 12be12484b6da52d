package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/domino/internal/adapters/file"
	httpAdapter "github.com/aretw0/domino/internal/adapters/http"
	"github.com/aretw0/domino/pkg/adapters/memory"
	"github.com/aretw0/domino/pkg/adapters/redis"
	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/eventbus"
	"github.com/aretw0/domino/pkg/ports"
	"github.com/aretw0/domino/pkg/session"
	"github.com/aretw0/domino/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...httpAdapter.Option) (*httptest.Server, *session.Manager) {
	t.Helper()
	manager := session.NewManager(memory.NewStore())
	srv := httptest.NewServer(httpAdapter.NewHandler(manager, opts...))
	t.Cleanup(srv.Close)
	return srv, manager
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestServer_Lifecycle(t *testing.T) {
	srv, _ := newServer(t)
	base := srv.URL + "/dominoes"

	resp, view := do(t, http.MethodPost, base, `{"id":"prefs","defaults":{"theme":"light","size":1}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "prefs", view["id"])
	assert.Equal(t, false, view["is_modified"])

	resp, view = do(t, http.MethodPatch, base+"/prefs", `{"values":{"theme":"dark"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", view["values"].(map[string]any)["theme"])
	assert.Equal(t, map[string]any{"theme": "dark"}, view["mutations"])
	assert.Equal(t, true, view["is_modified"])

	resp, view = do(t, http.MethodPut, base+"/prefs/defaults", `{"values":{"size":2}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, view["defaults"].(map[string]any)["size"])

	resp, view = do(t, http.MethodDelete, base+"/prefs/fields/theme", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "light", view["values"].(map[string]any)["theme"])
	assert.Equal(t, false, view["is_modified"])

	resp, view = do(t, http.MethodPost, base+"/prefs/clear", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, view["defaults"].(map[string]any)["size"])

	resp, _ = do(t, http.MethodDelete, base+"/prefs", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, base+"/prefs", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Reset(t *testing.T) {
	srv, _ := newServer(t)
	base := srv.URL + "/dominoes"

	do(t, http.MethodPost, base, `{"id":"c","defaults":{"count":0}}`)
	do(t, http.MethodPatch, base+"/c", `{"values":{"count":5}}`)

	resp, view := do(t, http.MethodPost, base+"/c/reset", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, view["values"].(map[string]any)["count"])
	assert.Empty(t, view["mutations"])
}

func TestServer_CreateGeneratesID(t *testing.T) {
	srv, _ := newServer(t, httpAdapter.WithIDGenerator(func() string { return "generated" }))

	resp, view := do(t, http.MethodPost, srv.URL+"/dominoes", `{"defaults":{"a":1}}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "generated", view["id"])
}

func TestServer_BadRequest(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/dominoes", `{not json`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid request body")
}

func TestServer_RejectedIDsAreBadRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	rs := redis.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rs.Close() })

	stores := map[string]ports.SnapshotStore{
		"file":  file.New(t.TempDir()),
		"redis": rs,
	}
	ids := map[string]string{
		"file":  "..",
		"redis": "index",
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(httpAdapter.NewHandler(session.NewManager(store)))
			defer srv.Close()

			resp, body := do(t, http.MethodPost, srv.URL+"/dominoes", `{"id":"`+ids[name]+`","defaults":{}}`)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body["error"], "invalid domino id")
		})
	}
}

func TestServer_UpdateMissing(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := do(t, http.MethodPatch, srv.URL+"/dominoes/ghost", `{"values":{"a":1}}`)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListUsesCache(t *testing.T) {
	w, err := storage.New("test", storage.NewMemoryBackend())
	require.NoError(t, err)
	cache := storage.NewKeyCache(w, "ids", storage.MaxAge[[]string](time.Hour))
	srv, manager := newServer(t, httpAdapter.WithListCache(cache))
	base := srv.URL + "/dominoes"

	do(t, http.MethodPost, base, `{"id":"b","defaults":{}}`)
	do(t, http.MethodPost, base, `{"id":"a","defaults":{}}`)

	resp, body := do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"a", "b"}, body["ids"])

	// Writes that bypass the server are not visible until the entry expires.
	_, err = manager.LoadOrCreate(context.Background(), "c", nil)
	require.NoError(t, err)
	_, body = do(t, http.MethodGet, base, "")
	assert.Equal(t, []any{"a", "b"}, body["ids"])

	// Deleting through the server refreshes it.
	do(t, http.MethodDelete, base+"/a", "")
	_, body = do(t, http.MethodGet, base, "")
	assert.Equal(t, []any{"b", "c"}, body["ids"])
}

func TestServer_ListEmpty(t *testing.T) {
	srv, _ := newServer(t)

	_, body := do(t, http.MethodGet, srv.URL+"/dominoes", "")

	assert.Equal(t, []any{}, body["ids"])
}

func TestServer_Health(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("domino_commits_total 1\n"))
	})
	srv, _ := newServer(t, httpAdapter.WithMetrics(metrics))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_MetricsDisabled(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_EventStream(t *testing.T) {
	bus := eventbus.New[string, domain.CommitEvent]()
	srv, _ := newServer(t, httpAdapter.WithEvents(bus))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/dominoes/s/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	// The subscription is registered before the ping is flushed.
	require.Equal(t, 1, bus.Len("s"))
	bus.Broadcast("s", domain.CommitEvent{ID: "s", Op: domain.OpUpdate})

	var data string
	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: commit") {
			data, err = reader.ReadString('\n')
			require.NoError(t, err)
			break
		}
	}

	var event domain.CommitEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(data), "data: ")), &event))
	assert.Equal(t, "s", event.ID)
	assert.Equal(t, domain.OpUpdate, event.Op)
}
