package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsuite/pagebuilder"
	"github.com/toolsuite/pagebuilder/internal/client"
	"github.com/toolsuite/pagebuilder/internal/editor"
)

// fixedAPI serves a static section list; the bridge tests only exercise the
// push path, not persistence.
type fixedAPI struct {
	sections []pagebuilder.Section
}

func (f *fixedAPI) ListByPage(ctx context.Context, pageKey string) ([]pagebuilder.Section, error) {
	return f.sections, nil
}

func (f *fixedAPI) Update(ctx context.Context, id int64, patch client.UpdatePatch) (pagebuilder.Section, error) {
	for _, sec := range f.sections {
		if sec.ID == id {
			sec.ComponentData = patch.ComponentData
			return sec, nil
		}
	}
	return pagebuilder.Section{}, &client.APIError{Operation: "update", Message: "not found"}
}

func (f *fixedAPI) Duplicate(ctx context.Context, id int64) (pagebuilder.Section, error) {
	return pagebuilder.Section{}, &client.APIError{Operation: "duplicate", Message: "not supported"}
}

func (f *fixedAPI) Delete(ctx context.Context, id int64) error { return nil }

func (f *fixedAPI) Reorder(ctx context.Context, items []pagebuilder.ReorderItem) error { return nil }

func newBridgeFixture(t *testing.T, origins []string) (*Bridge, *editor.Editor, string) {
	t.Helper()
	api := &fixedAPI{sections: []pagebuilder.Section{
		{ID: 1, PageKey: "home", ComponentType: "hero", ComponentOrder: 1,
			ComponentData: map[string]any{"title": "Welcome"}, IsActive: true},
		{ID: 2, PageKey: "home", ComponentType: "footer", ComponentOrder: 2,
			ComponentData: map[string]any{"copyright": "2026"}, IsActive: false},
	}}
	ed := editor.New("home", api, editor.NotifierFunc(func(editor.Notice) {}))
	require.NoError(t, ed.Load(context.Background()))

	bridge := New(ed, origins)
	t.Cleanup(bridge.Close)

	srv := httptest.NewServer(bridge)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return bridge, ed, wsURL
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSync(t *testing.T, conn *websocket.Conn) SyncMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg SyncMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		if msg.Kind == KindSync {
			return msg
		}
	}
}

func TestConnectionGetsImmediateFullSync(t *testing.T) {
	bridge, _, wsURL := newBridgeFixture(t, nil)
	conn := dial(t, wsURL)

	msg := readSync(t, conn)
	assert.Equal(t, "home", msg.PageKey)
	require.Len(t, msg.Components, 2)
	assert.Equal(t, int64(1), msg.Components[0].ID)
	assert.Equal(t, "hero", msg.Components[0].Type)
	assert.Equal(t, 1, msg.Components[0].Order)
	assert.True(t, msg.Components[0].Active)
	assert.False(t, msg.Components[1].Active, "inactive sections are pushed too; the surface filters")

	require.Eventually(t, func() bool { return bridge.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestEditPushesMergedState(t *testing.T) {
	_, ed, wsURL := newBridgeFixture(t, nil)
	conn := dial(t, wsURL)
	readSync(t, conn) // initial state

	ed.SetFieldData(1, map[string]any{"title": "Edited live"})

	msg := readSync(t, conn)
	require.Len(t, msg.Components, 2)
	assert.Equal(t, "Edited live", msg.Components[0].Data["title"], "pending data takes precedence in the push")
}

func TestRepeatedPushesAreIdenticalReplacements(t *testing.T) {
	_, ed, wsURL := newBridgeFixture(t, nil)
	conn := dial(t, wsURL)
	first := readSync(t, conn)

	// A change and its discard land the editor back on the same state; the
	// resulting pushes must be byte-for-byte interchangeable with the first.
	ed.SetFieldData(1, map[string]any{"title": "temp"})
	ed.DiscardChanges(1)

	var last SyncMessage
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		last = readSync(t, conn)
		if len(last.Components) > 0 && last.Components[0].Data["title"] == "Welcome" {
			break
		}
	}

	firstRaw, err := json.Marshal(first)
	require.NoError(t, err)
	lastRaw, err := json.Marshal(last)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstRaw), string(lastRaw))
}

func TestReadySignalTriggersResync(t *testing.T) {
	_, _, wsURL := newBridgeFixture(t, nil)
	conn := dial(t, wsURL)
	readSync(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"kind": KindReady}))

	msg := readSync(t, conn)
	assert.Equal(t, KindSync, msg.Kind)
	assert.Len(t, msg.Components, 2)
}

func TestBroadcastReload(t *testing.T) {
	bridge, _, wsURL := newBridgeFixture(t, nil)
	conn := dial(t, wsURL)
	readSync(t, conn)

	require.Eventually(t, func() bool { return bridge.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)
	bridge.BroadcastReload()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg struct {
			Kind string `json:"kind"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		if msg.Kind == KindReload {
			return
		}
	}
}

func TestOriginRestriction(t *testing.T) {
	_, _, wsURL := newBridgeFixture(t, []string{"http://allowed.example"})

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	header = http.Header{"Origin": []string{"http://allowed.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	conn.Close()
}

func TestMalformedSurfaceMessageIsIgnored(t *testing.T) {
	bridge, _, wsURL := newBridgeFixture(t, nil)
	conn := dial(t, wsURL)
	readSync(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	// Connection survives the bad frame and still answers ready.
	require.NoError(t, conn.WriteJSON(map[string]string{"kind": KindReady}))
	msg := readSync(t, conn)
	assert.Equal(t, KindSync, msg.Kind)
	assert.Equal(t, 1, bridge.ConnectionCount())
}

func TestDisconnectDropsConnection(t *testing.T) {
	bridge, _, wsURL := newBridgeFixture(t, nil)
	conn := dial(t, wsURL)
	readSync(t, conn)

	require.Eventually(t, func() bool { return bridge.ConnectionCount() == 1 },
		time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return bridge.ConnectionCount() == 0 },
		time.Second, 10*time.Millisecond)
}
