package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/akarimov/chatbroker/internal/config"
	"github.com/akarimov/chatbroker/internal/core"
	"github.com/akarimov/chatbroker/internal/proto"
	"github.com/akarimov/chatbroker/internal/store"
	"github.com/akarimov/chatbroker/internal/store/sqlite"
)

// startTestServer runs the full HTTP server over an in-memory store.
func startTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second

	logger := zerolog.Nop()
	router := core.NewRouter(st, cfg.HistoryLimit, &logger)
	server := NewServer(router, st, &cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + ts.URL[len("http"):] + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

// rawOutbound mirrors proto.Outbound with the payload left undecoded.
type rawOutbound struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func sendEnvelope(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	var payload json.RawMessage
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s data: %v", typ, err)
		}
		payload = raw
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil reads envelopes until one of the wanted type arrives,
// discarding interleaved broadcasts.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string) rawOutbound {
	t.Helper()

	for {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("reading until %q: %v", typ, err)
		}
		if out.Type == typ {
			return out
		}
	}
}

func readOne(ctx context.Context, conn *websocket.Conn, out *rawOutbound) error {
	return wsjson.Read(ctx, conn, out)
}

func decodeData(t *testing.T, out rawOutbound, v any) {
	t.Helper()
	if err := json.Unmarshal(out.Data, v); err != nil {
		t.Fatalf("decode %s data: %v", out.Type, err)
	}
}
