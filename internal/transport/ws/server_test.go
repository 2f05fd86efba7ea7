package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"swarmfill.ai/internal/protocol"
	"swarmfill.ai/internal/sim/maps"
	"swarmfill.ai/internal/sim/sim"
)

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := NewServer(
		maps.Catalog{Maps: []maps.Map{maps.Demo()}},
		sim.Config{Seed: 1, ActiveProbability: 100},
		nil,
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) (protocol.BaseMessage, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return base, raw
}

func handshake(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	writeJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      "test",
	})
	base, raw := readFrame(t, conn)
	if base.Type != protocol.TypeWelcome {
		t.Fatalf("first frame = %q, want WELCOME", base.Type)
	}
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatalf("unmarshal welcome: %v", err)
	}
	return welcome
}

func TestServer_HandshakeAndRun(t *testing.T) {
	conn := dialTestServer(t)

	welcome := handshake(t, conn)
	if welcome.SessionID == "" {
		t.Fatal("empty session id")
	}
	if len(welcome.MapNames) != 1 || welcome.MapNames[0] != "demo" {
		t.Fatalf("map names = %v", welcome.MapNames)
	}

	writeJSON(t, conn, protocol.ControlMsg{
		Type:            protocol.TypeControl,
		ProtocolVersion: protocol.Version,
		Cmd:             protocol.CmdRun,
	})

	var state protocol.StateMsg
	var metrics protocol.MetricsMsg
	for state.Type == "" || metrics.Type == "" {
		base, raw := readFrame(t, conn)
		switch base.Type {
		case protocol.TypeState:
			if err := json.Unmarshal(raw, &state); err != nil {
				t.Fatalf("unmarshal state: %v", err)
			}
		case protocol.TypeMetrics:
			if err := json.Unmarshal(raw, &metrics); err != nil {
				t.Fatalf("unmarshal metrics: %v", err)
			}
		default:
			t.Fatalf("unexpected frame %q", base.Type)
		}
	}

	if !state.Complete {
		t.Fatal("run should leave the simulation complete")
	}
	if want := 3 * 4 * 4; len(state.Cells) != want {
		t.Fatalf("cells = %d, want %d", len(state.Cells), want)
	}
	if metrics.AvailableCells != 5 || metrics.RobotCount != 5 {
		t.Fatalf("metrics = %+v, want 5 cells and 5 robots", metrics)
	}
	if metrics.Makespan != metrics.Step {
		t.Fatalf("makespan %d != step %d", metrics.Makespan, metrics.Step)
	}
}

func TestServer_StepStreamsFrames(t *testing.T) {
	conn := dialTestServer(t)
	handshake(t, conn)

	writeJSON(t, conn, protocol.ControlMsg{
		Type:            protocol.TypeControl,
		ProtocolVersion: protocol.Version,
		Cmd:             protocol.CmdStep,
		Steps:           3,
	})

	states := 0
	for {
		base, raw := readFrame(t, conn)
		if base.Type == protocol.TypeMetrics {
			break
		}
		if base.Type != protocol.TypeState {
			t.Fatalf("unexpected frame %q", base.Type)
		}
		var st protocol.StateMsg
		if err := json.Unmarshal(raw, &st); err != nil {
			t.Fatalf("unmarshal state: %v", err)
		}
		states++
		if st.Step != states {
			t.Fatalf("state step = %d, want %d", st.Step, states)
		}
	}
	if states != 3 {
		t.Fatalf("got %d state frames, want 3", states)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	conn := dialTestServer(t)
	handshake(t, conn)

	writeJSON(t, conn, protocol.ControlMsg{
		Type:            protocol.TypeControl,
		ProtocolVersion: protocol.Version,
		Cmd:             "EXPLODE",
	})

	base, raw := readFrame(t, conn)
	if base.Type != protocol.TypeError {
		t.Fatalf("frame = %q, want ERROR", base.Type)
	}
	var e protocol.ErrorMsg
	if err := json.Unmarshal(raw, &e); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if e.Code != "E_BAD_REQUEST" {
		t.Fatalf("code = %q, want E_BAD_REQUEST", e.Code)
	}
}
