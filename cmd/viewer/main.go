// Command viewer is a minimal websocket client: it connects to a
// simulation server, loads a map, runs it to completion and prints the
// final metrics. Useful for smoke-testing a deployed server.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/gorilla/websocket"

	"swarmfill.ai/internal/protocol"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "viewer", "client name")
		mapIndex = flag.Int("m", 0, "map index to load")
		prob     = flag.Int("p", 100, "active probability (0-100)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[viewer] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	send := func(ctl protocol.ControlMsg) {
		ctl.Type = protocol.TypeControl
		ctl.ProtocolVersion = protocol.Version
		if err := conn.WriteJSON(ctl); err != nil {
			logger.Fatalf("send CONTROL: %v", err)
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s maps=%v seed=%d", w.SessionID, w.MapNames, w.Seed)
			send(protocol.ControlMsg{Cmd: protocol.CmdSetProbability, Probability: *prob})
			send(protocol.ControlMsg{Cmd: protocol.CmdLoadMap, MapIndex: *mapIndex})
			send(protocol.ControlMsg{Cmd: protocol.CmdRun})

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			if st.Complete {
				logger.Printf("STATE step=%d complete", st.Step)
			}

		case protocol.TypeMetrics:
			var m protocol.MetricsMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			logger.Printf("METRICS makespan=%d t_total=%d t_max=%d e_total=%d e_max=%d cells=%d robots=%d",
				m.Makespan, m.TTotal, m.TMax, m.ETotal, m.EMax, m.AvailableCells, m.RobotCount)
			return

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			logger.Fatalf("server error %s: %s", e.Code, e.Message)
		}
	}
}
