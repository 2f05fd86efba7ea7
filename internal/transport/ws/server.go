// Package ws serves simulations over websockets. Each connection owns an
// independent Simulation driven by CONTROL messages; STATE and METRICS
// frames stream back after every step.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"swarmfill.ai/internal/protocol"
	"swarmfill.ai/internal/sim/maps"
	"swarmfill.ai/internal/sim/sim"
)

// maxStepsPerCommand caps RUN/STEP work per control message so a
// non-terminating map cannot wedge the reader loop.
const maxStepsPerCommand = 100000

type Server struct {
	catalog maps.Catalog
	cfg     sim.Config
	log     *log.Logger

	sessions atomic.Int64

	upgrader websocket.Upgrader
}

func NewServer(catalog maps.Catalog, cfg sim.Config, logger *log.Logger) *Server {
	return &Server{
		catalog: catalog,
		cfg:     cfg,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out := make(chan []byte, 64)
		sessionID, ok := s.handshake(conn, out)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		sess := &session{
			id:      sessionID,
			server:  s,
			sim:     sim.New(s.cfg),
			out:     out,
			mapName: "",
		}
		if err := sess.loadMap(0); err != nil {
			sess.sendError("E_MAP", err.Error())
		}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeControl {
				continue
			}
			var ctl protocol.ControlMsg
			if err := json.Unmarshal(msg, &ctl); err != nil {
				continue
			}
			if ctl.ProtocolVersion != protocol.Version {
				continue
			}
			sess.handleControl(ctl)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn, out chan []byte) (string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != protocol.TypeHello {
		return "", false
	}

	id := fmt.Sprintf("sess_%d", s.sessions.Add(1))
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       id,
		MapNames:        s.catalog.Names(),
		Probability:     s.cfg.ActiveProbability,
		Seed:            s.cfg.Seed,
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return "", false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return "", false
	}
	if s.log != nil {
		s.log.Printf("session %s: client %q connected", id, hello.ClientName)
	}
	return id, true
}

type session struct {
	id      string
	server  *Server
	sim     *sim.Simulation
	out     chan []byte
	mapName string
}

func (c *session) handleControl(ctl protocol.ControlMsg) {
	switch ctl.Cmd {
	case protocol.CmdLoadMap:
		if err := c.loadMap(ctl.MapIndex); err != nil {
			c.sendError("E_MAP", err.Error())
			return
		}
		c.sendState()
	case protocol.CmdReset:
		c.sim.Reset()
		c.sendState()
	case protocol.CmdSetProbability:
		c.sim.SetActiveProbability(ctl.Probability)
	case protocol.CmdStep:
		n := ctl.Steps
		if n < 1 {
			n = 1
		}
		if n > maxStepsPerCommand {
			n = maxStepsPerCommand
		}
		for i := 0; i < n && !c.sim.Complete(); i++ {
			c.sim.Step()
			c.sendState()
		}
		c.sendMetrics()
	case protocol.CmdRun:
		c.sim.Run(maxStepsPerCommand)
		c.sendState()
		c.sendMetrics()
	default:
		c.sendError("E_BAD_REQUEST", "unknown cmd "+ctl.Cmd)
	}
}

func (c *session) loadMap(index int) error {
	m := c.server.catalog.ByIndex(index)
	if err := maps.Apply(c.sim, m); err != nil {
		return err
	}
	c.mapName = m.Name
	return nil
}

func (c *session) sendState() {
	sx, sy, sz := c.sim.SizeX(), c.sim.SizeY(), c.sim.SizeZ()
	cells := make([]int, 0, sx*sy*sz)
	for x := 0; x < sx; x++ {
		for y := 0; y < sy; y++ {
			for z := 0; z < sz; z++ {
				cells = append(cells, int(c.sim.Cell(x, y, z)))
			}
		}
	}
	robots := make([]protocol.RobotDelta, 0, c.sim.RobotCount())
	for i := 0; i < c.sim.RobotCount(); i++ {
		robots = append(robots, protocol.RobotDelta{Index: i, Code: c.sim.PopRobotState(i)})
	}
	c.send(protocol.StateMsg{
		Type:     protocol.TypeState,
		Step:     c.sim.Steps(),
		Complete: c.sim.Complete(),
		Size:     [3]int{sx, sy, sz},
		Cells:    cells,
		Robots:   robots,
	})
}

func (c *session) sendMetrics() {
	c.send(protocol.MetricsMsg{
		Type:           protocol.TypeMetrics,
		Step:           c.sim.Steps(),
		Makespan:       c.sim.Makespan(),
		TTotal:         c.sim.TTotal(),
		TMax:           c.sim.TMax(),
		ETotal:         c.sim.ETotal(),
		EMax:           c.sim.EMax(),
		AvailableCells: c.sim.AvailableCells(),
		RobotCount:     c.sim.RobotCount(),
	})
}

func (c *session) sendError(code, msg string) {
	c.send(protocol.ErrorMsg{Type: protocol.TypeError, Code: code, Message: msg})
}

func (c *session) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.out <- b:
	default:
		// Drop the frame if the client cannot keep up.
	}
}
