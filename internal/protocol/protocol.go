// Package protocol defines the JSON messages exchanged between a
// simulation server and its viewers/controllers.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeControl = "CONTROL"
	TypeState   = "STATE"
	TypeMetrics = "METRICS"
	TypeError   = "ERROR"
)

// Control commands.
const (
	CmdLoadMap        = "LOAD_MAP"
	CmdReset          = "RESET"
	CmdSetProbability = "SET_PROBABILITY"
	CmdStep           = "STEP"
	CmdRun            = "RUN"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
