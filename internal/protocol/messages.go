package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	MapNames        []string `json:"map_names"`
	Probability     int      `json:"probability"`
	Seed            int64    `json:"seed"`
}

// CONTROL (client -> server): drives one session's simulation.
type ControlMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Cmd             string `json:"cmd"`
	MapIndex        int    `json:"map_index,omitempty"`
	Probability     int    `json:"probability,omitempty"`
	Steps           int    `json:"steps,omitempty"`
}

// STATE (server -> client): one frame of grid cells plus per-robot
// transition codes, sent after each step.
type StateMsg struct {
	Type     string `json:"type"`
	Step     int    `json:"step"`
	Complete bool   `json:"complete"`
	Size     [3]int `json:"size"`
	// Cells is the full grid flattened x-major with z fastest, one
	// CellType value per cell.
	Cells  []int        `json:"cells"`
	Robots []RobotDelta `json:"robots"`
}

// RobotDelta carries one robot's packed transition code: the low 3 bits
// are the activity transition, the rest is the direction index << 3.
type RobotDelta struct {
	Index int `json:"index"`
	Code  int `json:"code"`
}

// METRICS (server -> client)
type MetricsMsg struct {
	Type           string `json:"type"`
	Step           int    `json:"step"`
	Makespan       int    `json:"makespan"`
	TTotal         int    `json:"t_total"`
	TMax           int    `json:"t_max"`
	ETotal         int    `json:"e_total"`
	EMax           int    `json:"e_max"`
	AvailableCells int    `json:"available_cells"`
	RobotCount     int    `json:"robot_count"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
