// Package sim owns the complete state of one self-assembly simulation:
// the grid, the robot collection, the derived field and distance arrays,
// and the step orchestration. All state is bundled into one Simulation
// value; nothing is shared between simulations.
package sim

import (
	"log"
	"math/rand"

	"swarmfill.ai/internal/sim/grid"
	"swarmfill.ai/internal/sim/robot"
)

// CellType is the externally visible cell classification, used both for
// seeding cells and for rendering queries.
type CellType int

const (
	CellEmpty CellType = iota
	CellWall
	CellRobot
	CellSettled
	CellDoor
	CellSleeping
)

// wallRenderThreshold: a robot settled for more than this many steps is
// reported as a wall by Cell.
const wallRenderThreshold = 5

type Config struct {
	// Seed drives the sleep rolls. Two simulations with equal seed, map
	// and probability step identically.
	Seed int64

	// ActiveProbability is the percent chance an active robot runs its
	// compute phase on a given step. Zero means the default (100).
	ActiveProbability int

	// Logger receives diagnostics for conditions that are absorbed rather
	// than surfaced, such as the defensive no-move deactivation. Optional.
	Logger *log.Logger
}

// Simulation is a single bounded-grid self-assembly run. It is not safe
// for concurrent use; Step is the sole unit of advancement.
type Simulation struct {
	cfg Config

	grid *grid.Grid
	dist *grid.DistanceField

	robots   []*robot.Robot
	capacity int
	field    *Field

	metrics  Metrics
	steps    int
	prob     int
	rng      *rand.Rand
	complete bool

	// baseline is the pristine copy of the last committed map, restored
	// by Reset.
	baseline *grid.Grid

	// Observable drop/diagnostic counters (never surfaced as errors).
	droppedSpawns  int
	defensiveStops int

	prevPhase []phase
	currPhase []phase
}

func New(cfg Config) *Simulation {
	s := &Simulation{cfg: cfg}
	s.prob = cfg.ActiveProbability
	if s.prob <= 0 {
		s.prob = 100
	}
	if s.prob > 100 {
		s.prob = 100
	}
	s.InitGrid(1, 1, 1)
	return s
}

// InitGrid clears every piece of per-run state and allocates a fresh grid
// with the given (clamped) dimensions. Robot capacity equals the grid
// volume.
func (s *Simulation) InitGrid(x, y, z int) {
	s.grid = grid.New(grid.Vec3i{X: x, Y: y, Z: z})
	s.dist = grid.NewDistanceField(s.grid.Size())
	s.capacity = s.grid.Volume()
	s.robots = nil
	s.field = NewField(s.grid.Size())
	s.metrics.reset(s.capacity)
	s.steps = 0
	s.complete = false
	s.droppedSpawns = 0
	s.defensiveStops = 0
	s.prevPhase = make([]phase, s.capacity)
	s.currPhase = make([]phase, s.capacity)
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
}

// SetCell seeds one cell. Walkability derives from the type; Wall
// forcibly deactivates any robot present, Robot/Settled create or retag a
// robot, Door records the spawn cell without disturbing occupants.
func (s *Simulation) SetCell(x, y, z int, t CellType) {
	p := grid.Vec3i{X: x, Y: y, Z: z}
	if !s.grid.InBounds(p) {
		return
	}

	walkable := t == CellEmpty || t == CellRobot || t == CellSettled || t == CellDoor
	s.grid.SetWalkable(p, walkable)

	switch t {
	case CellWall:
		if i := s.field.At(p); i >= 0 && s.robots[i].Active {
			s.robots[i].Active = false
			s.robots[i].SettledFor = wallRenderThreshold + 1
		}
	case CellRobot, CellSettled:
		if i := s.field.At(p); i >= 0 {
			s.robots[i].Active = t == CellRobot
		} else if len(s.robots) < s.capacity {
			r := robot.New(p)
			r.Active = t == CellRobot
			s.field.Set(p, len(s.robots))
			s.robots = append(s.robots, r)
		} else {
			s.droppedSpawns++
		}
	case CellDoor:
		s.grid.SetDoor(p)
	}
}

// SetStartPosition records the door cell without touching walkability.
func (s *Simulation) SetStartPosition(x, y, z int) {
	s.grid.SetDoor(grid.Vec3i{X: x, Y: y, Z: z})
}

// SetActiveProbability sets the per-step compute chance, clamped to
// [0,100].
func (s *Simulation) SetActiveProbability(p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	s.prob = p
}

func (s *Simulation) ActiveProbability() int { return s.prob }

// BFS recomputes the distance field from the door and restores the exact
// walkable-cell count. Call after any topology change.
func (s *Simulation) BFS() {
	s.dist.Recompute(s.grid)
}

// CommitMap snapshots the current grid as the reset baseline. Map loaders
// call this once seeding is done.
func (s *Simulation) CommitMap() {
	s.baseline = s.grid.Clone()
}

// Reset restores the last committed map and clears all per-run state,
// including the RNG stream, so a re-run reproduces the same trajectory.
func (s *Simulation) Reset() {
	if s.baseline == nil {
		return
	}
	size := s.baseline.Size()
	s.InitGrid(size.X, size.Y, size.Z)
	s.grid = s.baseline.Clone()
	s.dist = grid.NewDistanceField(size)
	s.BFS()
}

// Complete reports whether the last Step saw no active robot and spawned
// none.
func (s *Simulation) Complete() bool { return s.complete }

// cellState classifies a cell for a robot's local view: out-of-bounds and
// unwalkable cells are walls, inactive robots are walls, active robots
// occupy, everything else is free.
func (s *Simulation) cellState(p grid.Vec3i) robot.CellState {
	if !s.grid.Walkable(p) {
		return robot.Wall
	}
	if i := s.field.At(p); i >= 0 {
		if !s.robots[i].Active {
			return robot.Wall
		}
		return robot.Occupied
	}
	return robot.Free
}

// neighborhood snapshots the 3x3x3 block centered on p.
func (s *Simulation) neighborhood(p grid.Vec3i) robot.Neighborhood {
	var n robot.Neighborhood
	i := 0
	for x := p.X - 1; x <= p.X+1; x++ {
		for y := p.Y - 1; y <= p.Y+1; y++ {
			for z := p.Z - 1; z <= p.Z+1; z++ {
				n[i] = s.cellState(grid.Vec3i{X: x, Y: y, Z: z})
				i++
			}
		}
	}
	return n
}

// Cell answers rendering queries. The door cell always reports as Door,
// occupied or not. Out-of-range queries return CellEmpty.
func (s *Simulation) Cell(x, y, z int) CellType {
	p := grid.Vec3i{X: x, Y: y, Z: z}
	if !s.grid.InBounds(p) {
		return CellEmpty
	}
	if p == s.grid.Door() {
		return CellDoor
	}
	if i := s.field.At(p); i >= 0 {
		r := s.robots[i]
		if r.Active {
			if r.Sleeping {
				return CellSleeping
			}
			return CellRobot
		}
		if r.SettledFor <= wallRenderThreshold {
			return CellSettled
		}
		return CellWall
	}
	if s.grid.Walkable(p) {
		return CellEmpty
	}
	return CellWall
}

func (s *Simulation) SizeX() int { return s.grid.Size().X }
func (s *Simulation) SizeY() int { return s.grid.Size().Y }
func (s *Simulation) SizeZ() int { return s.grid.Size().Z }

// DistanceAt returns the BFS distance from the door, or
// grid.Unreachable.
func (s *Simulation) DistanceAt(x, y, z int) int {
	return s.dist.At(grid.Vec3i{X: x, Y: y, Z: z})
}

func (s *Simulation) AvailableCells() int { return s.grid.AvailableCells() }
func (s *Simulation) Makespan() int       { return s.metrics.Makespan }
func (s *Simulation) TTotal() int         { return s.metrics.TTotal }
func (s *Simulation) TMax() int           { return s.metrics.TMax }
func (s *Simulation) ETotal() int         { return s.metrics.ETotal }
func (s *Simulation) EMax() int           { return s.metrics.EMax }
func (s *Simulation) Steps() int          { return s.steps }
func (s *Simulation) RobotCount() int     { return len(s.robots) }

// DroppedSpawns counts spawn or seed requests dropped because the robot
// collection was full.
func (s *Simulation) DroppedSpawns() int { return s.droppedSpawns }

// DefensiveStops counts robots deactivated because no decision branch
// produced a move. Nonzero values indicate a malformed grid or a policy
// gap and are worth investigating, but never abort a run.
func (s *Simulation) DefensiveStops() int { return s.defensiveStops }
