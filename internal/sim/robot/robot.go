package robot

import "swarmfill.ai/internal/sim/grid"

// Status is the outcome of a single Compute call.
type Status int

const (
	// StatusMoved means a target cell was chosen for this step.
	StatusMoved Status = iota
	// StatusSettled means the robot deactivated after passing the
	// reachability-preservation test.
	StatusSettled
	// StatusStuck means all six face-adjacent cells were walls.
	StatusStuck
	// StatusNoMove is the defensive terminal state: no branch produced a
	// move. Should be unreachable on a well-formed grid; callers flag it.
	StatusNoMove
)

// Robot is one anonymous agent. Activity is monotonic: once Active goes
// false it never comes back. Sleeping is a transient skip flag on active
// robots.
type Robot struct {
	Pos    grid.Vec3i
	Target grid.Vec3i

	// Preferred is the fixed-at-spawn bias direction ("kulso irany").
	Preferred grid.Vec3i

	LastMove  grid.Vec3i
	EverMoved bool

	Active   bool
	Sleeping bool

	// ActiveFor counts Compute calls; SettledFor counts steps spent
	// inactive.
	ActiveFor  int
	SettledFor int

	// Transient orthogonal-scan state.
	primary   grid.Vec3i
	secondary grid.Vec3i
}

// New spawns an active robot at pos with the canonical upward preferred
// direction.
func New(pos grid.Vec3i) *Robot {
	return &Robot{
		Pos:       pos,
		Target:    pos,
		Preferred: grid.Up,
		Active:    true,
	}
}

// Move commits the previously computed target. There is no collision
// arbitration here; overlapping commits are resolved only by the field
// rebuild's lowest-index-wins rule.
func (r *Robot) Move() {
	r.Pos = r.Target
}

func (r *Robot) setMove(dir grid.Vec3i) {
	r.EverMoved = true
	r.Target = r.Pos.Add(dir)
	r.LastMove = dir
}

// Compute runs the decision policy over two snapshots of the robot's
// neighborhood. now is evaluated as the current topology; planned is
// mutated for the settle test (its two y-layers are forced to walls,
// modelling the plane the swarm is filling). Branches are evaluated in a
// fixed order; the first match wins.
func (r *Robot) Compute(now, planned Neighborhood) Status {
	r.ActiveFor++

	// 1. Fully blocked: nowhere to go, ever.
	blocked := true
	for _, dir := range grid.Directions {
		if now.At(dir) != Wall {
			blocked = false
			break
		}
	}
	if blocked {
		r.Active = false
		return StatusStuck
	}

	// 2. Settle: requires a past move and at least one wall on every axis
	// pair, then the reachability-preservation test over both snapshots.
	if r.EverMoved && r.wallOnEveryAxis(now) {
		for x := -1; x <= 1; x++ {
			for z := -1; z <= 1; z++ {
				planned.Set(grid.Vec3i{X: x, Y: -1, Z: z}, Wall)
				planned.Set(grid.Vec3i{X: x, Y: 1, Z: z}, Wall)
			}
		}
		if preservesReachability(now) && preservesReachability(planned) {
			r.Active = false
			return StatusSettled
		}
	}

	// 3. Preferred direction: passable unless walled, and never straight
	// back the way we came.
	if r.LastMove != r.Preferred.Neg() && now.At(r.Preferred) != Wall {
		r.primary = grid.Zero
		r.secondary = grid.Zero
		r.setMove(r.Preferred)
		return StatusMoved
	}

	// 4. Orthogonal scan. Reuse the stored scan state while it holds;
	// rescan once it goes stale.
	if r.primary == grid.Zero {
		r.initPrimary(now)
	}
	if r.primary != grid.Zero && now.At(r.primary) == Free {
		r.setMove(r.primary)
		return StatusMoved
	}
	if r.secondary != grid.Zero && now.At(r.secondary) == Free {
		r.setMove(r.secondary)
		return StatusMoved
	}
	r.initPrimary(now)
	if r.primary != grid.Zero {
		r.setMove(r.primary)
		return StatusMoved
	}

	// 5. Fallback: retreat against the preferred direction.
	if now.At(r.Preferred.Neg()) == Free && r.LastMove != r.Preferred {
		r.setMove(r.Preferred.Neg())
		return StatusMoved
	}

	// Defensive terminal state rather than a crash.
	r.Active = false
	return StatusNoMove
}

// wallOnEveryAxis reports whether each of the three axis pairs has at
// least one walled face.
func (r *Robot) wallOnEveryAxis(now Neighborhood) bool {
	pairs := [3][2]grid.Vec3i{
		{grid.Left, grid.Right},
		{grid.Down, grid.Up},
		{grid.Back, grid.Forward},
	}
	for _, p := range pairs {
		if now.At(p[0]) != Wall && now.At(p[1]) != Wall {
			return false
		}
	}
	return true
}

// initPrimary picks the first free direction orthogonal to the preferred
// one, excluding the reverse of the last move, and derives the secondary
// direction as the next orthogonal direction in the cycle.
func (r *Robot) initPrimary(now Neighborhood) {
	r.primary = grid.Zero
	r.secondary = grid.Zero

	for _, dir := range grid.Directions {
		if dir.Dot(r.Preferred) != 0 || dir == r.LastMove.Neg() {
			continue
		}
		if now.At(dir) != Free {
			continue
		}
		r.primary = dir
		r.secondary = grid.SuccDir(r.primary)
		for r.secondary.Dot(r.Preferred) != 0 {
			r.secondary = grid.SuccDir(r.secondary)
		}
		return
	}
}
