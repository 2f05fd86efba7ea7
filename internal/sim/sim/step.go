package sim

import (
	"swarmfill.ai/internal/sim/grid"
	"swarmfill.ai/internal/sim/robot"
)

// Step advances the simulation by one logical tick, in fixed phase order:
// compute for every active robot (over the field as rebuilt last step),
// spawn at the door if vacant, commit moves, rebuild the field, refresh
// metrics.
//
// Compute reads only pre-move state, so per-robot decisions are
// order-independent within a step. Move commits are deliberately not
// collision-checked: two robots may both write the same cell, and only
// the field rebuild's lowest-index-wins rule decides which one is seen.
func (s *Simulation) Step() {
	s.steps++

	activeAtStart := false
	for _, r := range s.robots {
		if !r.Active {
			continue
		}
		activeAtStart = true

		if s.rng.Intn(100) < s.prob {
			r.Sleeping = false
			now := s.neighborhood(r.Pos)
			planned := now
			switch r.Compute(now, planned) {
			case robot.StatusNoMove:
				s.defensiveStops++
				if s.cfg.Logger != nil {
					s.cfg.Logger.Printf("robot at (%d,%d,%d): no decision branch matched, deactivated", r.Pos.X, r.Pos.Y, r.Pos.Z)
				}
			case robot.StatusSettled:
				if s.cfg.Logger != nil {
					if d := s.dist.At(r.Pos); d == grid.Unreachable {
						s.cfg.Logger.Printf("robot at (%d,%d,%d): settled outside the distance field", r.Pos.X, r.Pos.Y, r.Pos.Z)
					} else {
						s.cfg.Logger.Printf("robot at (%d,%d,%d): settled, door distance %d", r.Pos.X, r.Pos.Y, r.Pos.Z, d)
					}
				}
			}
		} else {
			r.Sleeping = true
		}
	}

	spawned := false
	door := s.grid.Door()
	if s.grid.Walkable(door) && s.field.At(door) < 0 {
		if len(s.robots) < s.capacity {
			s.robots = append(s.robots, robot.New(door))
			spawned = true
		} else {
			s.droppedSpawns++
		}
	}

	for i, r := range s.robots {
		if r.Active {
			moved := r.Target != r.Pos
			r.Move()
			if moved {
				s.metrics.robotSteps[i]++
			}
			s.metrics.robotTime[i]++
		} else {
			r.SettledFor++
		}
	}

	s.field.Rebuild(s.grid, s.robots)
	s.metrics.aggregate(s.steps, s.grid.AvailableCells())

	s.complete = !activeAtStart && !spawned
}

// Run steps until the simulation completes or maxSteps is reached,
// returning the number of steps taken this call.
func (s *Simulation) Run(maxSteps int) int {
	n := 0
	for n < maxSteps && !s.Complete() {
		s.Step()
		n++
	}
	return n
}
