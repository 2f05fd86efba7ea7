package sim

import "swarmfill.ai/internal/sim/grid"

// phase is the coarse activity classification tracked for renderer diffs.
type phase uint8

const (
	phaseIdle phase = iota
	phaseActive
	phaseSettled
	phaseSleeping
)

// Transition codes packed into the low 3 bits of PopRobotState results.
const (
	DiffNoChange = 0
	DiffMoving   = 1
	DiffStopped  = 2
	DiffSettled  = 3
	DiffSleeping = 4
	DiffInvalid  = 5
)

// noDirection is returned when a robot's last move matches no canonical
// direction (including robots that never moved).
const noDirection = 6

// PopRobotState reports the robot's activity transition since the
// previous call, packed with its last-move direction index shifted left
// by 3 bits. The tracked state intentionally lags one call behind the
// live robot, so repeated calls without an intervening step are stable.
// Out-of-range indices yield -1.
func (s *Simulation) PopRobotState(robotIndex int) int {
	if robotIndex < 0 || robotIndex >= s.capacity {
		return -1
	}

	answer := transition(s.prevPhase[robotIndex], s.currPhase[robotIndex])
	s.prevPhase[robotIndex] = s.currPhase[robotIndex]
	s.currPhase[robotIndex] = s.livePhase(robotIndex)

	if robotIndex >= len(s.robots) {
		return noDirection
	}
	dir := -1
	for i, d := range grid.Directions {
		if s.robots[robotIndex].LastMove == d {
			dir = i
			break
		}
	}
	if dir == -1 {
		return noDirection
	}
	return answer | dir<<3
}

func (s *Simulation) livePhase(robotIndex int) phase {
	if robotIndex >= len(s.robots) {
		return phaseIdle
	}
	r := s.robots[robotIndex]
	switch {
	case !r.Active:
		return phaseSettled
	case r.Sleeping:
		return phaseSleeping
	default:
		return phaseActive
	}
}

func transition(prev, curr phase) int {
	if prev == phaseSettled {
		// Settling is terminal; anything else is a bookkeeping bug.
		if curr == phaseSettled {
			return DiffNoChange
		}
		return DiffInvalid
	}
	switch curr {
	case phaseIdle:
		if prev == phaseIdle {
			return DiffNoChange
		}
		return DiffStopped
	case phaseActive:
		return DiffMoving
	case phaseSettled:
		return DiffSettled
	case phaseSleeping:
		return DiffSleeping
	}
	return DiffInvalid
}
