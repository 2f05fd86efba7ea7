package sim

import (
	"swarmfill.ai/internal/sim/grid"
	"swarmfill.ai/internal/sim/robot"
)

// Field is the derived cell -> robot index mapping. It is rebuilt from
// robot positions every step and never persisted. Entries are stable robot
// indices rather than pointers, so a stale field can never dangle.
type Field struct {
	size  grid.Vec3i
	cells []int
}

func NewField(size grid.Vec3i) *Field {
	f := &Field{
		size:  size,
		cells: make([]int, size.X*size.Y*size.Z),
	}
	f.Clear()
	return f
}

func (f *Field) index(p grid.Vec3i) int {
	return (p.X*f.size.Y+p.Y)*f.size.Z + p.Z
}

func (f *Field) inBounds(p grid.Vec3i) bool {
	return p.X >= 0 && p.X < f.size.X &&
		p.Y >= 0 && p.Y < f.size.Y &&
		p.Z >= 0 && p.Z < f.size.Z
}

// At returns the robot index registered at p, or -1.
func (f *Field) At(p grid.Vec3i) int {
	if !f.inBounds(p) {
		return -1
	}
	return f.cells[f.index(p)]
}

// Set registers a robot index directly. Used when cells are seeded with
// robots outside the normal step cycle.
func (f *Field) Set(p grid.Vec3i, idx int) {
	if f.inBounds(p) {
		f.cells[f.index(p)] = idx
	}
}

func (f *Field) Clear() {
	for i := range f.cells {
		f.cells[i] = -1
	}
}

// Rebuild re-derives the field from robot positions in index order. A
// robot on an unwalkable cell, or one that lost the race to a
// lower-indexed robot at the same cell, is silently absent for this step.
func (f *Field) Rebuild(g *grid.Grid, robots []*robot.Robot) {
	f.Clear()
	for i, r := range robots {
		if !g.Walkable(r.Pos) {
			continue
		}
		if f.cells[f.index(r.Pos)] == -1 {
			f.cells[f.index(r.Pos)] = i
		}
	}
}
