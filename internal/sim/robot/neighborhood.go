// Package robot implements the per-agent Look-Compute-Move decision policy
// and the local 3x3x3 reachability oracle that guards settling.
package robot

import "swarmfill.ai/internal/sim/grid"

// CellState is the locally observed state of a single cell.
type CellState uint8

const (
	Wall CellState = iota
	Occupied
	Free
)

// Neighborhood is a 27-cell snapshot of the 3x3x3 block centered on a
// robot. Cells are addressed by relative coordinates in [-1,1] per axis.
type Neighborhood [27]CellState

// Index maps a relative coordinate to its flat offset.
func Index(rel grid.Vec3i) int {
	return (rel.X+1)*9 + (rel.Y+1)*3 + (rel.Z + 1)
}

func (n *Neighborhood) At(rel grid.Vec3i) CellState { return n[Index(rel)] }

func (n *Neighborhood) Set(rel grid.Vec3i, s CellState) { n[Index(rel)] = s }

// Reachable reports whether to can be reached from from inside the block
// via 6-connected moves, treating Wall cells as blocked. The fill iterates
// to a fixed point; Occupied cells are passable.
func (n *Neighborhood) Reachable(from, to grid.Vec3i) bool {
	if n.At(from) == Wall || n.At(to) == Wall {
		return false
	}

	var reach [27]bool
	reach[Index(from)] = true

	for changed := true; changed; {
		changed = false
		for i := 0; i < 27; i++ {
			if !reach[i] {
				continue
			}
			p := grid.Vec3i{X: i/9 - 1, Y: (i/3)%3 - 1, Z: i%3 - 1}
			for _, d := range grid.Directions {
				q := p.Add(d)
				if q.X < -1 || q.X > 1 || q.Y < -1 || q.Y > 1 || q.Z < -1 || q.Z > 1 {
					continue
				}
				j := Index(q)
				if !reach[j] && n[j] != Wall {
					reach[j] = true
					changed = true
				}
			}
		}
	}

	return reach[Index(to)]
}

// preservesReachability checks that hypothetically turning the center cell
// into a wall does not disconnect any pair of non-center cells that is
// currently connected. This is the local safety condition for settling.
func preservesReachability(n Neighborhood) bool {
	center := Index(grid.Zero)

	walled := n
	walled[center] = Wall

	for i := 0; i < 27; i++ {
		if i == center || n[i] == Wall {
			continue
		}
		from := grid.Vec3i{X: i/9 - 1, Y: (i/3)%3 - 1, Z: i%3 - 1}
		for j := 0; j < 27; j++ {
			if j == center || i == j || n[j] == Wall {
				continue
			}
			to := grid.Vec3i{X: j/9 - 1, Y: (j/3)%3 - 1, Z: j%3 - 1}
			if n.Reachable(from, to) && !walled.Reachable(from, to) {
				return false
			}
		}
	}
	return true
}
