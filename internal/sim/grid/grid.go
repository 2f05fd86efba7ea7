// Package grid holds the static occupancy grid and the BFS distance field
// for a single simulation. Coordinates are integer cell positions; each
// axis is bounded by MaxAxis.
package grid

// MaxAxis is the hard per-axis dimension limit. Larger requested
// dimensions are clamped, never rejected.
const MaxAxis = 20

type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3i) Neg() Vec3i { return Vec3i{-v.X, -v.Y, -v.Z} }

func (v Vec3i) Dot(o Vec3i) int { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

var (
	Up      = Vec3i{0, 1, 0}
	Down    = Vec3i{0, -1, 0}
	Left    = Vec3i{-1, 0, 0}
	Right   = Vec3i{1, 0, 0}
	Forward = Vec3i{0, 0, 1}
	Back    = Vec3i{0, 0, -1}
	Zero    = Vec3i{0, 0, 0}
)

// Directions is the canonical direction order. The index of a direction in
// this table is the 3-bit code reported to renderers.
var Directions = [6]Vec3i{Up, Forward, Left, Down, Back, Right}

// SuccDir cycles through the six axis directions:
// +x -> +y -> +z -> -x -> -y -> -z -> +x. Non-unit input yields Zero.
func SuccDir(d Vec3i) Vec3i {
	switch d {
	case Vec3i{1, 0, 0}:
		return Vec3i{0, 1, 0}
	case Vec3i{0, 1, 0}:
		return Vec3i{0, 0, 1}
	case Vec3i{0, 0, 1}:
		return Vec3i{-1, 0, 0}
	case Vec3i{-1, 0, 0}:
		return Vec3i{0, -1, 0}
	case Vec3i{0, -1, 0}:
		return Vec3i{0, 0, -1}
	case Vec3i{0, 0, -1}:
		return Vec3i{1, 0, 0}
	}
	return Zero
}

// Grid is the static walkability map plus the door (spawn) cell.
// Robot occupancy lives elsewhere; the grid only answers "is this cell a
// wall or not" and keeps the walkable-cell count current.
type Grid struct {
	size      Vec3i
	door      Vec3i
	walkable  []bool
	available int
}

func clampAxis(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxAxis {
		return MaxAxis
	}
	return n
}

// New allocates a grid with every cell unwalkable. Dimensions are clamped
// to [1, MaxAxis].
func New(size Vec3i) *Grid {
	size = Vec3i{clampAxis(size.X), clampAxis(size.Y), clampAxis(size.Z)}
	return &Grid{
		size:     size,
		walkable: make([]bool, size.X*size.Y*size.Z),
	}
}

func (g *Grid) Size() Vec3i { return g.size }

func (g *Grid) Volume() int { return g.size.X * g.size.Y * g.size.Z }

func (g *Grid) InBounds(p Vec3i) bool {
	return p.X >= 0 && p.X < g.size.X &&
		p.Y >= 0 && p.Y < g.size.Y &&
		p.Z >= 0 && p.Z < g.size.Z
}

// Index maps an in-bounds position to its flat array offset.
func (g *Grid) Index(p Vec3i) int {
	return (p.X*g.size.Y+p.Y)*g.size.Z + p.Z
}

// Walkable reports whether p is a non-wall cell. Out-of-bounds positions
// are walls.
func (g *Grid) Walkable(p Vec3i) bool {
	if !g.InBounds(p) {
		return false
	}
	return g.walkable[g.Index(p)]
}

// SetWalkable flips a cell and keeps the available-cell count in sync.
// Out-of-bounds positions are ignored.
func (g *Grid) SetWalkable(p Vec3i, walkable bool) {
	if !g.InBounds(p) {
		return
	}
	i := g.Index(p)
	if g.walkable[i] == walkable {
		return
	}
	g.walkable[i] = walkable
	if walkable {
		g.available++
	} else {
		g.available--
	}
}

// AvailableCells is the live count of walkable cells, maintained
// incrementally by SetWalkable and recomputed exactly by RecountAvailable.
func (g *Grid) AvailableCells() int { return g.available }

// RecountAvailable recomputes the walkable-cell count from scratch.
func (g *Grid) RecountAvailable() int {
	n := 0
	for _, w := range g.walkable {
		if w {
			n++
		}
	}
	g.available = n
	return n
}

func (g *Grid) Door() Vec3i { return g.door }

// SetDoor records the spawn cell. The door is expected to be walkable;
// callers make it so via SetWalkable.
func (g *Grid) SetDoor(p Vec3i) {
	if g.InBounds(p) {
		g.door = p
	}
}

// Clone copies the grid. Used to keep a pristine baseline of a loaded map
// so a simulation can be reset without re-reading the map source.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		size:      g.size,
		door:      g.door,
		walkable:  make([]bool, len(g.walkable)),
		available: g.available,
	}
	copy(c.walkable, g.walkable)
	return c
}
