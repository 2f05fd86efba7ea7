package grid

import "math"

// Unreachable is the sentinel distance for cells the BFS never visited.
const Unreachable = math.MaxInt32

// DistanceField holds 6-connected BFS distances from the door to every
// walkable cell. It must be recomputed after any topology change.
type DistanceField struct {
	size Vec3i
	dist []int
}

func NewDistanceField(size Vec3i) *DistanceField {
	size = Vec3i{clampAxis(size.X), clampAxis(size.Y), clampAxis(size.Z)}
	f := &DistanceField{
		size: size,
		dist: make([]int, size.X*size.Y*size.Z),
	}
	for i := range f.dist {
		f.dist[i] = Unreachable
	}
	return f
}

// At returns the BFS distance at p, or Unreachable for out-of-bounds or
// never-visited cells.
func (f *DistanceField) At(p Vec3i) int {
	if p.X < 0 || p.X >= f.size.X || p.Y < 0 || p.Y >= f.size.Y || p.Z < 0 || p.Z >= f.size.Z {
		return Unreachable
	}
	return f.dist[(p.X*f.size.Y+p.Y)*f.size.Z+p.Z]
}

// Recompute runs a breadth-first traversal from the grid's door. Every
// distance is reset to Unreachable first; the walkable-cell count is
// recounted exactly as a side effect.
func (f *DistanceField) Recompute(g *Grid) {
	for i := range f.dist {
		f.dist[i] = Unreachable
	}
	g.RecountAvailable()

	door := g.Door()
	if !g.Walkable(door) {
		return
	}

	queue := make([]Vec3i, 0, g.Volume())
	f.dist[g.Index(door)] = 0
	queue = append(queue, door)

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		d := f.dist[g.Index(v)]
		for _, dir := range Directions {
			next := v.Add(dir)
			if !g.Walkable(next) {
				continue
			}
			i := g.Index(next)
			if f.dist[i] != Unreachable {
				continue
			}
			f.dist[i] = d + 1
			queue = append(queue, next)
		}
	}
}
