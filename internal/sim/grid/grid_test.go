package grid

import "testing"

func TestNew_ClampsDimensions(t *testing.T) {
	g := New(Vec3i{X: 50, Y: 0, Z: 7})
	if got := g.Size(); got != (Vec3i{X: MaxAxis, Y: 1, Z: 7}) {
		t.Fatalf("size = %+v", got)
	}
	if g.Volume() != MaxAxis*1*7 {
		t.Fatalf("volume = %d", g.Volume())
	}
}

func TestSetWalkable_AvailableCellBookkeeping(t *testing.T) {
	g := New(Vec3i{X: 3, Y: 3, Z: 3})
	if g.AvailableCells() != 0 {
		t.Fatalf("fresh grid available = %d", g.AvailableCells())
	}

	p := Vec3i{X: 1, Y: 1, Z: 1}
	g.SetWalkable(p, true)
	g.SetWalkable(p, true) // idempotent
	if g.AvailableCells() != 1 {
		t.Fatalf("available after set = %d", g.AvailableCells())
	}

	g.SetWalkable(Vec3i{X: 0, Y: 0, Z: 0}, true)
	g.SetWalkable(p, false)
	g.SetWalkable(p, false)
	if g.AvailableCells() != 1 {
		t.Fatalf("available after clear = %d", g.AvailableCells())
	}
	if got := g.RecountAvailable(); got != 1 {
		t.Fatalf("recount = %d", got)
	}
}

func TestWalkable_OutOfBoundsIsWall(t *testing.T) {
	g := New(Vec3i{X: 2, Y: 2, Z: 2})
	g.SetWalkable(Vec3i{X: -1, Y: 0, Z: 0}, true) // ignored
	if g.Walkable(Vec3i{X: -1, Y: 0, Z: 0}) {
		t.Fatal("out-of-bounds cell reported walkable")
	}
	if g.Walkable(Vec3i{X: 2, Y: 0, Z: 0}) {
		t.Fatal("out-of-bounds cell reported walkable")
	}
}

func TestClone_IndependentCopy(t *testing.T) {
	g := New(Vec3i{X: 2, Y: 2, Z: 2})
	g.SetWalkable(Vec3i{X: 0, Y: 0, Z: 0}, true)
	g.SetDoor(Vec3i{X: 0, Y: 0, Z: 0})

	c := g.Clone()
	g.SetWalkable(Vec3i{X: 0, Y: 0, Z: 0}, false)

	if !c.Walkable(Vec3i{X: 0, Y: 0, Z: 0}) {
		t.Fatal("clone shares walkable storage with original")
	}
	if c.AvailableCells() != 1 {
		t.Fatalf("clone available = %d", c.AvailableCells())
	}
	if c.Door() != (Vec3i{X: 0, Y: 0, Z: 0}) {
		t.Fatalf("clone door = %+v", c.Door())
	}
}

func TestSuccDir_FullCycle(t *testing.T) {
	d := Vec3i{X: 1, Y: 0, Z: 0}
	seen := map[Vec3i]bool{}
	for i := 0; i < 6; i++ {
		if seen[d] {
			t.Fatalf("cycle revisited %+v after %d steps", d, i)
		}
		seen[d] = true
		d = SuccDir(d)
	}
	if d != (Vec3i{X: 1, Y: 0, Z: 0}) {
		t.Fatalf("cycle did not close: %+v", d)
	}
	if SuccDir(Zero) != Zero {
		t.Fatal("SuccDir(Zero) != Zero")
	}
}
