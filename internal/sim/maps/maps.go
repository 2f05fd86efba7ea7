// Package maps loads the map catalog: named grids with a start (door)
// cell and a packed wall bitset.
package maps

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"swarmfill.ai/internal/sim/sim"
)

// Map is one catalog entry. Walls is a base64 bitset, one bit per cell
// traversed x-major with z fastest (x, then y, then z); a set bit is a
// wall. Bit i lives in byte i/8 at bit position i%8.
type Map struct {
	Name  string `yaml:"name"`
	Size  [3]int `yaml:"size"`
	Start [3]int `yaml:"start"`
	Walls string `yaml:"walls"`
}

type Catalog struct {
	Maps []Map `yaml:"maps"`
}

// Load reads a YAML catalog. A missing or empty catalog is not an error
// at lookup time: ByIndex falls back to the built-in demo map.
func Load(path string) (Catalog, error) {
	var c Catalog
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("maps.yaml: %w", err)
	}
	return c, nil
}

// ByIndex returns the i-th map. Invalid indices fall back to the first
// map, or to the built-in demo map when the catalog is empty.
func (c Catalog) ByIndex(i int) Map {
	if len(c.Maps) == 0 {
		return Demo()
	}
	if i < 0 || i >= len(c.Maps) {
		return c.Maps[0]
	}
	return c.Maps[i]
}

func (c Catalog) Names() []string {
	names := make([]string, len(c.Maps))
	for i, m := range c.Maps {
		names[i] = m.Name
	}
	return names
}

// Demo is a boxed 3x4x4 room: walls on every boundary face, four free
// interior cells, door on the x=2 face adjacent to the interior.
func Demo() Map {
	m := Map{
		Name:  "demo",
		Size:  [3]int{3, 4, 4},
		Start: [3]int{2, 1, 1},
	}
	bits := make([]byte, (3*4*4+7)/8)
	i := 0
	for x := 0; x < 3; x++ {
		for y := 0; y < 4; y++ {
			for z := 0; z < 4; z++ {
				wall := x == 0 || x == 2 || y == 0 || y == 3 || z == 0 || z == 3
				door := x == 2 && y == 1 && z == 1
				if wall && !door {
					bits[i/8] |= 1 << (i % 8)
				}
				i++
			}
		}
	}
	m.Walls = base64.StdEncoding.EncodeToString(bits)
	return m
}

// Apply seeds a simulation with the map, recomputes the distance field
// and commits the result as the reset baseline.
func Apply(s *sim.Simulation, m Map) error {
	bits, err := base64.StdEncoding.DecodeString(m.Walls)
	if err != nil {
		return fmt.Errorf("map %q: walls: %w", m.Name, err)
	}
	cells := m.Size[0] * m.Size[1] * m.Size[2]
	if len(bits)*8 < cells {
		return fmt.Errorf("map %q: walls bitset has %d bits, need %d", m.Name, len(bits)*8, cells)
	}

	s.InitGrid(m.Size[0], m.Size[1], m.Size[2])
	i := 0
	for x := 0; x < m.Size[0]; x++ {
		for y := 0; y < m.Size[1]; y++ {
			for z := 0; z < m.Size[2]; z++ {
				wall := bits[i/8]&(1<<(i%8)) != 0
				i++
				switch {
				case x == m.Start[0] && y == m.Start[1] && z == m.Start[2]:
					s.SetCell(x, y, z, sim.CellDoor)
				case wall:
					s.SetCell(x, y, z, sim.CellWall)
				default:
					s.SetCell(x, y, z, sim.CellEmpty)
				}
			}
		}
	}
	s.BFS()
	s.CommitMap()
	return nil
}
