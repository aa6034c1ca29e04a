package battleship

import (
	"sort"

	"github.com/dolthub/swiss"
)

// Coordinates of a single cell. X is the row and Y the column,
// both zero based, so grid[X][Y] addresses the cell.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

func (c Coordinates) InBound(size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// Chebyshev distance; two cells touch (diagonals included) when it is 1.
func (c Coordinates) Distance(other Coordinates) int {
	return max(abs(c.X-other.X), abs(c.Y-other.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CellSet is an unordered set of cells. Membership is the only
// thing that matters, insertion order is not kept.
type CellSet struct {
	cells *swiss.Map[Coordinates, struct{}]
}

// Only a hint; it is clamped to maxCellSetHint.
const maxCellSetHint = 1 << 16

func NewCellSet(sizeHint int, cells ...Coordinates) *CellSet {
	if sizeHint < len(cells) {
		sizeHint = len(cells)
	}
	sizeHint = min(max(sizeHint, 0), maxCellSetHint)
	cs := &CellSet{cells: swiss.NewMap[Coordinates, struct{}](uint32(sizeHint))}
	for _, c := range cells {
		cs.Add(c)
	}
	return cs
}

func (cs *CellSet) Add(c Coordinates) {
	cs.cells.Put(c, struct{}{})
}

func (cs *CellSet) Has(c Coordinates) bool {
	return cs.cells.Has(c)
}

// Returns true if the cell was present.
func (cs *CellSet) Remove(c Coordinates) bool {
	return cs.cells.Delete(c)
}

func (cs *CellSet) Len() int {
	return cs.cells.Count()
}

// Returns the cells sorted row-major so callers get a stable order.
func (cs *CellSet) Cells() []Coordinates {
	out := make([]Coordinates, 0, cs.cells.Count())
	cs.cells.Iter(func(c Coordinates, _ struct{}) bool {
		out = append(out, c)
		return false
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

type Grid [][]uint8

// Creates a new default grid
// All indexes are zero/PositionStateEmpty
func NewGrid(gridSize int) Grid {
	grid := make(Grid, gridSize)

	for i := 0; i < gridSize; i++ {
		grid[i] = make([]uint8, gridSize)
	}
	return grid
}
