package battleship

type Ship struct {
	Code      int
	cells     []Coordinates
	remaining *CellSet
}

func NewShip(code int, cells []Coordinates) *Ship {
	footprint := make([]Coordinates, len(cells))
	copy(footprint, cells)

	return &Ship{
		Code:      code,
		cells:     footprint,
		remaining: NewCellSet(len(cells), cells...),
	}
}

// Full footprint as placed, including cells that were already hit.
func (sh *Ship) Cells() []Coordinates {
	out := make([]Coordinates, len(sh.cells))
	copy(out, sh.cells)
	return out
}

func (sh *Ship) Remaining() []Coordinates {
	return sh.remaining.Cells()
}

// Returns false if the cell was already hit or is not part of the ship.
func (sh *Ship) GotHit(c Coordinates) bool {
	return sh.remaining.Remove(c)
}

func (sh *Ship) IsSunk() bool {
	return sh.remaining.Len() == 0
}
