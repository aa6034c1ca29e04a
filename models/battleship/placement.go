package battleship

import (
	cerr "github.com/saeidalz13/battleship-heatmap/internal/error"
)

const DefaultMaxPlacementAttempts = 10000

// Randomizer returns a uniform integer in [0, n). *math/rand.Rand
// satisfies it.
type Randomizer interface {
	Intn(n int) int
}

type PlacementGenerator struct {
	rng         Randomizer
	maxAttempts int
}

func NewPlacementGenerator(rng Randomizer, maxAttempts int) *PlacementGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPlacementAttempts
	}
	return &PlacementGenerator{rng: rng, maxAttempts: maxAttempts}
}

// Place puts every configured ship of the board at a random position.
// Ships never overlap and never touch, not even diagonally. The
// orientation of a ship is drawn once; only its anchor is redrawn on
// rejection, at most maxAttempts times per ship.
func (pg *PlacementGenerator) Place(b *Board) error {
	forbidden := sentinelBorder(b.size)
	for _, ship := range b.placed {
		for _, c := range bufferZone(ship.cells) {
			forbidden.Add(c)
		}
	}

	for _, length := range b.ships[len(b.placed):] {
		horizontal := pg.rng.Intn(2) == 1

		cells, err := pg.findFreeRun(b.size, length, horizontal, forbidden)
		if err != nil {
			return err
		}

		for _, c := range bufferZone(cells) {
			forbidden.Add(c)
		}
		b.commit(cells)
	}
	return nil
}

func (pg *PlacementGenerator) findFreeRun(size, length int, horizontal bool, forbidden *CellSet) ([]Coordinates, error) {
	for attempt := 0; attempt < pg.maxAttempts; attempt++ {
		line := pg.rng.Intn(size)
		start := pg.rng.Intn(size - length + 1)

		cells := make([]Coordinates, 0, length)
		for k := start; k < start+length; k++ {
			if horizontal {
				cells = append(cells, NewCoordinates(line, k))
			} else {
				cells = append(cells, NewCoordinates(k, line))
			}
		}

		if !anyIn(cells, forbidden) {
			return cells, nil
		}
	}
	return nil, cerr.ErrShipPlacementFailed(length, pg.maxAttempts)
}

func anyIn(cells []Coordinates, set *CellSet) bool {
	for _, c := range cells {
		if set.Has(c) {
			return true
		}
	}
	return false
}

// One cell ring just outside the grid.
func sentinelBorder(size int) *CellSet {
	border := NewCellSet(4 * size)
	for i := 0; i < size; i++ {
		border.Add(NewCoordinates(i, -1))
		border.Add(NewCoordinates(i, size))
		border.Add(NewCoordinates(-1, i))
		border.Add(NewCoordinates(size, i))
	}
	return border
}

// Every cell within Chebyshev distance 1 of the run, the run included.
func bufferZone(cells []Coordinates) []Coordinates {
	minX, maxX := cells[0].X, cells[0].X
	minY, maxY := cells[0].Y, cells[0].Y
	for _, c := range cells[1:] {
		minX, maxX = min(minX, c.X), max(maxX, c.X)
		minY, maxY = min(minY, c.Y), max(maxY, c.Y)
	}

	zone := make([]Coordinates, 0, (maxX-minX+3)*(maxY-minY+3))
	for x := minX - 1; x <= maxX+1; x++ {
		for y := minY - 1; y <= maxY+1; y++ {
			zone = append(zone, NewCoordinates(x, y))
		}
	}
	return zone
}
