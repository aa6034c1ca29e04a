package battleship

import (
	"strings"

	"github.com/dolthub/swiss"
	cerr "github.com/saeidalz13/battleship-heatmap/internal/error"
)

type ShotResult uint8

const (
	ShotResultWater ShotResult = iota
	ShotResultHit
	ShotResultSunken
	ShotResultWon
)

func (r ShotResult) String() string {
	switch r {
	case ShotResultWater:
		return "water"
	case ShotResultHit:
		return "hit"
	case ShotResultSunken:
		return "sunken"
	case ShotResultWon:
		return "won"
	default:
		return "unknown"
	}
}

const (
	PositionStateEmpty uint8 = iota
	PositionStateShip
)

type Board struct {
	size        int
	ships       []int
	placed      []*Ship
	activeShips []*Ship
	occupied    *swiss.Map[Coordinates, *Ship]
	shotCount   int

	rng                  Randomizer
	maxPlacementAttempts int
}

type BoardOption func(*Board) error

// Ships are placed at construction time with rng. Without this
// option the board starts empty and ships are added with PlaceShip.
func WithRandomPlacement(rng Randomizer) BoardOption {
	return func(b *Board) error {
		b.rng = rng
		return nil
	}
}

func WithMaxPlacementAttempts(attempts int) BoardOption {
	return func(b *Board) error {
		if attempts <= 0 {
			return cerr.ErrPlacementAttemptsInvalid(attempts)
		}
		b.maxPlacementAttempts = attempts
		return nil
	}
}

// NewBoard validates the configuration and copies shipLengths, so the
// caller is free to reuse or mutate its slice afterwards.
func NewBoard(size int, shipLengths []int, opts ...BoardOption) (*Board, error) {
	if err := ValidateConfiguration(size, shipLengths); err != nil {
		return nil, err
	}

	ships := make([]int, len(shipLengths))
	copy(ships, shipLengths)

	cellCount := 0
	for _, length := range ships {
		cellCount += length
	}

	b := &Board{
		size:                 size,
		ships:                ships,
		placed:               make([]*Ship, 0, len(ships)),
		activeShips:          make([]*Ship, 0, len(ships)),
		occupied:             swiss.NewMap[Coordinates, *Ship](uint32(cellCount)),
		maxPlacementAttempts: DefaultMaxPlacementAttempts,
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.rng != nil {
		if err := NewPlacementGenerator(b.rng, b.maxPlacementAttempts).Place(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func ValidateConfiguration(size int, shipLengths []int) error {
	if size <= 0 {
		return cerr.ErrGridSizeInvalid(size)
	}
	if len(shipLengths) == 0 {
		return cerr.ErrShipsEmpty()
	}
	for _, length := range shipLengths {
		if length <= 0 {
			return cerr.ErrShipLengthInvalid(length)
		}
		if length > size {
			return cerr.ErrShipTooLong(length, size)
		}
	}
	return nil
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) ShipLengths() []int {
	out := make([]int, len(b.ships))
	copy(out, b.ships)
	return out
}

func (b *Board) ShotCount() int {
	return b.shotCount
}

func (b *Board) ActiveShips() int {
	return len(b.activeShips)
}

// Footprint of every placed ship, sunk ones included, in placement order.
func (b *Board) Fleet() [][]Coordinates {
	fleet := make([][]Coordinates, 0, len(b.placed))
	for _, ship := range b.placed {
		fleet = append(fleet, ship.Cells())
	}
	return fleet
}

// PlaceShip commits the next configured ship at the given cells. Only
// bounds and overlap are checked; the buffer zone is a concern of the
// random generator, not of forced placements.
func (b *Board) PlaceShip(cells []Coordinates) error {
	if len(b.placed) == len(b.ships) {
		return cerr.ErrAllShipsPlaced()
	}

	length := b.ships[len(b.placed)]
	if len(cells) != length {
		return cerr.ErrShipCellsMismatch(length, len(cells))
	}

	for _, c := range cells {
		if !c.InBound(b.size) {
			return cerr.ErrXorYOutOfGridBound(c.X, c.Y)
		}
		if b.occupied.Has(c) {
			return cerr.ErrPositionAlreadyOccupied(c.X, c.Y)
		}
	}

	b.commit(cells)
	return nil
}

func (b *Board) commit(cells []Coordinates) {
	ship := NewShip(len(b.placed), cells)
	for _, c := range cells {
		b.occupied.Put(c, ship)
	}
	b.placed = append(b.placed, ship)
	b.activeShips = append(b.activeShips, ship)
}

// Shoot fires at (x, y). Every call counts as a shot, repeats included.
// A repeat on a cell that was already hit does not change any ship and
// is reported as water.
func (b *Board) Shoot(x, y int) ShotResult {
	b.shotCount++

	c := NewCoordinates(x, y)
	ship, prs := b.occupied.Get(c)
	if !prs {
		return ShotResultWater
	}

	if !ship.GotHit(c) {
		return ShotResultWater
	}

	if !ship.IsSunk() {
		return ShotResultHit
	}

	b.removeActiveShip(ship)
	if len(b.activeShips) == 0 {
		return ShotResultWon
	}
	return ShotResultSunken
}

func (b *Board) removeActiveShip(ship *Ship) {
	for i, s := range b.activeShips {
		if s == ship {
			b.activeShips = append(b.activeShips[:i], b.activeShips[i+1:]...)
			return
		}
	}
}

func (b *Board) IsWon() bool {
	return len(b.placed) > 0 && len(b.activeShips) == 0
}

// Grid view of ship positions: PositionStateShip where a ship was placed.
func (b *Board) Grid() Grid {
	grid := NewGrid(b.size)
	for _, ship := range b.placed {
		for _, c := range ship.cells {
			grid[c.X][c.Y] = PositionStateShip
		}
	}
	return grid
}

func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.Grid() {
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			if v == PositionStateShip {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
