package ai

import (
	mb "github.com/saeidalz13/battleship-heatmap/models/battleship"
)

type Mode uint8

const (
	ModeSearch Mode = iota
	ModeTarget
)

func (m Mode) String() string {
	if m == ModeTarget {
		return "target"
	}
	return "search"
}

// Target is what the controller fires at.
type Target interface {
	Size() int
	ShipLengths() []int
	Shoot(x, y int) mb.ShotResult
}

// Snapshot is the state after one turn. It shares no memory with the
// controller.
type Snapshot struct {
	Turn   int              `json:"turn"`
	Shot   mb.Coordinates   `json:"shot"`
	Result mb.ShotResult    `json:"shot_result"`
	Mode   Mode             `json:"mode"`
	Heat   HeatMatrix       `json:"heat_matrix"`
	Sunken []mb.Coordinates `json:"sunken"`
}

type Controller struct {
	target Target
	size   int
	ships  []int
	turns  int

	// shots holds cells fired at as water plus cells ruled out around
	// sunk ships. hits are cells of the ship currently being targeted.
	shots  *mb.CellSet
	hits   []mb.Coordinates
	sunken []mb.Coordinates
	heat   HeatMatrix
}

func NewController(target Target) *Controller {
	size := target.Size()
	c := &Controller{
		target: target,
		size:   size,
		ships:  target.ShipLengths(),
		shots:  mb.NewCellSet(size * size),
		hits:   make([]mb.Coordinates, 0, size),
		sunken: make([]mb.Coordinates, 0, size*size),
	}
	c.heat = SearchHeat(c.size, c.ships, c.shots)
	return c
}

func (c *Controller) Mode() Mode {
	if len(c.hits) == 0 {
		return ModeSearch
	}
	return ModeTarget
}

func (c *Controller) Heat() HeatMatrix {
	return c.heat.Copy()
}

func (c *Controller) Sunken() []mb.Coordinates {
	out := make([]mb.Coordinates, len(c.sunken))
	copy(out, c.sunken)
	return out
}

func (c *Controller) Hits() []mb.Coordinates {
	out := make([]mb.Coordinates, len(c.hits))
	copy(out, c.hits)
	return out
}

func (c *Controller) IsExcluded(cell mb.Coordinates) bool {
	return c.shots.Has(cell)
}

func (c *Controller) TurnCount() int {
	return c.turns
}

// HotShot plays one turn: fire at the hottest cell of the current
// matrix, book the result, then rebuild the matrix for the next turn.
// Cells already ruled out carry no heat, so a shot cell is picked again
// only when the whole matrix is zero.
func (c *Controller) HotShot() Snapshot {
	cell, _ := c.heat.Hottest()
	result := c.target.Shoot(cell.X, cell.Y)
	c.turns++

	switch result {
	case mb.ShotResultHit:
		c.hits = append(c.hits, cell)
		c.sunken = append(c.sunken, cell)

	case mb.ShotResultSunken:
		c.hits = append(c.hits, cell)
		c.excludeAround(c.hits)
		c.sunken = append(c.sunken, cell)
		c.hits = c.hits[:0]

	case mb.ShotResultWon:
		for _, h := range c.hits {
			c.shots.Add(h)
		}
		c.sunken = append(c.sunken, cell)

	default:
		c.shots.Add(cell)
	}

	c.recompute()

	return Snapshot{
		Turn:   c.turns,
		Shot:   cell,
		Result: result,
		Mode:   c.Mode(),
		Heat:   c.heat.Copy(),
		Sunken: c.Sunken(),
	}
}

func (c *Controller) recompute() {
	if len(c.hits) == 0 {
		c.heat = SearchHeat(c.size, c.ships, c.shots)
		return
	}
	c.heat = TargetHeat(c.size, c.ships, c.shots, c.hits)
}

// excludeAround rules out the bounding box of cells grown by one in
// every direction, clipped to the grid.
func (c *Controller) excludeAround(cells []mb.Coordinates) {
	minX, maxX := cells[0].X, cells[0].X
	minY, maxY := cells[0].Y, cells[0].Y
	for _, cell := range cells[1:] {
		minX, maxX = min(minX, cell.X), max(maxX, cell.X)
		minY, maxY = min(minY, cell.Y), max(maxY, cell.Y)
	}

	for x := max(minX-1, 0); x <= min(maxX+1, c.size-1); x++ {
		for y := max(minY-1, 0); y <= min(maxY+1, c.size-1); y++ {
			c.shots.Add(mb.NewCoordinates(x, y))
		}
	}
}
