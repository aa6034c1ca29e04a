package ai

import (
	mb "github.com/saeidalz13/battleship-heatmap/models/battleship"
)

// HeatMatrix holds one density value per cell, indexed [row][col].
// Values are placement counts, not normalized probabilities.
type HeatMatrix [][]int

func NewHeatMatrix(size int) HeatMatrix {
	hm := make(HeatMatrix, size)
	for i := range hm {
		hm[i] = make([]int, size)
	}
	return hm
}

func (hm HeatMatrix) Copy() HeatMatrix {
	out := make(HeatMatrix, len(hm))
	for i, row := range hm {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// Hottest returns the cell with the highest value. Ties go to the
// first one in row-major order. An all-zero matrix yields (0, 0).
func (hm HeatMatrix) Hottest() (mb.Coordinates, int) {
	var (
		best  mb.Coordinates
		value = -1
	)
	for i, row := range hm {
		for j, v := range row {
			if v > value {
				best, value = mb.NewCoordinates(i, j), v
			}
		}
	}
	return best, value
}

func (hm HeatMatrix) Max() int {
	_, v := hm.Hottest()
	return v
}

// windowIsLegal reports whether a run of length cells starting at start
// along line contains no shot cell.
func windowIsLegal(shots *mb.CellSet, line, start, length int, horizontal bool) bool {
	for k := start; k < start+length; k++ {
		if shots.Has(cellOnLine(line, k, horizontal)) {
			return false
		}
	}
	return true
}

func cellOnLine(line, k int, horizontal bool) mb.Coordinates {
	if horizontal {
		return mb.NewCoordinates(line, k)
	}
	return mb.NewCoordinates(k, line)
}

// SearchHeat places every ship length at every anchor, in both
// orientations, and counts for each cell the windows covering it that
// avoid all shot cells. Lengths are summed independently, so overlapping
// hypothetical ships are counted more than once.
func SearchHeat(size int, ships []int, shots *mb.CellSet) HeatMatrix {
	hm := NewHeatMatrix(size)

	for _, length := range ships {
		for _, horizontal := range []bool{true, false} {
			for line := 0; line < size; line++ {
				for start := 0; start <= size-length; start++ {
					if !windowIsLegal(shots, line, start, length, horizontal) {
						continue
					}
					for k := start; k < start+length; k++ {
						c := cellOnLine(line, k, horizontal)
						hm[c.X][c.Y]++
					}
				}
			}
		}
	}
	return hm
}
