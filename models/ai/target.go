package ai

import (
	mb "github.com/saeidalz13/battleship-heatmap/models/battleship"
)

// TargetHeat concentrates density on the two cells extending the run
// of unresolved hits. A row is scanned only while every hit shares it,
// a column only while every hit shares it; a single hit scans both.
// Each legal window adds 1 to the extension cells it covers and
// nothing to the rest of the window.
func TargetHeat(size int, ships []int, shots *mb.CellSet, hits []mb.Coordinates) HeatMatrix {
	hm := NewHeatMatrix(size)
	if len(hits) == 0 {
		return hm
	}

	rows, minRow, maxRow := spread(hits, func(c mb.Coordinates) int { return c.X })
	cols, minCol, maxCol := spread(hits, func(c mb.Coordinates) int { return c.Y })

	for _, length := range ships {
		if rows == 1 {
			extend(hm, shots, hits[0].X, length, minCol, maxCol, true)
		}
		if cols == 1 {
			extend(hm, shots, hits[0].Y, length, minRow, maxRow, false)
		}
	}
	return hm
}

func extend(hm HeatMatrix, shots *mb.CellSet, line, length, lo, hi int, horizontal bool) {
	size := len(hm)
	for start := 0; start <= size-length; start++ {
		if !windowIsLegal(shots, line, start, length, horizontal) {
			continue
		}
		for k := start; k < start+length; k++ {
			if lo-k == 1 || k-hi == 1 {
				c := cellOnLine(line, k, horizontal)
				hm[c.X][c.Y]++
			}
		}
	}
}

// spread returns the number of distinct values of axis over cells
// together with their min and max.
func spread(cells []mb.Coordinates, axis func(mb.Coordinates) int) (distinct, lo, hi int) {
	seen := make(map[int]struct{}, len(cells))
	lo, hi = axis(cells[0]), axis(cells[0])
	for _, c := range cells {
		v := axis(c)
		seen[v] = struct{}{}
		lo, hi = min(lo, v), max(hi, v)
	}
	return len(seen), lo, hi
}
