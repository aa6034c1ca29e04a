package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/saeidalz13/battleship-heatmap/models/ai"
	mb "github.com/saeidalz13/battleship-heatmap/models/battleship"
)

// SunkSentinel sits below every real heat value.
const SunkSentinel = -1

var (
	sunkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	hotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle = lipgloss.NewStyle().Underline(true)
	panelStyle = lipgloss.NewStyle().PaddingRight(3).PaddingBottom(1)
)

// Mark returns a copy of heat with every sunk cell set to SunkSentinel.
func Mark(heat ai.HeatMatrix, sunken []mb.Coordinates) [][]int {
	marked := make([][]int, len(heat))
	for i := range heat {
		marked[i] = append([]int(nil), heat[i]...)
	}

	for _, c := range sunken {
		if c.InBound(len(marked)) {
			marked[c.X][c.Y] = SunkSentinel
		}
	}
	return marked
}

// Columns is the panel count per row for n snapshots.
func Columns(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Panel draws one marked matrix. Each cell takes width characters.
func Panel(title string, cells [][]int, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))

	hottest := 0
	for _, row := range cells {
		for _, v := range row {
			if v > hottest {
				hottest = v
			}
		}
	}

	for _, row := range cells {
		sb.WriteByte('\n')
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}

			switch {
			case v == SunkSentinel:
				sb.WriteString(sunkStyle.Render(pad("X", width)))
			case v == 0:
				sb.WriteString(pad(".", width))
			case v == hottest:
				sb.WriteString(hotStyle.Render(pad(strconv.Itoa(v), width)))
			default:
				sb.WriteString(pad(strconv.Itoa(v), width))
			}
		}
	}
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// Render lays the snapshots out in rows of Columns(len(snaps)) panels.
func Render(snaps []ai.Snapshot) string {
	cols := Columns(len(snaps))
	if cols == 0 {
		return ""
	}

	width := 1
	for _, snap := range snaps {
		if w := len(strconv.Itoa(snap.Heat.Max())); w > width {
			width = w
		}
	}

	rows := make([]string, 0, (len(snaps)+cols-1)/cols)
	for start := 0; start < len(snaps); start += cols {
		end := min(start+cols, len(snaps))

		panels := make([]string, 0, cols)
		for _, snap := range snaps[start:end] {
			title := fmt.Sprintf("turn %d %s", snap.Turn, snap.Result)
			panels = append(panels, panelStyle.Render(Panel(title, Mark(snap.Heat, snap.Sunken), width)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func Write(w io.Writer, snaps []ai.Snapshot) error {
	out := Render(snaps)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
