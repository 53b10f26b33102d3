package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Hidden   CellState = -2
	Flagged  CellState = -1
	Mine     CellState = 64 // revealed when the game was lost
	Exploded CellState = 65 // the mine the player hit
	// 0-8 for a revealed safe cell with that many mined neighbors
)

func (s CellState) String() string {
	switch s {
	case Hidden:
		return "-"
	case Flagged:
		return "F"
	case Mine:
		return "*"
	case Exploded:
		return "X"
	case 0:
		return "."
	case 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			if x > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, g[y*width+x].String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
