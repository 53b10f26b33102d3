package mines

import (
	"fmt"
	"math/rand/v2"
)

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func newBoard(p Params) *Board {
	n := p.Cells()
	return &Board{
		Params:   p,
		mines:    make([]bool, n),
		adjacent: make([]int8, n),
		revealed: make([]bool, n),
		flagged:  make([]bool, n),
		covered:  n - p.MineCount,
		exploded: -1,
	}
}

// placeMines drops mines on random cells, skipping cells that already hold
// one, until MineCount distinct cells are mined.
func (b *Board) placeMines(r *rand.Rand) {
	for placed := 0; placed < b.MineCount; {
		i := b.index(r.IntN(b.Rows), r.IntN(b.Cols))
		if b.mines[i] {
			continue
		}
		b.mines[i] = true
		placed++
	}
}

func (b *Board) countAdjacent() {
	for i := range b.mines {
		if b.mines[i] {
			continue
		}
		var n int8
		for _, j := range b.neighbors(i) {
			if b.mines[j] {
				n++
			}
		}
		b.adjacent[i] = n
	}
}

// New generates a board for p. r must not be nil; seed it to reproduce a
// board.
func New(p Params, r *rand.Rand) (*Board, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := newBoard(p)
	b.placeMines(r)
	b.countAdjacent()
	Log.WithField("params", p.String()).Debug("generated board")
	return b, nil
}

// FromLayout builds a board with mines at exactly the given points.
func FromLayout(rows, cols int, mines []Point) (*Board, error) {
	p := Params{Rows: rows, Cols: cols, MineCount: len(mines)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := newBoard(p)
	for _, pt := range mines {
		if !p.InBounds(pt.Row, pt.Col) {
			return nil, fmt.Errorf(
				"%w: mine (%d, %d) outside a %dx%d board",
				ErrInvalidConfiguration, pt.Row, pt.Col, rows, cols,
			)
		}
		i := p.index(pt.Row, pt.Col)
		if b.mines[i] {
			return nil, fmt.Errorf(
				"%w: duplicate mine at (%d, %d)",
				ErrInvalidConfiguration, pt.Row, pt.Col,
			)
		}
		b.mines[i] = true
	}
	b.countAdjacent()
	return b, nil
}

// Mines lists mine coordinates in row-major order.
func (b *Board) Mines() []Point {
	points := make([]Point, 0, b.MineCount)
	for i, mine := range b.mines {
		if mine {
			row, col := b.coords(i)
			points = append(points, Point{row, col})
		}
	}
	return points
}
