package mines

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Params struct {
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
	MineCount int `json:"mine_count"`
}

// DefaultParams is the classic 10x10 board with 15 mines.
var DefaultParams = Params{Rows: 10, Cols: 10, MineCount: 15}

func (p Params) Cells() int {
	return p.Rows * p.Cols
}

func (p Params) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf(
			"%w: dimensions must be positive (rows = %d, cols = %d)",
			ErrInvalidConfiguration, p.Rows, p.Cols,
		)
	}
	if p.Cols > math.MaxInt/p.Rows {
		return fmt.Errorf(
			"%w: %dx%d board is too large",
			ErrInvalidConfiguration, p.Rows, p.Cols,
		)
	}
	if p.MineCount <= 0 || p.MineCount >= p.Cells() {
		return fmt.Errorf(
			"%w: mine count must be in (0, %d), got %d",
			ErrInvalidConfiguration, p.Cells(), p.MineCount,
		)
	}
	return nil
}

// String returns the params in the rows:cols:mines form accepted by
// [ParseParams].
func (p Params) String() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.MineCount)
}

func ParseParams(s string) (*Params, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return nil, fmt.Errorf(
			`invalid game params (s = "%s"): want rows:cols:mines`, s,
		)
	}
	var values [3]int
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf(`invalid game params (s = "%s"): %w`, s, err)
		}
		values[i] = v
	}
	p := &Params{Rows: values[0], Cols: values[1], MineCount: values[2]}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p Params) InBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

func (p Params) index(row, col int) int {
	return row*p.Cols + col
}

func (p Params) coords(i int) (row, col int) {
	return i / p.Cols, i % p.Cols
}

func (p Params) checkedIndex(row, col int) (int, error) {
	if !p.InBounds(row, col) {
		return 0, fmt.Errorf(
			"%w: (%d, %d) on a %dx%d board",
			ErrOutOfBounds, row, col, p.Rows, p.Cols,
		)
	}
	return p.index(row, col), nil
}
