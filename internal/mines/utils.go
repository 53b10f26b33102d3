package mines

// neighborhood returns the Moore neighborhood of (row, col) clipped to the
// board, inclusive on both ends.
func (p Params) neighborhood(row, col int) (fromRow, toRow, fromCol, toCol int) {
	fromRow, toRow = max(0, row-1), min(row+1, p.Rows-1)
	fromCol, toCol = max(0, col-1), min(col+1, p.Cols-1)
	return
}

func (p Params) neighbors(i int) []int {
	row, col := p.coords(i)
	fromRow, toRow, fromCol, toCol := p.neighborhood(row, col)
	indices := make([]int, 0, 8)
	for r := fromRow; r <= toRow; r++ {
		for c := fromCol; c <= toCol; c++ {
			if j := p.index(r, c); j != i {
				indices = append(indices, j)
			}
		}
	}
	return indices
}
