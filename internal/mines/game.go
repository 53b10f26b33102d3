package mines

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Status int8

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{InProgress, Won, Lost} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Outcome describes what a single move did to the board.
type Outcome int8

const (
	OutcomeIgnored Outcome = iota
	OutcomeContinue
	OutcomeWon
	OutcomeExploded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeContinue:
		return "continue"
	case OutcomeWon:
		return "won"
	case OutcomeExploded:
		return "exploded"
	default:
		return "unknown"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for _, v := range []Outcome{OutcomeIgnored, OutcomeContinue, OutcomeWon, OutcomeExploded} {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Board is the state of one game. It is not safe for concurrent use.
type Board struct {
	Params
	mines    []bool /* real mine points */
	adjacent []int8
	revealed []bool
	flagged  []bool
	covered  int /* safe cells not yet revealed */
	exploded int /* index of the mine that went off, or -1 */
}

func (b *Board) Status() Status {
	switch {
	case b.exploded >= 0:
		return Lost
	case b.covered == 0:
		return Won
	default:
		return InProgress
	}
}

func (b *Board) Reveal(row, col int) (Outcome, error) {
	i, err := b.checkedIndex(row, col)
	if err != nil {
		return OutcomeIgnored, err
	}
	if b.Status() != InProgress || b.revealed[i] || b.flagged[i] {
		return OutcomeIgnored, nil
	}
	return b.open(i), nil
}

func (b *Board) ToggleFlag(row, col int) (Outcome, error) {
	i, err := b.checkedIndex(row, col)
	if err != nil {
		return OutcomeIgnored, err
	}
	if b.Status() != InProgress || b.revealed[i] {
		return OutcomeIgnored, nil
	}
	b.flagged[i] = !b.flagged[i]
	return OutcomeContinue, nil
}

// Chord opens every unflagged covered neighbor of a revealed number once the
// player has flagged as many neighbors as the number says.
func (b *Board) Chord(row, col int) (Outcome, error) {
	i, err := b.checkedIndex(row, col)
	if err != nil {
		return OutcomeIgnored, err
	}
	if b.Status() != InProgress || !b.revealed[i] || b.adjacent[i] == 0 {
		return OutcomeIgnored, nil
	}

	neighbors := b.neighbors(i)
	var flags int8
	for _, j := range neighbors {
		if b.flagged[j] {
			flags++
		}
	}
	if flags != b.adjacent[i] {
		return OutcomeIgnored, nil
	}

	outcome := OutcomeIgnored
	for _, j := range neighbors {
		if b.Status() != InProgress {
			break
		}
		if b.revealed[j] || b.flagged[j] {
			continue
		}
		outcome = b.open(j)
	}
	return outcome, nil
}

func (b *Board) open(i int) Outcome {
	if b.mines[i] {
		b.explode(i)
		return OutcomeExploded
	}
	b.flood(i)
	if b.covered == 0 {
		Log.WithField("params", b.Params.String()).Debug("board cleared")
		return OutcomeWon
	}
	return OutcomeContinue
}

// flood reveals i and, through every zero cell it reaches, the connected
// zero region plus its numbered border. Flagged cells are never opened.
// A cell is marked revealed before it is queued, so each is visited once.
func (b *Board) flood(i int) {
	var todo deque.Deque[int]
	b.uncover(i)
	todo.PushBack(i)
	for todo.Len() > 0 {
		k := todo.PopFront()
		if b.adjacent[k] != 0 {
			continue
		}
		for _, j := range b.neighbors(k) {
			if b.revealed[j] || b.flagged[j] {
				continue
			}
			b.uncover(j)
			todo.PushBack(j)
		}
	}
}

func (b *Board) uncover(i int) {
	b.revealed[i] = true
	b.covered--
}

func (b *Board) explode(i int) {
	b.exploded = i
	for j, mine := range b.mines {
		if mine {
			b.revealed[j] = true
			b.flagged[j] = false
		}
	}
	row, col := b.coords(i)
	Log.WithFields(logrus.Fields{
		"params": b.Params.String(),
		"row":    row,
		"col":    col,
	}).Debug("mine exploded")
}

// Flags counts flags currently placed. It is not checked against MineCount.
func (b *Board) Flags() (n int) {
	for _, f := range b.flagged {
		if f {
			n++
		}
	}
	return
}

// CellView is what a player may know about a cell. Mine and Adjacent are
// only filled in once the cell is revealed.
type CellView struct {
	Revealed bool `json:"revealed"`
	Flagged  bool `json:"flagged"`
	Mine     bool `json:"mine"`
	Adjacent int  `json:"adjacent"`
}

func (b *Board) Cell(row, col int) (CellView, error) {
	i, err := b.checkedIndex(row, col)
	if err != nil {
		return CellView{}, err
	}
	v := CellView{Revealed: b.revealed[i], Flagged: b.flagged[i]}
	if v.Revealed {
		v.Mine = b.mines[i]
		if !v.Mine {
			v.Adjacent = int(b.adjacent[i])
		}
	}
	return v, nil
}

// View renders the player's knowledge of the board, one [CellState] per cell
// in row-major order.
func (b *Board) View() Grid {
	grid := make(Grid, len(b.mines))
	for i := range grid {
		switch {
		case b.flagged[i]:
			grid[i] = Flagged
		case !b.revealed[i]:
			grid[i] = Hidden
		case i == b.exploded:
			grid[i] = Exploded
		case b.mines[i]:
			grid[i] = Mine
		default:
			grid[i] = CellState(b.adjacent[i])
		}
	}
	return grid
}

func (b *Board) String() string {
	return b.View().ToString(b.Cols)
}
