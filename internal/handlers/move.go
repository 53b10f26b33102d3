package handlers

import (
	"errors"
	"strings"

	"github.com/vancomm/minesweeper-host/internal/mines"
)

type GameMove uint8

const (
	Reveal GameMove = iota + 1
	Flag
	Chord
)

func (m GameMove) String() string {
	switch m {
	case Reveal:
		return "reveal"
	case Flag:
		return "flag"
	case Chord:
		return "chord"
	default:
		return "unknown"
	}
}

var ErrBadMove = errors.New("move must be one of 'reveal', 'flag', 'chord'")

func ParseGameMove(s string) (move GameMove, err error) {
	switch strings.ToLower(s) {
	case "reveal", "open":
		move = Reveal
	case "flag":
		move = Flag
	case "chord":
		move = Chord
	default:
		err = ErrBadMove
	}
	return
}

func (m GameMove) Apply(b *mines.Board, row, col int) (mines.Outcome, error) {
	switch m {
	case Reveal:
		return b.Reveal(row, col)
	case Flag:
		return b.ToggleFlag(row, col)
	case Chord:
		return b.Chord(row, col)
	default:
		return mines.OutcomeIgnored, ErrBadMove
	}
}
