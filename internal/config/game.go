package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vancomm/minesweeper-host/internal/mines"
)

type Game struct {
	Defaults mines.Params
	MaxCells int
}

func NewGame() (*Game, error) {
	defaults := mines.DefaultParams
	if s, ok := os.LookupEnv("MINES_DEFAULT_PARAMS"); ok {
		p, err := mines.ParseParams(s)
		if err != nil {
			return nil, fmt.Errorf("MINES_DEFAULT_PARAMS: %w", err)
		}
		defaults = *p
	}

	maxCells, err := lookupInt("MINES_MAX_CELLS", 10_000)
	if err != nil {
		return nil, err
	}
	if maxCells < defaults.Cells() {
		return nil, fmt.Errorf(
			"MINES_MAX_CELLS (%d) is smaller than the default board (%d cells)",
			maxCells, defaults.Cells(),
		)
	}

	game := &Game{
		Defaults: defaults,
		MaxCells: maxCells,
	}

	return game, nil
}

// Check validates p and rejects boards larger than the host allows.
func (g Game) Check(p mines.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Cells() > g.MaxCells {
		return fmt.Errorf(
			"%w: board has %d cells, at most %d allowed",
			mines.ErrInvalidConfiguration, p.Cells(), g.MaxCells,
		)
	}
	return nil
}

type Session struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

func NewSession() (*Session, error) {
	idle, err := lookupDuration("SESSION_IDLE_TIMEOUT", time.Hour)
	if err != nil {
		return nil, err
	}
	sweep, err := lookupDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	return &Session{IdleTimeout: idle, SweepInterval: sweep}, nil
}
