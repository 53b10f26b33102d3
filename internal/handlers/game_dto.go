package handlers

import (
	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/vancomm/minesweeper-host/internal/mines"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// NewGameDTO fields left out of the query fall back to the host defaults.
type NewGameDTO struct {
	Rows      int `schema:"rows"`
	Cols      int `schema:"cols"`
	MineCount int `schema:"mine_count"`
}

func ParseNewGameDTO(src map[string][]string, defaults mines.Params) (mines.Params, error) {
	dto := NewGameDTO(defaults)
	err := decoder.Decode(&dto, src)
	return mines.Params(dto), err
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePosition(src map[string][]string) (PositionDTO, error) {
	var pos PositionDTO
	err := decoder.Decode(&pos, src)
	return pos, err
}

type GameSessionDTO struct {
	GameSessionId string         `json:"game_session_id"`
	Rows          int            `json:"rows"`
	Cols          int            `json:"cols"`
	MineCount     int            `json:"mine_count"`
	Status        mines.Status   `json:"status"`
	Flags         int            `json:"flags"`
	Grid          mines.Grid     `json:"grid"`
	Outcome       *mines.Outcome `json:"outcome,omitempty"`
	Token         string         `json:"token,omitempty"`
}

func NewGameSessionDTO(gameSessionId uuid.UUID, b *mines.Board) *GameSessionDTO {
	dto := &GameSessionDTO{
		GameSessionId: gameSessionId.String(),
		Rows:          b.Rows,
		Cols:          b.Cols,
		MineCount:     b.MineCount,
		Status:        b.Status(),
		Flags:         b.Flags(),
		Grid:          b.View(),
	}
	return dto
}

func (dto *GameSessionDTO) WithOutcome(o mines.Outcome) *GameSessionDTO {
	dto.Outcome = &o
	return dto
}
