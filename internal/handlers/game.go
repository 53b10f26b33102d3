package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper-host/internal/config"
	"github.com/vancomm/minesweeper-host/internal/mines"
	"github.com/vancomm/minesweeper-host/internal/repository"
)

var ErrBadSessionId = fmt.Errorf("invalid game session id")

type GameHandler struct {
	logger  *slog.Logger
	repo    *repository.Queries
	game    *config.Game
	jwt     *config.JWT
	cookies *config.Cookies
	ws      *config.WebSocket

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewGameHandler(
	logger *slog.Logger,
	repo *repository.Queries,
	game *config.Game,
	jwt *config.JWT,
	cookies *config.Cookies,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *GameHandler {
	handler := &GameHandler{
		logger:  logger,
		repo:    repo,
		game:    game,
		jwt:     jwt,
		cookies: cookies,
		ws:      ws,
		rnd:     rnd,
	}

	return handler
}

func (g *GameHandler) newBoard(p mines.Params) (*mines.Board, error) {
	g.rndMu.Lock()
	defer g.rndMu.Unlock()
	return mines.New(p, g.rnd)
}

func (g *GameHandler) fetchSession(w http.ResponseWriter, r *http.Request) (*repository.GameSession, bool) {
	sessionId, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, ErrBadSessionId)
		return nil, false
	}

	session, err := g.repo.FetchGameSession(sessionId)
	if errors.Is(err, repository.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch game session", slog.Any("error", err))
		return nil, false
	}

	return session, true
}

func (g *GameHandler) logGameOver(id uuid.UUID, b *mines.Board) {
	if b.Status() == mines.InProgress {
		return
	}
	g.logger.Info(
		"game over",
		slog.String("id", id.String()),
		slog.String("params", b.Params.String()),
		slog.String("status", b.Status().String()),
	)
}

func (g *GameHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, http.StatusOK, g.game.Defaults)
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseNewGameDTO(r.URL.Query(), g.game.Defaults)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	if err := g.game.Check(params); err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	board, err := g.newBoard(params)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to generate a new game", slog.Any("error", err))
		return
	}

	session := g.repo.CreateGameSession(board)
	id := session.GameSessionId

	token, err := g.jwt.SignGame(id)
	if err != nil {
		g.repo.DeleteGameSession(id)
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to create a game token", slog.Any("error", err))
		return
	}
	g.cookies.Refresh(w, id, token, g.jwt.TokenLifetime())

	g.logger.Debug(
		"created game session",
		slog.String("id", id.String()),
		slog.String("params", params.String()),
	)

	var dto *GameSessionDTO
	session.Do(func(b *mines.Board) error {
		dto = NewGameSessionDTO(id, b)
		return nil
	})
	dto.Token = token

	sendJSONOrLog(w, g.logger, http.StatusCreated, dto)
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	var dto *GameSessionDTO
	session.Do(func(b *mines.Board) error {
		dto = NewGameSessionDTO(session.GameSessionId, b)
		return nil
	})

	sendJSONOrLog(w, g.logger, http.StatusOK, dto)
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	move, err := ParseGameMove(query.Get("move"))
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	pos, err := ParsePosition(query)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	var dto *GameSessionDTO
	err = session.Do(func(b *mines.Board) error {
		outcome, err := move.Apply(b, pos.Row, pos.Col)
		if err != nil {
			return err
		}
		if outcome != mines.OutcomeIgnored {
			g.logGameOver(session.GameSessionId, b)
		}
		dto = NewGameSessionDTO(session.GameSessionId, b).WithOutcome(outcome)
		return nil
	})
	if errors.Is(err, mines.ErrOutOfBounds) {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to apply move", slog.Any("error", err))
		return
	}

	sendJSONOrLog(w, g.logger, http.StatusOK, dto)
}

func (g *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	if err := session.Reset(g.newBoard); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to restart game", slog.Any("error", err))
		return
	}

	var dto *GameSessionDTO
	session.Do(func(b *mines.Board) error {
		dto = NewGameSessionDTO(session.GameSessionId, b)
		return nil
	})

	sendJSONOrLog(w, g.logger, http.StatusOK, dto)
}

func (g *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	err := g.repo.DeleteGameSession(session.GameSessionId)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to delete game session", slog.Any("error", err))
		return
	}

	g.cookies.Clear(w, session.GameSessionId)
	w.WriteHeader(http.StatusNoContent)
}
