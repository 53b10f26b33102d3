package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper-host/internal/mines"
	"github.com/vancomm/minesweeper-host/internal/repository"
)

type wsCommand string

const (
	wsNoop    wsCommand = "g"
	wsOpen    wsCommand = "o"
	wsFlag    wsCommand = "f"
	wsChord   wsCommand = "c"
	wsRestart wsCommand = "n"
)

var ErrUnknownCommand = errors.New("unknown command")

type gameExecutor struct {
	*GameHandler
	session *repository.GameSession
	outcome mines.Outcome
}

func (game *gameExecutor) move(m GameMove, args []string) error {
	row, col, err := parseRowCol(args)
	if err != nil {
		return err
	}
	return game.session.Do(func(b *mines.Board) error {
		outcome, err := m.Apply(b, row, col)
		if err != nil {
			return err
		}
		if outcome != mines.OutcomeIgnored {
			game.logGameOver(game.session.GameSessionId, b)
		}
		game.outcome = outcome
		return nil
	})
}

func (game *gameExecutor) execute(query string) error {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsNoop:
		return nil
	case wsOpen:
		return game.move(Reveal, args)
	case wsFlag:
		return game.move(Flag, args)
	case wsChord:
		return game.move(Chord, args)
	case wsRestart:
		game.outcome = mines.OutcomeIgnored
		return game.session.Reset(game.newBoard)
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
	}
}

func (game *gameExecutor) over() (over bool) {
	game.session.Do(func(b *mines.Board) error {
		over = b.Status() != mines.InProgress
		return nil
	})
	return
}

// runCommands executes one frame, a newline separated list of commands,
// stopping early once the game ends.
func (game *gameExecutor) runCommands(message string) any {
	game.outcome = mines.OutcomeIgnored
	for _, line := range strings.Split(strings.TrimSpace(message), "\n") {
		if err := game.execute(strings.TrimSpace(line)); err != nil {
			return wrapError(err)
		}
		if game.over() {
			break
		}
	}
	return game.state().WithOutcome(game.outcome)
}

func (game *gameExecutor) state() (dto *GameSessionDTO) {
	game.session.Do(func(b *mines.Board) error {
		dto = NewGameSessionDTO(game.session.GameSessionId, b)
		return nil
	})
	return
}

func (game *gameExecutor) write(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(game.ws.WriteTimeout))
	if err := conn.WriteJSON(v); err != nil {
		return fmt.Errorf("unable to write json: %w", err)
	}
	return nil
}

func (game *gameExecutor) wsRunGameLoop(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(game.ws.MaxMessageSize)

	if err := game.write(conn, game.state()); err != nil {
		return err
	}

	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if mt != websocket.TextMessage {
			return nil
		}

		if err := game.write(conn, game.runCommands(string(buf))); err != nil {
			return err
		}
	}
}

func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	session, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	g.logger.Debug(
		"established WS connection",
		slog.String("id", session.GameSessionId.String()),
	)

	game := &gameExecutor{GameHandler: g, session: session}
	err = game.wsRunGameLoop(ctx, conn)
	if err != nil &&
		!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
		ctx.Err() == nil {
		g.logger.Warn("error in ws loop", slog.Any("error", err))
	}
}

func parseRowCol(args []string) (row int, col int, err error) {
	if len(args) != 2 {
		err = fmt.Errorf("expected 2 arguments, got %d", len(args))
		return
	}
	if row, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("row must be an int")
		return
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("col must be an int")
		return
	}
	return
}
