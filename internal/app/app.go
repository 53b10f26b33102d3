package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-host/internal/config"
	"github.com/vancomm/minesweeper-host/internal/middleware"
	"github.com/vancomm/minesweeper-host/internal/repository"
)

type App struct {
	logger   *slog.Logger
	addr     string
	basePath string
	repo     *repository.Queries
	game     *config.Game
	session  *config.Session
	jwt      *config.JWT
	cookies  *config.Cookies
	ws       *config.WebSocket
}

func New(logger *slog.Logger) (*App, error) {
	game, err := config.NewGame()
	if err != nil {
		return nil, fmt.Errorf("unable to read game config: %w", err)
	}

	session, err := config.NewSession()
	if err != nil {
		return nil, fmt.Errorf("unable to read session config: %w", err)
	}

	jwt, err := config.NewJWT()
	if err != nil {
		return nil, fmt.Errorf("unable to read jwt config: %w", err)
	}

	cookies, err := config.NewCookies()
	if err != nil {
		return nil, fmt.Errorf("unable to read cookies config: %w", err)
	}

	ws, err := config.NewWebSocket()
	if err != nil {
		return nil, fmt.Errorf("unable to read ws config: %w", err)
	}

	app := &App{
		logger:   logger,
		addr:     config.Port(),
		basePath: config.BasePath(),
		repo:     repository.New(),
		game:     game,
		session:  session,
		jwt:      jwt,
		cookies:  cookies,
		ws:       ws,
	}

	return app, nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.Router(),
		middleware.Logging(a.logger),
		middleware.Cors(),
	)
}

func (a *App) sweepSessions(ctx context.Context) error {
	ticker := time.NewTicker(a.session.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := a.repo.Sweep(now, a.session.IdleTimeout); n > 0 {
				a.logger.Info(
					"dropped idle game sessions",
					slog.Int("dropped", n),
					slog.Int("remaining", a.repo.Count()),
				)
			}
		}
	}
}

// Start serves until ctx is cancelled or the listener fails.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         a.addr,
		Handler:      a.Handler(),
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info(
			"minesweeper host listening",
			slog.String("addr", a.addr),
			slog.String("base path", a.basePath),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	g.Go(func() error {
		return a.sweepSessions(gCtx)
	})

	return g.Wait()
}
