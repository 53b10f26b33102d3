package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vancomm/minesweeper-host/internal/handlers"
	"github.com/vancomm/minesweeper-host/internal/middleware"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) Router() *mux.Router {
	game := handlers.NewGameHandler(
		a.logger, a.repo, a.game, a.jwt, a.cookies, a.ws, createRand(),
	)

	root := mux.NewRouter()
	router := root
	if a.basePath != "" {
		router = root.PathPrefix(a.basePath).Subrouter()
	}

	router.Methods("GET").Path("/status").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	gameRouter := router.PathPrefix("/game").Subrouter()
	gameRouter.Use(mux.MiddlewareFunc(middleware.Auth(a.logger, a.jwt, a.cookies)))
	gameRouter.Methods("GET").Path("/defaults").HandlerFunc(game.Defaults)
	gameRouter.Methods("GET").Path("/{id}/connect").HandlerFunc(game.ConnectWS)
	gameRouter.Methods("POST").Path("/{id}/move").HandlerFunc(game.MakeAMove)
	gameRouter.Methods("POST").Path("/{id}/restart").HandlerFunc(game.Restart)
	gameRouter.Methods("GET").Path("/{id}").HandlerFunc(game.Fetch)
	gameRouter.Methods("DELETE").Path("/{id}").HandlerFunc(game.Delete)
	gameRouter.Methods("POST").Path("").HandlerFunc(game.NewGame)

	return root
}
