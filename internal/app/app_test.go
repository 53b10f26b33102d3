package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-host/internal/config"
	"github.com/vancomm/minesweeper-host/internal/handlers"
	"github.com/vancomm/minesweeper-host/internal/mines"
	"github.com/vancomm/minesweeper-host/internal/repository"
)

func newTestApp(basePath string) *App {
	return &App{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		basePath: basePath,
		repo:     repository.New(),
		game:     &config.Game{Defaults: mines.DefaultParams, MaxCells: 400},
		session:  &config.Session{IdleTimeout: time.Hour, SweepInterval: time.Minute},
		jwt:      config.NewJWTWithSecret([]byte(strings.Repeat("s", 32)), time.Hour),
		cookies: &config.Cookies{
			SameSite: http.SameSiteStrictMode,
			BasePath: basePath,
		},
		ws: &config.WebSocket{
			Upgrader:       websocket.Upgrader{},
			MaxMessageSize: 4096,
			WriteTimeout:   time.Second,
		},
	}
}

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func (c *client) do(method, path string, query url.Values) *http.Response {
	c.t.Helper()
	u := c.server.URL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, nil)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func setup(t *testing.T) (*App, *client) {
	a := newTestApp("")
	server := httptest.NewServer(a.Handler())
	t.Cleanup(server.Close)
	return a, &client{t: t, server: server}
}

// plant registers a session on a known layout and returns a client holding
// its token.
func plant(t *testing.T, a *App, c *client, rows, cols int, layout []mines.Point) uuid.UUID {
	b, err := mines.FromLayout(rows, cols, layout)
	require.NoError(t, err)
	session := a.repo.CreateGameSession(b)
	token, err := a.jwt.SignGame(session.GameSessionId)
	require.NoError(t, err)
	c.token = token
	return session.GameSessionId
}

func TestStatus(t *testing.T) {
	_, c := setup(t)
	res := c.do("GET", "/status", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, "OK", string(body))
}

func TestDefaults(t *testing.T) {
	_, c := setup(t)
	res := c.do("GET", "/game/defaults", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, mines.DefaultParams, decode[mines.Params](t, res))
}

func TestNewGame(t *testing.T) {
	a, c := setup(t)

	res := c.do("POST", "/game", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	dto := decode[handlers.GameSessionDTO](t, res)

	assert.Equal(t, 10, dto.Rows)
	assert.Equal(t, 10, dto.Cols)
	assert.Equal(t, 15, dto.MineCount)
	assert.Equal(t, mines.InProgress, dto.Status)
	assert.Zero(t, dto.Flags)
	assert.NotEmpty(t, dto.Token)
	require.Len(t, dto.Grid, 100)
	for _, cell := range dto.Grid {
		assert.Equal(t, mines.Hidden, cell)
	}

	id, err := uuid.Parse(dto.GameSessionId)
	require.NoError(t, err)
	_, err = a.repo.FetchGameSession(id)
	assert.NoError(t, err)

	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/game/"+dto.GameSessionId, cookies[0].Path)
	assert.Equal(t, dto.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestNewGameParams(t *testing.T) {
	_, c := setup(t)

	res := c.do("POST", "/game", url.Values{"rows": {"5"}, "cols": {"6"}, "mine_count": {"3"}})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	dto := decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, 5, dto.Rows)
	assert.Equal(t, 6, dto.Cols)
	assert.Equal(t, 3, dto.MineCount)
	assert.Len(t, dto.Grid, 30)

	testCases := []struct {
		name  string
		query url.Values
	}{
		{"too many mines", url.Values{"rows": {"3"}, "cols": {"3"}, "mine_count": {"9"}}},
		{"no mines", url.Values{"mine_count": {"0"}}},
		{"zero rows", url.Values{"rows": {"0"}}},
		{"too large", url.Values{"rows": {"100"}, "cols": {"100"}}},
		{"cell count overflows", url.Values{"rows": {"3"}, "cols": {"6148914691236517206"}, "mine_count": {"1"}}},
		{"not a number", url.Values{"rows": {"abc"}}},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			res := c.do("POST", "/game", test.query)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			body := decode[map[string]string](t, res)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGameAuth(t *testing.T) {
	a, c := setup(t)
	id := plant(t, a, c, 4, 4, []mines.Point{{Row: 0, Col: 0}, {Row: 3, Col: 3}})
	ownToken := c.token
	other := plant(t, a, c, 4, 4, []mines.Point{{Row: 0, Col: 0}})

	c.token = ""
	res := c.do("GET", "/game/"+id.String(), nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	c.token = "not-a-token"
	res = c.do("GET", "/game/"+id.String(), nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	foreign := config.NewJWTWithSecret([]byte(strings.Repeat("x", 32)), time.Hour)
	c.token, _ = foreign.SignGame(id)
	res = c.do("GET", "/game/"+id.String(), nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	c.token = ownToken
	res = c.do("GET", "/game/"+other.String(), nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res = c.do("GET", "/game/"+id.String(), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto := decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, id.String(), dto.GameSessionId)
	assert.Empty(t, dto.Token)

	c.token = ""
	req, err := http.NewRequest("GET", c.server.URL+"/game/"+id.String(), nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "game", Value: ownToken})
	res, err = c.server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestMakeAMove(t *testing.T) {
	a, c := setup(t)
	id := plant(t, a, c, 4, 4, []mines.Point{{Row: 0, Col: 0}, {Row: 3, Col: 3}})
	path := "/game/" + id.String() + "/move"

	res := c.do("POST", path, url.Values{"move": {"flag"}, "row": {"0"}, "col": {"0"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto := decode[handlers.GameSessionDTO](t, res)
	require.NotNil(t, dto.Outcome)
	assert.Equal(t, mines.OutcomeContinue, *dto.Outcome)
	assert.Equal(t, 1, dto.Flags)
	assert.Equal(t, mines.Flagged, dto.Grid[0])

	res = c.do("POST", path, url.Values{"move": {"reveal"}, "row": {"0"}, "col": {"0"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto = decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, mines.OutcomeIgnored, *dto.Outcome)

	res = c.do("POST", path, url.Values{"move": {"reveal"}, "row": {"1"}, "col": {"1"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto = decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, mines.OutcomeContinue, *dto.Outcome)
	assert.Equal(t, mines.CellState(1), dto.Grid[1*4+1])

	res = c.do("POST", path, url.Values{"move": {"reveal"}, "row": {"0"}, "col": {"3"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto = decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, mines.OutcomeWon, *dto.Outcome)
	assert.Equal(t, mines.Won, dto.Status)

	res = c.do("POST", path, url.Values{"move": {"reveal"}, "row": {"3"}, "col": {"3"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto = decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, mines.OutcomeIgnored, *dto.Outcome)
	assert.Equal(t, mines.Won, dto.Status)
}

func TestMakeAMoveBadRequest(t *testing.T) {
	a, c := setup(t)
	id := plant(t, a, c, 4, 4, []mines.Point{{Row: 0, Col: 0}})
	path := "/game/" + id.String() + "/move"

	testCases := []struct {
		name  string
		query url.Values
	}{
		{"unknown move", url.Values{"move": {"dig"}, "row": {"0"}, "col": {"0"}}},
		{"missing move", url.Values{"row": {"0"}, "col": {"0"}}},
		{"missing col", url.Values{"move": {"reveal"}, "row": {"0"}}},
		{"row out of bounds", url.Values{"move": {"reveal"}, "row": {"4"}, "col": {"0"}}},
		{"negative col", url.Values{"move": {"flag"}, "row": {"0"}, "col": {"-1"}}},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			res := c.do("POST", path, test.query)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		})
	}
}

func TestExplodeAndRestart(t *testing.T) {
	a, c := setup(t)
	id := plant(t, a, c, 4, 4, []mines.Point{{Row: 0, Col: 0}, {Row: 3, Col: 3}})

	res := c.do("POST", "/game/"+id.String()+"/move", url.Values{"move": {"open"}, "row": {"3"}, "col": {"3"}})
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto := decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, mines.OutcomeExploded, *dto.Outcome)
	assert.Equal(t, mines.Lost, dto.Status)
	assert.Equal(t, mines.Exploded, dto.Grid[15])
	assert.Equal(t, mines.Mine, dto.Grid[0])

	res = c.do("POST", "/game/"+id.String()+"/restart", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	dto = decode[handlers.GameSessionDTO](t, res)
	assert.Equal(t, id.String(), dto.GameSessionId)
	assert.Equal(t, mines.InProgress, dto.Status)
	assert.Equal(t, 2, dto.MineCount)
	for _, cell := range dto.Grid {
		assert.Equal(t, mines.Hidden, cell)
	}
}

func TestDelete(t *testing.T) {
	a, c := setup(t)
	id := plant(t, a, c, 4, 4, []mines.Point{{Row: 0, Col: 0}})

	res := c.do("DELETE", "/game/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Zero(t, a.repo.Count())

	res = c.do("GET", "/game/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestBadSessionId(t *testing.T) {
	a, c := setup(t)
	token, err := a.jwt.SignGame(uuid.Nil)
	require.NoError(t, err)
	c.token = token

	res := c.do("GET", "/game/"+uuid.Nil.String(), nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestBasePath(t *testing.T) {
	a := newTestApp("/api")
	server := httptest.NewServer(a.Handler())
	defer server.Close()
	c := &client{t: t, server: server}

	res := c.do("GET", "/api/status", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res = c.do("GET", "/status", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = c.do("POST", "/api/game", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	dto := decode[handlers.GameSessionDTO](t, res)
	require.Len(t, res.Cookies(), 1)
	assert.Equal(t, "/api/game/"+dto.GameSessionId, res.Cookies()[0].Path)
}

func TestSweepSessions(t *testing.T) {
	a := newTestApp("")
	a.session = &config.Session{IdleTimeout: time.Millisecond, SweepInterval: 5 * time.Millisecond}
	b, err := mines.FromLayout(2, 2, []mines.Point{{Row: 0, Col: 0}})
	require.NoError(t, err)
	a.repo.CreateGameSession(b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- a.sweepSessions(ctx) }()

	assert.Eventually(t, func() bool { return a.repo.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func dialGame(t *testing.T, c *client, id uuid.UUID) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(c.server.URL, "http") +
		"/game/" + id.String() + "/connect?token=" + url.QueryEscape(c.token)
	conn, res, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer res.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, message string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(message)))
}

func readJSON[T any](t *testing.T, conn *websocket.Conn) T {
	t.Helper()
	var v T
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&v))
	return v
}

func TestWebSocketGame(t *testing.T) {
	a, c := setup(t)
	id := plant(t, a, c, 4, 4, []mines.Point{{Row: 0, Col: 0}, {Row: 3, Col: 3}})
	conn := dialGame(t, c, id)

	state := readJSON[handlers.GameSessionDTO](t, conn)
	assert.Equal(t, id.String(), state.GameSessionId)
	assert.Nil(t, state.Outcome)

	send(t, conn, "g")
	state = readJSON[handlers.GameSessionDTO](t, conn)
	assert.Equal(t, mines.OutcomeIgnored, *state.Outcome)

	send(t, conn, "f 0 0\no 1 1")
	state = readJSON[handlers.GameSessionDTO](t, conn)
	assert.Equal(t, mines.OutcomeContinue, *state.Outcome)
	assert.Equal(t, mines.Flagged, state.Grid[0])
	assert.Equal(t, mines.CellState(1), state.Grid[5])

	send(t, conn, "dig 1 1")
	errMsg := readJSON[map[string]string](t, conn)
	assert.Contains(t, errMsg["error"], "unknown command")

	send(t, conn, "o 9 9")
	errMsg = readJSON[map[string]string](t, conn)
	assert.NotEmpty(t, errMsg["error"])

	send(t, conn, "o 1")
	errMsg = readJSON[map[string]string](t, conn)
	assert.NotEmpty(t, errMsg["error"])

	// the game ends at the cascade so the trailing move is never applied
	send(t, conn, "o 0 3\nf 1 1")
	state = readJSON[handlers.GameSessionDTO](t, conn)
	assert.Equal(t, mines.OutcomeWon, *state.Outcome)
	assert.Equal(t, mines.Won, state.Status)
	assert.Equal(t, 1, state.Flags)

	send(t, conn, "n")
	state = readJSON[handlers.GameSessionDTO](t, conn)
	assert.Equal(t, mines.InProgress, state.Status)
	assert.Equal(t, id.String(), state.GameSessionId)
	assert.Zero(t, state.Flags)
}

func TestWebSocketRequiresToken(t *testing.T) {
	a, c := setup(t)
	id := plant(t, a, c, 2, 2, []mines.Point{{Row: 0, Col: 0}})

	u := "ws" + strings.TrimPrefix(c.server.URL, "http") + "/game/" + id.String() + "/connect"
	_, res, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
