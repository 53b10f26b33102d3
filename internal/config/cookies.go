package config

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const gameCookie = "game"

type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	BasePath string
}

func NewCookies() (*Cookies, error) {
	domain := os.Getenv("COOKIES_DOMAIN")

	secure := true
	if secureStr, ok := os.LookupEnv("COOKIES_SECURE"); ok {
		secure = secureStr != "0"
	}

	sameSite := http.SameSiteStrictMode
	switch strings.ToUpper(os.Getenv("COOKIES_SAMESITE")) {
	case "DEFAULT":
		sameSite = http.SameSiteDefaultMode
	case "LAX":
		sameSite = http.SameSiteLaxMode
	case "NONE":
		sameSite = http.SameSiteNoneMode
	}

	cookies := &Cookies{
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		BasePath: BasePath(),
	}

	return cookies, nil
}

// Each game gets its own cookie, scoped to that game's routes.
func (c *Cookies) path(gameId uuid.UUID) string {
	return c.BasePath + "/game/" + gameId.String()
}

func (c *Cookies) Clear(w http.ResponseWriter, gameId uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     gameCookie,
		Path:     c.path(gameId),
		Value:    "delete",
		MaxAge:   -1,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Refresh(w http.ResponseWriter, gameId uuid.UUID, token string, lifetime time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     gameCookie,
		Path:     c.path(gameId),
		Value:    token,
		Expires:  time.Now().Add(lifetime),
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

// Token finds the game token in the cookie, the Authorization header or,
// for WebSocket clients that cannot set headers, the token query parameter.
func (c *Cookies) Token(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(gameCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer "), true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}
