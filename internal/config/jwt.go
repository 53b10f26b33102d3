package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWT struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

// GameClaims bind a token to the game session it was issued for.
type GameClaims struct {
	GameId string `json:"game_id"`
	jwt.RegisteredClaims
}

func loadSecret() ([]byte, error) {
	secret, ok := os.LookupEnv("JWT_SECRET")
	if ok {
		return []byte(secret), nil
	}

	secretFile, ok := os.LookupEnv("JWT_SECRET_FILE")
	if !ok {
		return nil, fmt.Errorf("no JWT_SECRET or JWT_SECRET_FILE env variable set")
	}

	data, err := os.ReadFile(secretFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read JWT secret file: %w", err)
	}

	return []byte(strings.TrimSpace(string(data))), nil
}

func NewJWT() (*JWT, error) {
	secret, err := loadSecret()
	if err != nil {
		return nil, err
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 bytes long")
	}

	lifetime, err := lookupDuration("JWT_TOKEN_LIFETIME", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return NewJWTWithSecret(secret, lifetime), nil
}

func NewJWTWithSecret(secret []byte, lifetime time.Duration) *JWT {
	return &JWT{
		secret:        secret,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}
}

func (j *JWT) TokenLifetime() time.Duration {
	return j.tokenLifetime
}

func (j *JWT) SignGame(gameId uuid.UUID) (string, error) {
	now := time.Now()
	claims := &GameClaims{
		GameId: gameId.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   gameId.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.secret)
}

func (j *JWT) ParseGameClaims(tokenString string) (*GameClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&GameClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.secret, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*GameClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
