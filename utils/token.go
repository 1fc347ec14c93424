package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Reset tokens are short-lived JWTs mailed to the user. Login sessions are
// opaque redis-backed tokens (see middlewares.SessionMiddleware); JWTs are
// only used where the token must be verifiable without a session.
type ResetClaim struct {
	UserId string `json:"user_id"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "ReptileGuard-Secret"
	}
	return secret
}

const resetTokenLifespan = 30 * time.Minute

func JwtGenerateResetToken(userId string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &ResetClaim{
		UserId: userId,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(resetTokenLifespan).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidateResetToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &ResetClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*ResetClaim)
	if !ok || !parsed.Valid || claims.UserId == "" {
		return "", errors.New("invalid reset token")
	}
	return claims.UserId, nil
}
