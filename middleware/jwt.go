package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the player token payload issued by the account service.
type Claims struct {
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for playerID. The service itself only
// verifies tokens; this is used by tooling and tests.
func GenerateToken(playerID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates tokenStr and returns its claims. A token without a
// player id is rejected.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.PlayerID == "" {
		claims.PlayerID = claims.Subject
	}
	if claims.PlayerID == "" {
		return nil, errors.New("token has no player id")
	}
	return claims, nil
}
