package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/fixhub/repairshop/internal/domain"
)

// TokenManager validates JWT bearer tokens issued by the identity
// system upstream. This service never issues tokens; it only decodes
// the actor identity and role out of them.
type TokenManager struct {
	secret []byte
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Claims describes the JWT payload.
type Claims struct {
	ActorID string      `json:"actor_id"`
	Role    domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates the signature and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ActorID == "" {
		claims.ActorID = claims.Subject
	}
	if claims.ActorID == "" || !claims.Role.Valid() {
		return nil, errors.New("token missing actor identity")
	}
	return claims, nil
}
