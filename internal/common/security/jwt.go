package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimUserID is the claim carrying the authenticated user's id.
const ClaimUserID = "id"

var ErrEmptySigningKey = errors.New("token signing key is empty")

// TokenIssuer signs HS256 tokens of the form {id, iat, exp}.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenIssuer(key []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(key) == 0 {
		return nil, ErrEmptySigningKey
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenIssuer{
		auth: jwtauth.New("HS256", key, nil),
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

// Auth exposes the underlying jwtauth instance for verifier middleware.
func (i *TokenIssuer) Auth() *jwtauth.JWTAuth {
	return i.auth
}

func (i *TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot issue token without user id")
	}
	now := i.now()
	claims := jwt.MapClaims{
		ClaimUserID: userID,
		"iat":       now.Unix(),
		"exp":       now.Add(i.ttl).Unix(),
	}
	_, tokenString, err := i.auth.Encode(claims)
	return tokenString, err
}

// GetUserIDFromClaims extracts the user id claim set by Issue.
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[ClaimUserID].(string)
	if !ok || id == "" {
		return "", errors.New("id claim is missing or not a string")
	}
	return id, nil
}
