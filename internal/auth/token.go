package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Token verification errors.
var (
	// ErrInvalidToken indicates the token is malformed, has a bad
	// signature, or carries unexpected claims.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of a signed session token.
// Tokens carry no expiry; a session ends when its registry entry is
// removed, not when the token ages out.
type Claims struct {
	UserID string `json:"user_id"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies compact session tokens with an HS256 secret.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a TokenCodec with the given signing secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Sign produces a signed token encoding the user ID and access level.
// Each token carries an issued-at timestamp and a unique ID, so two
// sessions for the same user never share a token string. Revocation
// depends on that: removing a registry row must end exactly one session.
func (c *TokenCodec) Sign(userID, access string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Access: access,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
			ID:       ulid.Make().String(),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the token signature and returns its claims.
// Signature validity alone does not make a session valid; the caller must
// also confirm registry membership.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
