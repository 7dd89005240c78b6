// Package auth hashes passwords, issues and verifies signed access tokens,
// and extracts the caller identity from bearer credentials.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the standard registered claims plus the user
// id and username.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"id"`
	Username string `json:"username"`
}

// TokenManager issues and verifies HS256 access tokens with a process-wide
// secret. Rotating the secret invalidates every outstanding token.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for the user that expires ttl from now.
func (m *TokenManager) Issue(userID int64, username string) (string, error) {
	now := m.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:   userID,
		Username: username,
	})

	return token.SignedString(m.secret)
}

// Verify checks the signature and the expiry of token. Failures are one of
// common.ErrMissingToken, ErrMalformedToken, ErrBadSignature or ErrTokenExpired.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, common.ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, classify(err)
	}

	if !token.Valid || claims.UserID == 0 {
		return Identity{}, common.ErrMalformedToken
	}

	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrBadSignature
	default:
		return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}
}
