// Package auth issues and verifies signed access tokens and handles
// credential hashing. It is the single place in the codebase that knows
// about JWT claims and bcrypt.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"livefeed/internal/models"
)

// Identity is the verified caller extracted from an access token.
type Identity struct {
	UserID uint
	Email  string
}

// Guard signs and verifies access tokens with a shared HMAC secret.
type Guard struct {
	secret []byte
	ttl    time.Duration
}

// NewGuard creates a Guard. ttl controls how long issued tokens stay valid.
func NewGuard(secret string, ttl time.Duration) *Guard {
	return &Guard{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the given user.
func (g *Guard) Issue(userID uint, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": float64(userID),
		"email":  email,
		"iat":    now.Unix(),
		"exp":    now.Add(g.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies a raw token string and returns the caller identity.
// Every failure mode, missing, malformed, expired, or wrongly signed,
// collapses into the same unauthenticated error so callers cannot leak
// which check failed.
func (g *Guard) Authenticate(credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, models.NewUnauthenticatedError()
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, models.NewUnauthenticatedError()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, models.NewUnauthenticatedError()
	}

	rawID, ok := claims["userId"].(float64)
	if !ok || rawID <= 0 {
		return Identity{}, models.NewUnauthenticatedError()
	}

	email, _ := claims["email"].(string)

	return Identity{UserID: uint(rawID), Email: email}, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
