// Package utils provides helper functions for password hashing and
// session token issuing.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is a signed HS256 JWT binding a verified user id. It is
// the only credential issued at login: stateless, never persisted
// server-side, and verifiable with nothing but the signing secret.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken covers every way a presented token can fail to
// verify: bad signature, wrong algorithm, malformed string, expiry.
var ErrInvalidToken = errors.New("invalid token")

// NewSessionToken builds and signs an HS256 JWT for a user. Claims are
// the standard set: subject (sub) carries the user id, role mirrors the
// user's role, exp and iat bound the token's lifetime. ttlMin is the
// validity window in minutes.
func NewSessionToken(secret string, userID uint64, role string, ttlMin int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of a token using
// only the signing secret, with no storage lookup, and returns the user id
// and role it binds. Tokens signed with any algorithm other than HMAC
// are rejected outright.
func ParseSessionToken(secret, raw string) (uint64, string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // numeric claims decode as float64
	if !ok || sub <= 0 {
		return 0, "", ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return uint64(sub), role, nil
}
