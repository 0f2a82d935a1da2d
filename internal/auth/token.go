// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"slices"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, expired or wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the set of user claims carried by a token.
type Identity struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserName string `json:"userName"`
}

// Purpose limits what a token may be used for.
type Purpose string

const (
	// PurposeSession tokens authenticate API calls.
	PurposeSession Purpose = "session"
	// PurposeResetPending tokens are issued by forgot-password before any OTP is checked.
	PurposeResetPending Purpose = "reset-pending"
	// PurposeReset tokens are issued once an OTP is verified and only allow a password reset.
	PurposeReset Purpose = "reset"
)

// Claims describes the JWT payload.
type Claims struct {
	Identity
	Purpose Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager whose Generate tokens live for ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs a session token for the identity.
func (tm *TokenManager) Generate(id Identity) (string, time.Time, error) {
	return tm.GenerateFor(id, PurposeSession, tm.ttl)
}

// GenerateFor signs a token restricted to purpose with a custom lifetime.
func (tm *TokenManager) GenerateFor(id Identity, purpose Purpose, ttl time.Duration) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		Identity: id,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates the token and returns its claims.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" || claims.Subject != claims.UserID || claims.Purpose == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Allows reports whether the token was issued for one of purposes.
// No purposes means session only.
func (c *Claims) Allows(purposes ...Purpose) bool {
	if len(purposes) == 0 {
		return c.Purpose == PurposeSession
	}
	return slices.Contains(purposes, c.Purpose)
}
