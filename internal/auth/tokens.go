// Package auth provides the password-hashing primitive and the signed
// token issuer/verifier used by the request-authorization pipeline.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"task-manager/internal/apperr"
)

// Token types carried in the custom claim. The middleware accepts only
// access tokens; the refresh endpoint accepts only refresh tokens.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload: the subject is the user id as a decimal
// string, plus the token type.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess creates a short-lived access token for the user.
func (m *TokenManager) IssueAccess(userID uint) (string, error) {
	return m.issue(userID, TokenTypeAccess, m.accessTTL)
}

// IssueRefresh creates a long-lived refresh token for the user.
func (m *TokenManager) IssueRefresh(userID uint) (string, error) {
	return m.issue(userID, TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks the signature, expiry and token type, and returns the
// subject user id. Every failure maps to a 401.
func (m *TokenManager) Verify(token, wantType string) (uint, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, apperr.Auth("token has expired")
	case err != nil, !parsed.Valid:
		return 0, apperr.Auth("token is not valid")
	}

	if claims.TokenType != wantType {
		return 0, apperr.Auth("token type is not valid for this request")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperr.Auth("token subject is not valid")
	}
	return uint(userID), nil
}
