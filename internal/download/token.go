// Package download implements the Download Token Service: short-lived,
// document-scoped tokens that let GET /download/file authorize a blob fetch
// without exposing the blob store directly. Grounded on WeKnora's go.mod
// golang-jwt/jwt/v5 dependency (unused by the retrieved teacher slice).
package download

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired and ErrTokenInvalid let callers tell an expired token
// (spec.md §6: 410) apart from any other validation failure (401).
var (
	ErrTokenExpired = errors.New("download: token expired")
	ErrTokenInvalid = errors.New("download: token invalid")
)

// claims is the JWT payload for a download token: the document it is scoped
// to, plus the standard expiry claim.
type claims struct {
	DocumentID string `json:"document_id"`
	jwt.RegisteredClaims
}

// TokenService implements interfaces.DownloadTokenService with HMAC-signed
// JWTs; tokens are self-contained, so verification needs no store lookup.
type TokenService struct {
	signingKey    []byte
	maxExpiration time.Duration
}

// New builds a TokenService. maxExpiration caps any requested expiration
// (spec.md's download-token expiry ceiling); signingKey must be non-empty.
func New(signingKey string, maxExpiration time.Duration) (*TokenService, error) {
	if signingKey == "" {
		return nil, errors.New("download: signing key must not be empty")
	}
	if maxExpiration <= 0 {
		maxExpiration = time.Hour
	}
	return &TokenService{signingKey: []byte(signingKey), maxExpiration: maxExpiration}, nil
}

// Mint issues a token scoped to documentID, valid for min(expiration,
// maxExpiration); a non-positive expiration gets maxExpiration.
func (s *TokenService) Mint(documentID string, expiration time.Duration) (string, time.Time, error) {
	if documentID == "" {
		return "", time.Time{}, errors.New("download: document id is required")
	}
	if expiration <= 0 || expiration > s.maxExpiration {
		expiration = s.maxExpiration
	}

	expiresAt := time.Now().Add(expiration)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		DocumentID: documentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token, returning the document it is scoped
// to. An expired token returns ErrTokenExpired; any other malformed,
// mis-signed or otherwise invalid token returns ErrTokenInvalid, so callers
// can map the two to different HTTP statuses (spec.md §6).
func (s *TokenService) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return "", ErrTokenInvalid
	}
	if c.DocumentID == "" {
		return "", fmt.Errorf("%w: missing document id", ErrTokenInvalid)
	}
	return c.DocumentID, nil
}
