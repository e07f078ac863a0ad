// Package token issues and verifies the signed session tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"boostly/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and claim mismatches.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned once the presentation time reaches the token's expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Principal is the identity carried by a session token.
type Principal struct {
	AccountID uint   `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Claims is the JWT payload for a session token.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 session tokens with a single process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
}

// NewService builds a token service. Issuer and audience are embedded in every
// token and enforced on verification.
func NewService(secret string, ttl time.Duration, issuer, audience string) *Service {
	return &Service{
		secret:   []byte(secret),
		ttl:      ttl,
		issuer:   issuer,
		audience: audience,
	}
}

// NewServiceFromConfig builds the token service from the loaded configuration.
func NewServiceFromConfig(cfg *config.Config) *Service {
	return NewService(cfg.JWTSecret, cfg.TokenTTL(), cfg.TokenIssuer, cfg.TokenAudience)
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for p that is valid from now until now+TTL.
// JWT timestamps have one second precision: iat and nbf round down and exp
// rounds up, so the window never ends before now+TTL.
func (s *Service) Issue(p Principal, now time.Time) (string, time.Time, error) {
	issuedAt := now.Truncate(time.Second)
	expiresAt := ceilSecond(now.Add(s.ttl))

	claims := Claims{
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.AccountID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Second)
}

// Verify checks the signature and claims of raw as seen at time now.
// It returns ErrTokenExpired when now >= exp and ErrInvalidToken for every other failure.
func (s *Service) Verify(raw string, now time.Time) (Principal, error) {
	if strings.TrimSpace(raw) == "" {
		return Principal{}, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	accountID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || accountID == 0 {
		return Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if claims.Email == "" {
		return Principal{}, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}

	return Principal{
		AccountID: uint(accountID),
		Name:      claims.Name,
		Email:     claims.Email,
	}, nil
}
