package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid matches every verification failure via errors.Is.
var ErrTokenInvalid = errors.New("token invalid")

// TokenErrorKind distinguishes why a token was rejected. Callers answer all kinds
// with the same 401; the kind is for logs.
type TokenErrorKind int

const (
	TokenMalformed TokenErrorKind = iota
	TokenSignatureInvalid
	TokenExpired
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenSignatureInvalid:
		return "signature_invalid"
	case TokenExpired:
		return "expired"
	default:
		return "malformed"
	}
}

// TokenError is returned by TokenService.Verify.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + e.Kind.String()
}

func (e *TokenError) Unwrap() error { return e.Err }

// Is makes every TokenError match ErrTokenInvalid.
func (e *TokenError) Is(target error) bool { return target == ErrTokenInvalid }

// Claims is the token payload: the identity reference plus the registered exp/iat claims.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens with a single process-wide secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for iat/exp, both when issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService fails if the secret is empty or the lifetime is not positive.
// Both are startup-time misconfigurations.
func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is not configured")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs `{id, iat, exp}` for the given identity.
func (s *TokenService) Issue(identityID string) (string, error) {
	if identityID == "" {
		return "", errors.New("cannot issue token for empty identity id")
	}
	now := s.now()
	claims := Claims{
		ID: identityID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity id.
// Any failure is a *TokenError.
func (s *TokenService) Verify(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", &TokenError{Kind: classify(err), Err: err}
	}
	if claims.ID == "" {
		return "", &TokenError{Kind: TokenMalformed, Err: errors.New("id claim is missing")}
	}
	return claims.ID, nil
}

func classify(err error) TokenErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return TokenSignatureInvalid
	default:
		return TokenMalformed
	}
}
