// Package auth validates access tokens issued by the hosted auth service
// and resolves the caller's role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-material/internal/common"
)

// Roles stored in users.role.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ErrUnknownUser is returned when the token subject has no users row.
var ErrUnknownUser = errors.New("auth: unknown user")

// RoleStore reads a user's role.
type RoleStore interface {
	GetUserRole(ctx context.Context, userID string) (string, error)
}

// Service validates HS256 access tokens and looks up roles.
type Service struct {
	roles     RoleStore
	secret    []byte
	now       func() time.Time
	validator TokenValidator
	issuer    string
	audience  string
}

// Config configures the auth service.
type Config struct {
	Roles     RoleStore
	Secret    string
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// NewService constructs a Service instance.
func NewService(cfg Config) (*Service, error) {
	if cfg.Roles == nil {
		return nil, errors.New("auth: role store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	audience := strings.TrimSpace(cfg.Audience)

	return &Service{
		roles:  cfg.Roles,
		secret: []byte(secret),
		now:    time.Now,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:   issuer,
		audience: audience,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func unauthorized(message string, err error) error {
	return common.NewAppError("UNAUTHORIZED", message, http.StatusUnauthorized, err)
}

// ParseAccessToken validates an access token and returns the subject (user ID).
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", unauthorized("missing token", nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", unauthorized("invalid token", err)
	}
	if algorithm != s.validator.Algorithm {
		return "", unauthorized("invalid token", fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	// Validation runs below against the injected clock.
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret), jwt.WithValidate(false))
	if err != nil {
		return "", unauthorized("invalid token", err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return "", unauthorized("invalid token", err)
	}
	if _, err := uuid.Parse(parsed.Subject()); err != nil {
		return "", unauthorized("invalid token", fmt.Errorf("subject is not a user id: %w", err))
	}
	return parsed.Subject(), nil
}

// Role returns the stored role of userID.
func (s *Service) Role(ctx context.Context, userID string) (string, error) {
	role, err := s.roles.GetUserRole(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", fmt.Errorf("auth: load role: %w", err)
	}
	return role, nil
}

// SignAccessToken issues a token the way the hosted auth service does. It is
// used by local tooling and tests.
func (s *Service) SignAccessToken(userID string, ttl time.Duration) (string, error) {
	now := s.now()
	builder := jwt.NewBuilder().
		Subject(userID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(ttl))
	if s.issuer != "" {
		builder = builder.Issuer(s.issuer)
	}
	if s.audience != "" {
		builder = builder.Audience([]string{s.audience})
	}
	token, err := builder.Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", fmt.Errorf("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
