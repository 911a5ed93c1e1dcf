package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials is the only error Verify returns.
var ErrInvalidCredentials = errors.New("could not validate credentials")

type Config struct {
	Secret     string `envconfig:"JWT_SECRET" required:"true" json:"-"`
	Algorithm  string `envconfig:"JWT_ALGORITHM" default:"HS256"`
	ExpMinutes int    `envconfig:"JWT_EXP_MINUTES" default:"30"`
}

type Tokens struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Tokens)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(t *Tokens) {
		t.now = now
	}
}

func NewTokens(cfg Config, opts ...Option) (*Tokens, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.Algorithm)
	}
	if cfg.ExpMinutes <= 0 {
		return nil, fmt.Errorf("jwt expiration must be positive, got %d", cfg.ExpMinutes)
	}
	t := &Tokens{
		key:    []byte(cfg.Secret),
		method: method,
		ttl:    time.Duration(cfg.ExpMinutes) * time.Minute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a token for subject that expires after the configured window.
func (t *Tokens) Issue(subject string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(t.method, claims).SignedString(t.key)
}

// Verify returns the token subject. Malformed, forged, expired and
// subject-less tokens all yield ErrInvalidCredentials.
func (t *Tokens) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return t.key, nil },
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}
