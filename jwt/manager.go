package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed is returned when the token is not a parseable JWT.
	ErrTokenMalformed = errors.New("access token malformed")
	// ErrTokenSignature is returned when the signature does not verify
	// against the configured secret.
	ErrTokenSignature = errors.New("access token signature invalid")
	// ErrTokenExpired is returned when the token is past its expiry claim.
	ErrTokenExpired = errors.New("access token expired")
)

// Config carries the signing configuration. It is validated once by
// NewManager and treated as immutable afterwards.
type Config struct {
	// Secret is the HS256 signing key. Required.
	Secret []byte
	// AccessTTL is the lifetime of issued tokens, measured from issuance.
	AccessTTL time.Duration
	// Issuer, when set, is stamped into and required from every token.
	Issuer string
	// Leeway tolerates small clock skew during verification. Capped at
	// two minutes.
	Leeway time.Duration
	// Now overrides the time source. Defaults to time.Now.
	Now func() time.Time
}

// Manager issues and verifies access tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims is the claim set carried by every access token.
type AccessClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager. A missing secret or a
// non-positive TTL is a configuration fault that should abort startup,
// never a condition to retry at request time.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// CreateAccess signs a token for uid and returns it with its expiry.
func (m *Manager) CreateAccess(uid string) (string, time.Time, error) {
	now := m.config.Now()
	expiresAt := now.Add(m.config.AccessTTL)

	claims := AccessClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    m.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ParseAccess verifies tokenStr and returns its claims. Failures are
// classified as ErrTokenMalformed, ErrTokenSignature, or ErrTokenExpired
// so callers can log the precise reason. ParseAccess has no side effects.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.config.Now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// PeekExpiry decodes the expiry claim without verifying the signature.
// It exists only so the blacklist can size its retention window; it is
// never an authentication check.
func (m *Manager) PeekExpiry(tokenStr string) (time.Time, bool) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
