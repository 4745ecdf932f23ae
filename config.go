package authcore

import (
	"errors"
	"time"
)

// Config carries every tunable of the token lifecycle. It is copied
// into the Engine at Build time and never mutated afterwards; the
// signing secret in particular is injected exactly once here rather
// than looked up from process-global state.
type Config struct {
	JWT       JWTConfig
	Refresh   RefreshConfig
	Blacklist BlacklistConfig
	Cleanup   CleanupConfig
	Metrics   MetricsConfig
}

// JWTConfig configures the access-token issuer.
type JWTConfig struct {
	// Secret is the HS256 signing key. Required; Build fails without it.
	Secret []byte
	// AccessTTL is the access-token lifetime.
	AccessTTL time.Duration
	// Issuer, when set, is stamped into and required from every token.
	Issuer string
	// Leeway tolerates clock skew during verification.
	Leeway time.Duration
}

// RefreshConfig configures the refresh-token store.
type RefreshConfig struct {
	// TTL is the refresh-token lifetime, fixed at creation. Rotation
	// issues a new record rather than extending an old one.
	TTL time.Duration
}

// BlacklistConfig configures access-token revocation.
type BlacklistConfig struct {
	// DefaultTTL bounds blacklist retention when a token's expiry claim
	// cannot be read.
	DefaultTTL time.Duration
	// KeyPrefix namespaces blacklist keys in Redis.
	KeyPrefix string
}

// CleanupConfig configures the background expiry-reclamation job.
type CleanupConfig struct {
	// Interval between cleanup passes.
	Interval time.Duration
	// Timeout bounds each pass; a pass that overruns is cancelled and
	// retried on the next tick.
	Timeout time.Duration
}

// MetricsConfig toggles the engine's counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the reference configuration. The signing secret
// has no default and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
		},
		Refresh: RefreshConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Blacklist: BlacklistConfig{
			DefaultTTL: time.Hour,
		},
		Cleanup: CleanupConfig{
			Interval: time.Hour,
			Timeout:  time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.JWT.Secret) == 0 {
		return errors.New("missing signing secret")
	}
	if cfg.JWT.AccessTTL <= 0 {
		return errors.New("invalid access TTL")
	}
	if cfg.Refresh.TTL <= 0 {
		return errors.New("invalid refresh TTL")
	}
	if cfg.Blacklist.DefaultTTL <= 0 {
		return errors.New("invalid blacklist default TTL")
	}
	if cfg.Cleanup.Interval <= 0 {
		return errors.New("invalid cleanup interval")
	}
	if cfg.Cleanup.Timeout <= 0 {
		return errors.New("invalid cleanup timeout")
	}
	return nil
}
