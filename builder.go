package authcore

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/zaidhasan/authcore/blacklist"
	"github.com/zaidhasan/authcore/jwt"
	"github.com/zaidhasan/authcore/password"
	"github.com/zaidhasan/authcore/refresh"
	"github.com/zaidhasan/authcore/session"
)

// Builder assembles an Engine. Configure it fluently, then call Build
// exactly once; every configuration fault is reported there, at
// startup, never at request time.
type Builder struct {
	config Config
	db     *sql.DB
	redis  redis.UniversalClient

	refreshStore   refresh.Store
	blacklistStore blacklist.Store
	users          UserProvider
	hasher         *password.Argon2
	logger         *slog.Logger
	clock          Clock

	built bool
}

// New returns a Builder preloaded with DefaultConfig.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSigningSecret sets the HS256 secret without replacing the rest of
// the configuration.
func (b *Builder) WithSigningSecret(secret []byte) *Builder {
	b.config.JWT.Secret = secret
	return b
}

// WithDB supplies the relational handle backing the refresh store.
func (b *Builder) WithDB(db *sql.DB) *Builder {
	b.db = db
	return b
}

// WithRedis supplies the key-value client backing the blacklist.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRefreshStore overrides the refresh store, e.g. with
// refresh.NewMemoryStore for tests and single-node deployments.
func (b *Builder) WithRefreshStore(store refresh.Store) *Builder {
	b.refreshStore = store
	return b
}

// WithBlacklistStore overrides the blacklist store.
func (b *Builder) WithBlacklistStore(store blacklist.Store) *Builder {
	b.blacklistStore = store
	return b
}

// WithUserProvider supplies the identity store.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithPasswordHasher overrides the argon2id hasher.
func (b *Builder) WithPasswordHasher(hasher *password.Argon2) *Builder {
	b.hasher = hasher
	return b
}

// WithLogger supplies the structured logger. Defaults to a discarding
// logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides the time source. Intended for tests.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// Build validates the configuration, wires default stores from the
// supplied handles, and returns the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user provider is required")
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:    b.config.JWT.Secret,
		AccessTTL: b.config.JWT.AccessTTL,
		Issuer:    b.config.JWT.Issuer,
		Leeway:    b.config.JWT.Leeway,
		Now:       clock.Now,
	})
	if err != nil {
		return nil, err
	}

	refreshStore := b.refreshStore
	if refreshStore == nil {
		if b.db == nil {
			return nil, errors.New("refresh store is required: supply WithDB or WithRefreshStore")
		}
		refreshStore, err = refresh.NewPostgresStore(b.db, b.config.Refresh.TTL, refresh.WithNowFunc(clock.Now))
		if err != nil {
			return nil, err
		}
	}

	blacklistStore := b.blacklistStore
	if blacklistStore == nil {
		if b.redis == nil {
			return nil, errors.New("blacklist store is required: supply WithRedis or WithBlacklistStore")
		}
		opts := []blacklist.RedisOption{blacklist.WithRedisNowFunc(clock.Now)}
		if b.config.Blacklist.KeyPrefix != "" {
			opts = append(opts, blacklist.WithKeyPrefix(b.config.Blacklist.KeyPrefix))
		}
		blacklistStore = blacklist.NewRedisStore(b.redis, opts...)
	}

	hasher := b.hasher
	if hasher == nil {
		hasher, err = password.NewArgon2(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
	}

	metrics := NewMetrics(b.config.Metrics)

	engine := &Engine{
		config:       b.config,
		jwtManager:   jwtManager,
		refreshStore: refreshStore,
		blacklist:    blacklistStore,
		registry:     session.NewRegistry(refreshStore),
		users:        b.users,
		hasher:       hasher,
		metrics:      metrics,
		logger:       logger,
		clock:        clock,
	}
	engine.cleanup = newCleanupJob(
		b.config.Cleanup,
		[]cleanupTarget{
			{name: "refresh_tokens", store: refreshStore},
			{name: "blacklist", store: blacklistStore},
		},
		logger,
		clock,
		metrics,
	)

	b.built = true
	return engine, nil
}
