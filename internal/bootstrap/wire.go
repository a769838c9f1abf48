package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/campuskit/auth-service/internal/application/auth"
	"github.com/campuskit/auth-service/internal/config"
	"github.com/campuskit/auth-service/internal/infrastructure/db/postgres"
	"github.com/campuskit/auth-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/campuskit/auth-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/campuskit/auth-service/internal/infrastructure/redis"
	"github.com/campuskit/auth-service/internal/infrastructure/security"
	"github.com/campuskit/auth-service/internal/logger"
	http_handlers "github.com/campuskit/auth-service/internal/transport/http/handlers"
	"github.com/campuskit/auth-service/internal/transport/http/middleware"
	"github.com/campuskit/auth-service/internal/transport/http/response"
	"github.com/campuskit/auth-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing.
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string) (DBCloser, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

type Publisher interface{}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	userRepo := postgres.NewUserRepo(sqlDB)
	sessionRepo := postgres.NewSessionRepo(sqlDB)

	// 2) redis (best-effort; rate limiting fails open without it)
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; rate limiting disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) publisher
	var pub Publisher
	if deps.NewPublisher != nil && cfg.RabbitURL != "" {
		pub, err = deps.NewPublisher(cfg.RabbitURL)
	} else {
		err = errors.New("rabbitmq not configured")
	}
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher()
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	} else {
		if p, ok := pub.(interface{ SetExchange(string) }); ok {
			p.SetExchange(cfg.RabbitExchange)
		}
	}

	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	eventPub, ok := pub.(auth.EventPublisher)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: publisher does not implement auth.EventPublisher")
	}

	// 4) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt codec")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	codec := security.NewJWTCodec(cfg.JWTSecret, cfg.JWTIssuer)

	// 5) service
	authSvc := auth.NewService(
		userRepo,
		sessionRepo,
		hasher,
		codec,
		eventPub,
		auth.Config{
			AccessTokenTTL:        cfg.AccessTokenTTL,
			RefreshTokenTTL:       cfg.RefreshTokenTTL,
			VerifyEmailTokenTTL:   cfg.VerifyEmailTokenTTL,
			PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,

			MaxLoginAttempts: cfg.MaxLoginAttempts,
			LockoutDuration:  cfg.LockoutDuration,

			VerifyEmailBaseURL:   cfg.VerifyEmailBaseURL,
			PasswordResetBaseURL: cfg.PasswordResetBaseURL,
		},
	)

	// 6) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc)
	healthH := http_handlers.NewHealthHandler(sqlDB)

	authMW := middleware.Auth(authSvc, response.WriteError)

	var fwLimiter *redis.FixedWindowLimiter
	if redisCli != nil {
		fwLimiter = redis.NewFixedWindowLimiter(redisCli.(*redis.Client))
	}

	rl := func(key string, limit int, window time.Duration) func(http.Handler) http.Handler {
		if fwLimiter == nil {
			return nil
		}
		return middleware.RateLimitFixedWindow(
			fwLimiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   window,
			},
			response.WriteError,
		)
	}

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:    healthH,
		Auth:      authH,
		AuthMW:    authMW,
		RequestID: middleware.RequestID,

		RegisterRateMW: rl("auth.register", 3, time.Minute),
		LoginRateMW:    rl("auth.login", 5, time.Minute),
		ResetRateMW:    rl("auth.password_reset.request", 3, 10*time.Minute),
		GlobalRateMW:   rl("auth.global", cfg.RateLimitPerMinute, time.Minute),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string) (DBCloser, error) {
			return postgres.Open(addr)
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
