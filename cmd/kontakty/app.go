package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kontakty/contacts-api/internal/api"
	"github.com/kontakty/contacts-api/internal/api/handler"
	"github.com/kontakty/contacts-api/internal/bootstrap"
	"github.com/kontakty/contacts-api/internal/core/service"
	"github.com/kontakty/contacts-api/internal/infrastructure/config"
	"github.com/kontakty/contacts-api/internal/infrastructure/db/mongo"
	"github.com/kontakty/contacts-api/internal/infrastructure/db/postgres"
	"github.com/kontakty/contacts-api/internal/infrastructure/db/redis"
	"github.com/kontakty/contacts-api/internal/infrastructure/migrate"
	"github.com/kontakty/contacts-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores holds the open connections shared by the commands.
type stores struct {
	pg    *postgres.DB
	mongo *mongo.Store
	redis *goredis.Client
}

func (s *stores) close(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mongo != nil {
		_ = s.mongo.Close(ctx)
	}
	if s.pg != nil {
		s.pg.Close()
	}
}

func setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: appName,
	})
	return cfg, log, nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{}

	pg, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return nil, err
	}
	s.pg = pg
	log.Info().Msg("postgres connected")

	ms, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     appName,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	s.mongo = ms
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	s.redis = rdb
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	return s, nil
}

// prepare brings both stores to a usable state: schema, indexes and seed data.
func prepare(ctx context.Context, cfg *config.Config, s *stores, withSamples bool, log zerolog.Logger) error {
	if err := migrate.Up(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	users := mongo.NewUserRepository(s.mongo.DB)
	roles := mongo.NewRoleRepository(s.mongo.DB)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := roles.EnsureIndexes(ctx); err != nil {
		return err
	}

	seeder := bootstrap.NewSeeder(roles, postgres.NewCategoryRepository(s.pg), postgres.NewContactRepository(s.pg), log)
	return seeder.Run(ctx, withSamples)
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	s, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	if err := prepare(ctx, cfg, s, cfg.SeedSampleContacts, log); err != nil {
		return err
	}

	users := mongo.NewUserRepository(s.mongo.DB)
	roles := mongo.NewRoleRepository(s.mongo.DB)
	contacts := postgres.NewContactRepository(s.pg)
	categories := postgres.NewCategoryRepository(s.pg)

	tokens := service.NewTokenService(service.TokenConfig{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		TTL:        cfg.JWT.TTL,
	})
	limiter := redis.NewLoginLimiter(s.redis, redis.LimiterConfig{
		MaxFailures: cfg.Login.MaxFailures,
		Window:      cfg.Login.Window,
		Lockout:     cfg.Login.Lockout,
	})

	e := api.NewRouter(api.Dependencies{
		Log:        log,
		Accounts:   service.NewAccountService(service.NewIdentity(users, roles), tokens, limiter, log),
		Contacts:   service.NewContactService(contacts, categories, log),
		Categories: service.NewCategoryService(categories),
		Tokens:     tokens,
		Readiness: map[string]handler.Pinger{
			"postgres": s.pg,
			"mongo":    s.mongo,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return redis.Ping(ctx, s.redis)
			}),
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func migrateOnly(ctx context.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	if err := migrate.Up(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Msg("migrations applied")
	return nil
}

// seedOnly runs the idempotent seed. The --samples flag wins over the
// environment when it was given explicitly.
func seedOnly(ctx context.Context, samplesFlag, flagSet bool) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	withSamples := cfg.SeedSampleContacts
	if flagSet {
		withSamples = samplesFlag
	}

	s, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	if err := prepare(ctx, cfg, s, withSamples, log); err != nil {
		return err
	}
	log.Info().Bool("samples", withSamples).Msg("seed complete")
	return nil
}
