package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"arena-social/internal/core/auth"
	"arena-social/internal/core/cache"
	"arena-social/internal/core/config"
	"arena-social/internal/core/database"
	"arena-social/internal/repo"
	"arena-social/internal/service"
	"arena-social/internal/transport/http/handler"
	"arena-social/internal/transport/http/router"
)

// App owns the single database pool and the services built on it.
type App struct {
	DB    *gorm.DB
	Cache *cache.Cache
	JWT   *auth.JWTer
	Log   *zap.Logger

	Users   *service.UserService
	Friends *service.FriendService
	Chat    *service.ChatService
	Matches *service.MatchService
}

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	return db, nil
}

func New(db *gorm.DB, c *cache.Cache, cacheTTL time.Duration, jwt *auth.JWTer, l *zap.Logger) *App {
	if l == nil {
		l = zap.NewNop()
	}
	users := service.NewUserService(repo.NewUserRepo(db), c, cacheTTL)
	return &App{
		DB:      db,
		Cache:   c,
		JWT:     jwt,
		Log:     l,
		Users:   users,
		Friends: service.NewFriendService(repo.NewFriendshipRepo(db), users),
		Chat:    service.NewChatService(repo.NewMessageRepo(db), repo.NewBlockRepo(db), users),
		Matches: service.NewMatchService(repo.NewMatchRepo(db), users),
	}
}

// FromConfig opens every backing store named in cfg.
func FromConfig(cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := OpenDB(cfg, l)
	if err != nil {
		return nil, err
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if c != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			l.Warn("redis unreachable, profile cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		}
	}
	jwt := auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute)
	return New(db, c, cfg.Redis.TTL(), jwt, l), nil
}

// Modules lists every HTTP module; each mounts on the API, the admin API or both.
func (a *App) Modules() *router.Registry {
	return router.NewRegistry(
		handler.NewUserHandler(a.Users, a.JWT, a.Log),
		handler.NewFriendHandler(a.Friends, a.Log),
		handler.NewChatHandler(a.Chat, a.Log),
		handler.NewMatchHandler(a.Matches, a.Log),
		handler.NewAdminHandler(a.Users, a.Log),
	)
}

func (a *App) Health(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := a.Cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Cache.Close()
}

func RouterDeps(cfg *config.Config, a *App) router.Deps {
	return router.Deps{
		Log:          a.Log,
		JWT:          a.JWT,
		Modules:      a.Modules(),
		Mode:         cfg.App.Mode,
		AllowOrigins: cfg.App.AllowOrigins,
		Health:       a.Health,
		Limits: router.Limits{
			RPS:          cfg.Limits.RPS,
			Burst:        cfg.Limits.Burst,
			PerIPRPS:     cfg.Limits.PerIPRPS,
			PerIPBurst:   cfg.Limits.PerIPBurst,
			Concurrency:  cfg.Limits.Concurrency,
			MaxBodyBytes: cfg.Limits.MaxBodyBytes,
			Timeout:      time.Duration(cfg.Limits.TimeoutSec) * time.Second,
		},
	}
}
