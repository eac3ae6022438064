package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/config"
	"github.com/Totarae/bookmarks/internal/database"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/grpcserver"
	"github.com/Totarae/bookmarks/internal/handlers"
	"github.com/Totarae/bookmarks/internal/oauth"
	"github.com/Totarae/bookmarks/internal/repositories"
	"github.com/Totarae/bookmarks/internal/router"
	"github.com/Totarae/bookmarks/internal/service"
	"github.com/Totarae/bookmarks/internal/storage"
	"github.com/Totarae/bookmarks/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Инициализация конфигурации
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.ServerAddress)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("address", cfg.ServerAddress), zap.Error(err))
	}
	if err := serve(ctx, cfg, logger, lis); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// serve собирает зависимости и обслуживает lis до отмены ctx.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, lis net.Listener) error {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	g, gctx := errgroup.WithContext(ctx)

	hub := feed.NewHub()
	var publisher feed.Publisher = hub
	sessionOpts := []auth.Option{
		auth.WithTTL(cfg.SessionTTL),
		auth.WithSecureCookie(cfg.CookieSecure || cfg.EnableHTTPS),
		auth.WithLogger(logger),
	}

	if cfg.RedisAddr != "" {
		client, err := database.NewRedis(ctx, database.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		relay := feed.NewRedisRelay(client, hub, logger)
		publisher = relay
		sessionOpts = append(sessionOpts, auth.WithRevoker(auth.NewRedisRevoker(client)))
		g.Go(func() error { return relay.Run(gctx) })
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("SESSION_SECRET is not set, sessions will not survive restart")
	}
	sessions := auth.New(secret, sessionOpts...)

	provider := oauth.NewProvider(oauth.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		UserInfoURL:  cfg.OAuthUserInfoURL,
	})

	svc := service.NewBookmarkService(store, publisher, logger)
	handler := handlers.NewHandler(svc, sessions, provider, hub, logger, cfg.AllowedOrigins)
	pages, err := web.New(svc, sessions, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           router.NewRouter(handler, pages, sessions, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("Server started", zap.String("address", lis.Addr().String()), zap.String("mode", cfg.Mode))
		var err error
		if cfg.EnableHTTPS {
			err = srv.ServeTLS(lis, cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = srv.Serve(lis)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	var grpcSrv *grpcserver.GRPCServer
	if cfg.GRPCAddress != "" {
		glis, err := net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			return fmt.Errorf("listen gRPC: %w", err)
		}
		grpcSrv = grpcserver.NewGRPCServer(store, logger)
		g.Go(func() error {
			logger.Info("gRPC health started", zap.String("address", glis.Addr().String()))
			return grpcSrv.Serve(glis)
		})
		g.Go(func() error {
			grpcSrv.Watch(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// websocket-клиенты получают закрытие через hub
		hub.Close()
		if grpcSrv != nil {
			grpcSrv.Stop()
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, func(), error) {
	if cfg.Mode == config.ModeDatabase {
		if cfg.MigrateOnStart {
			if err := database.Migrate(cfg.DatabaseDSN, logger); err != nil {
				return nil, nil, err
			}
		}
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewBookmarkRepository(db.Pool), db.Close, nil
	}

	store, err := storage.NewMemoryStore(cfg.FileStoragePath, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
