package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "stayhub/internal/adapters/http_server"
	"stayhub/internal/adapters/jwtauth"
	"stayhub/internal/adapters/observability"
	"stayhub/internal/adapters/rediscache"
	"stayhub/internal/app"
	"stayhub/internal/shared"
	mysqlrepo "stayhub/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := rediscache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	tokens := jwtauth.New(cfg.JWTSecret, cfg.JWTTTL)

	catalog := app.NewCatalogService(repo, cache, cfg.CacheTTL)
	auth := app.NewAuthService(repo, tokens, cfg.BcryptCost)
	bookings := app.NewBookingService(repo)
	reviews := app.NewReviewService(repo, catalog)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(auth, catalog, bookings, reviews, tokens, float64(cfg.LoginRPS)))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("db close failed")
	}
	log.Info().Msg("shutdown complete")
}
