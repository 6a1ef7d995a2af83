package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/Vitaee/FlexReviewApi/internal/adapters/http_server"
	"github.com/Vitaee/FlexReviewApi/internal/adapters/hostaway"
	"github.com/Vitaee/FlexReviewApi/internal/adapters/observability"
	"github.com/Vitaee/FlexReviewApi/internal/adapters/ratelimit"
	"github.com/Vitaee/FlexReviewApi/internal/app"
	"github.com/Vitaee/FlexReviewApi/internal/domain"
	"github.com/Vitaee/FlexReviewApi/internal/shared"
	mysqlrepo "github.com/Vitaee/FlexReviewApi/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// review source: live Hostaway when a key is configured, mock payload otherwise
	var source domain.ReviewSource
	if cfg.HostawayKey != "" {
		client, err := hostaway.New(cfg.HostawayBase, cfg.HostawayAccountID, cfg.HostawayKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
		source = client
	} else {
		source = hostaway.NewFileSource(cfg.MockDataPath)
	}

	// per-IP rate limiting: shared Redis window if configured, in-process otherwise
	var limiter domain.LimiterStore
	if cfg.RateLimitEnabled {
		if cfg.RedisAddr != "" {
			limiter = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		} else {
			limiter = ratelimit.NewMemoryLimiter()
		}
	}

	repo := mysqlrepo.New(db)
	svc := app.NewReviewService(source, repo)

	// http
	srv := server.New(limiter, cfg.RateLimitPerMinute)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
