package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/mahammedjunedattar/cloth-invent/internal/auth"
	"github.com/mahammedjunedattar/cloth-invent/internal/cache"
	"github.com/mahammedjunedattar/cloth-invent/internal/config"
	"github.com/mahammedjunedattar/cloth-invent/internal/database"
	"github.com/mahammedjunedattar/cloth-invent/internal/handlers"
	"github.com/mahammedjunedattar/cloth-invent/internal/logger"
	"github.com/mahammedjunedattar/cloth-invent/internal/metrics"
	"github.com/mahammedjunedattar/cloth-invent/internal/ratelimit"
	"github.com/mahammedjunedattar/cloth-invent/internal/repository"
	"github.com/mahammedjunedattar/cloth-invent/internal/routes"
	"github.com/mahammedjunedattar/cloth-invent/internal/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, envErr := config.LoadConfig()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("using process environment only", zap.Error(envErr))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		log.Warn("JWT_SECRET not set, using an insecure development secret")
		jwtSecret = "development-secret"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		log.Fatal("connecting to MongoDB", zap.Error(err))
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error("disconnecting from MongoDB", zap.Error(err))
		}
	}()

	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("creating indexes", zap.Error(err))
	}

	store := cache.New(cfg.StatsCacheTTL, time.Minute)
	defer store.Close()

	m := metrics.NewDefault()
	issuer := auth.NewIssuer(jwtSecret, cfg.JWTTTL)

	var limiter *ratelimit.Limiter
	if !cfg.IsDevelopment() {
		limiter = ratelimit.New(ratelimit.Config{
			Points: cfg.RateLimitPoints,
			Window: cfg.RateLimitWindow,
			Block:  cfg.RateLimitBlock,
		}, store)
	}

	deps := routes.Dependencies{
		Logger:  log,
		Metrics: m,
		Issuer:  issuer,
		Items: &handlers.ItemHandler{
			Items:     repository.NewItemRepository(db.Collection(database.ItemsCollection)),
			Audit:     repository.NewAuditRepository(db.Collection(database.AuditCollection)),
			Validator: validation.New(),
			Cache:     store,
			StatsTTL:  cfg.StatsCacheTTL,
			Metrics:   m,
		},
		Auth: &handlers.AuthHandler{
			Users:         repository.NewUserRepository(db.Collection(database.UsersCollection)),
			Issuer:        issuer,
			SecureCookies: !cfg.IsDevelopment(),
		},
		Health: &handlers.HealthHandler{
			Ping: func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		},
	}
	if limiter != nil {
		deps.Limiter = limiter
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
