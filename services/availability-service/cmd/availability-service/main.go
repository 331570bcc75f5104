package main

import (
	"context"
	"net/http"
	"time"

	"github.com/barberdesk/barberdesk/libs/config"
	"github.com/barberdesk/barberdesk/libs/db"
	"github.com/barberdesk/barberdesk/libs/httpx"
	"github.com/barberdesk/barberdesk/libs/kafkax"
	otelx "github.com/barberdesk/barberdesk/libs/otel"
	"github.com/barberdesk/barberdesk/libs/runtime"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/consumer"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/handlers"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/inbox"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/schedulecache"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/service"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = config.LoadDotEnv()

	cfg, err := loadSettings()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.ServiceName))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if _, err := db.Migrate(ctx, pool, logger); err != nil {
			logger.Error("migrations failed", "err", err)
			panic(err)
		}
	}

	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	scheduleRepo := storage.NewScheduleRepository(pool)
	var schedules service.ScheduleSource = scheduleRepo
	var cache *schedulecache.Cache
	if rdb != nil {
		cache = schedulecache.New(rdb, scheduleRepo, cfg.ScheduleCacheTTL, logger)
		schedules = cache
	}

	engine := availability.NewEngine(cfg.Location, logger)
	svc := service.NewAvailabilityService(
		engine,
		schedules,
		storage.NewAppointmentRepository(pool),
		storage.NewServiceRepository(pool),
		logger,
		service.WithNotFound(storage.IsNotFound),
	)

	if cfg.KafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
		if cache != nil {
			c := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
				Brokers: cfg.KafkaBrokers,
				GroupID: cfg.KafkaGroupID,
				Topic:   cfg.KafkaTopic,
			}, consumer.ScheduleUpdatedHandler(cache, logger))
			go c.Run(ctx)
			logger.Info("schedule invalidation consumer started", "topic", cfg.KafkaTopic)
		}
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewAvailabilityHandler(svc, logger).Register(mux)

	var limit httpx.Middleware
	if rdb != nil {
		limit = httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "availability:ratelimit").Middleware(logger, cfg.RateLimitFailOpen)
	} else {
		limit = httpx.NewRateLimiter(cfg.RateLimitPerMinute).Middleware()
	}

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		limit,
		httpx.WithTimeout(cfg.RequestTimeout),
	)
	handler = otelhttp.NewHandler(handler, "availability")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "location", engine.Location().String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	if err := startGrpcServer(ctx, logger, cfg.GRPCPort, svc); err != nil {
		logger.Error("grpc server failed to start", "err", err)
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
