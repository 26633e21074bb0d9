package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ImadGanwa/AcademyAi-sub003/internal/booking"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/config"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/consumer"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/db"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/handlers"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/httpx"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/inbox"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/kafkax"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/meeting"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/model"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/otelx"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/outbox"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/runtime"
	"github.com/ImadGanwa/AcademyAi-sub003/internal/storage"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 2)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if config.Bool("DB_MIGRATE", true) {
		if err := db.Migrate(ctx, pool, config.String("MIGRATIONS_DIR", "migrations")); err != nil {
			logger.Error("migrations failed", "err", err)
			panic(err)
		}
	}

	availabilityRepo := storage.NewAvailabilityRepository(pool)
	bookingRepo := storage.NewBookingRepository(pool)
	profileRepo := storage.NewProfileRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	inboxRepo := inbox.NewRepository(pool)

	brokers := config.String("KAFKA_BROKERS", "")

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: config.Duration("OUTBOX_POLL_EVERY", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	// Profile read model stays in sync by consuming profile.updated.v1 from
	// the identity service.
	if brokers != "" {
		profileConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", service),
			Topic:   config.String("KAFKA_PROFILE_TOPIC", "profile.updated.v1"),
		}, func(ctx context.Context, msg kafka.Message) error {
			var p model.Profile
			if err := json.Unmarshal(msg.Value, &p); err != nil {
				logger.Error("invalid profile event", "err", err)
				return nil
			}
			if p.UserID == "" {
				logger.Error("profile event missing user id")
				return nil
			}
			return profileRepo.Upsert(ctx, p)
		})
		go profileConsumer.Run(ctx)
	}

	var provisioner meeting.Provisioner = meeting.NewNoopProvisioner()
	if url := config.String("MEETING_WEBHOOK_URL", ""); url != "" {
		provisioner = meeting.NewWebhookProvisioner(url, config.String("MEETING_WEBHOOK_TOKEN", ""))
	}

	notifier := outbox.NewNotifier(pool, outboxRepo, logger)
	svc := booking.NewService(availabilityRepo, bookingRepo, profileRepo, provisioner, notifier, logger)

	availabilityHandler := handlers.NewAvailabilityHandler(svc, logger)
	bookingHandler := handlers.NewBookingHandler(svc, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)

	// The public slot listing is the only unauthenticated route, so it gets
	// its own rate limit.
	publicSlots := http.HandlerFunc(availabilityHandler.PublicSlots)
	publicLimit := config.Int("PUBLIC_RATE_LIMIT", 60)
	publicWindow := config.Duration("PUBLIC_RATE_WINDOW", time.Minute)
	var limited http.Handler
	if redisURL := config.String("REDIS_URL", ""); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("invalid redis url", "err", err)
			panic(err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter := httpx.NewRedisRateLimiter(rdb, publicLimit, publicWindow, service)
		limited = limiter.Middleware(logger, true)(publicSlots)
	} else {
		limited = httpx.NewRateLimiter(publicLimit, publicWindow).Middleware()(publicSlots)
	}
	mux.Handle("/api/v1/public/mentors/", limited)

	mux.HandleFunc("/api/v1/mentors/availability", availabilityHandler.Availability)
	mux.HandleFunc("/api/v1/bookings", bookingHandler.Collection)
	mux.HandleFunc("/api/v1/bookings/", bookingHandler.Item)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id,X-User-Id,X-User-Role")),
			MaxAge:         config.Duration("CORS_MAX_AGE", 10*time.Minute),
		}),
	)
	handler = otelhttp.NewHandler(handler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
	logger.Info("shutdown complete")
}

func parseList(raw string) []string {
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
