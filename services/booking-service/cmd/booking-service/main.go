package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/db"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	"github.com/md-rashed-zaman/salonbook/libs/kv"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/dashboard"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/discount"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/lifecycle"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/maintenance"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/session"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
)

// backend is the shared store plus whatever the chosen driver needs at
// shutdown and for rate limiting.
type backend struct {
	store kv.Store
	redis *redis.Client
	close func()
}

func openBackend(ctx context.Context, logger *slog.Logger) (backend, error) {
	kind := strings.ToLower(config.String("STORE_BACKEND", "memory"))
	switch kind {
	case "memory":
		logger.Warn("using in-process store; data is lost on restart")
		return backend{store: kv.NewMemoryStore(), close: func() {}}, nil
	case "redis":
		redisDB, err := config.Int("REDIS_DB", 0)
		if err != nil {
			return backend{}, err
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.String("REDIS_ADDR", "localhost:6379"),
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       redisDB,
		})
		store := kv.NewRedisStoreFromClient(rdb)
		return backend{
			store: kv.Namespaced(store, config.String("REDIS_PREFIX", "")),
			redis: rdb,
			close: func() { _ = store.Close() },
		}, nil
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			return backend{}, err
		}
		pool, err := db.Open(ctx, dbURL, db.Options{})
		if err != nil {
			return backend{}, err
		}
		store := kv.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return backend{}, fmt.Errorf("ensure kv schema: %w", err)
		}
		return backend{store: store, close: pool.Close}, nil
	default:
		return backend{}, fmt.Errorf("unknown STORE_BACKEND %q", kind)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	envErr := config.LoadDotEnv()
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))
	if envErr != nil {
		logger.Warn("dotenv not loaded", "err", envErr)
	}

	ctx, stop := runtime.SignalContext(context.Background())
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

	be, err := openBackend(ctx, logger)
	if err != nil {
		logger.Error("store init failed", "err", err)
		panic(err)
	}
	defer be.close()

	appts := storage.NewAppointmentRepository(be.store, logger)
	grants := storage.NewGrantRepository(be.store, logger)

	var directory *session.Directory
	if path := config.String("WORKERS_FILE", ""); path != "" {
		directory, err = session.LoadDirectory(path)
	} else {
		directory, err = session.DefaultDirectory()
	}
	if err != nil {
		logger.Error("worker directory init failed", "err", err)
		panic(err)
	}

	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}
	jwtTTL, err := config.Duration("JWT_TTL", 12*time.Hour)
	if err != nil {
		panic(err)
	}
	signer, err := auth.NewSigner(jwtSecret, jwtTTL)
	if err != nil {
		panic(err)
	}
	resolver := session.NewResolver(signer, session.TrustWorkerHeader(config.Bool("TRUST_WORKER_HEADER", false)))

	m := metrics.New()

	brokers := config.String("KAFKA_BROKERS", "")
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	if pub := events.NewPublisher(events.Config{Brokers: brokers, Topic: config.String("KAFKA_NOTIFY_TOPIC", "")}, logger); pub != nil {
		defer func() { _ = pub.Close() }()
		notifiers = append(notifiers, notify.NewKafkaNotifier(pub, logger))
	}
	observers := lifecycle.Observers{m}
	if pub := events.NewPublisher(events.Config{Brokers: brokers, Topic: config.String("KAFKA_EVENTS_TOPIC", "")}, logger); pub != nil {
		defer func() { _ = pub.Close() }()
		observers = append(observers, events.NewCompletionObserver(pub, logger))
	}

	machine := lifecycle.NewMachine(appts, logger,
		lifecycle.WithCompletionObserver(observers),
		lifecycle.WithTransitionRecorder(m),
	)
	board := dashboard.New(appts, machine, directory, logger)
	pollEvery, err := config.Duration("DASHBOARD_POLL_INTERVAL", dashboard.DefaultPollInterval)
	if err != nil {
		panic(err)
	}
	poller := dashboard.NewPoller(pollEvery, logger)

	pct, err := config.Int("DISCOUNT_PERCENTAGE", discount.DefaultPercentage)
	if err != nil {
		panic(err)
	}
	engine := discount.NewEngine(appts, grants, notifiers, logger, discount.Config{Percentage: pct, Recorder: m})
	discounts := handlers.NewDiscounts(engine, grants)

	srvHandlers := &handlers.Server{
		Auth:         handlers.NewAuthHandler(directory, signer, logger),
		History:      handlers.NewHistoryHandler(appts, resolver, logger),
		Worker:       handlers.NewWorkerHandler(board, resolver, poller, logger),
		Appointments: handlers.NewAppointmentHandler(booking.NewService(appts, directory, logger), machine, appts, discounts, directory, resolver, logger),
		Discount:     handlers.NewDiscountHandler(discounts, resolver, logger),
	}

	origins := splitList(config.String("CORS_ALLOWED_ORIGINS", ""))
	srvHandlers.Worker.AllowSocketOrigins(origins)

	checks := []runtime.ReadyCheck{{Name: "store", Check: kv.ReadyCheck(be.store)}}
	if brokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.Handle("/metrics", m.Handler())

	loginLimit, err := config.Int("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		panic(err)
	}
	var limiter httpx.Limiter = httpx.NewMemoryLimiter(loginLimit, time.Minute)
	if be.redis != nil {
		limiter = httpx.NewRedisLimiter(be.redis, loginLimit, time.Minute, service+":ratelimit")
	}
	trustedProxies, err := httpx.ParseTrustedProxies(config.String("TRUSTED_PROXIES", ""))
	if err != nil {
		panic(err)
	}
	srvHandlers.Register(mux, m.Instrument, httpx.RateLimit(limiter, "worker_login", logger, trustedProxies...))

	bodyLimit, err := config.Int("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		panic(err)
	}
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithCORS(origins,
			"Authorization", session.HeaderWorkerID, session.HeaderClientName, session.HeaderClientEmail, session.HeaderInstallation),
		httpx.WithBodyLimit(int64(bodyLimit)),
		httpx.WithAccessLog(logger, resolver.Describe),
	)
	httpHandler = otelx.WrapHandler(httpHandler, "booking")

	if schedule := config.String("MAINTENANCE_SCHEDULE", ""); schedule != "" {
		snapshots := maintenance.NewSnapshotter(be.store, logger)
		go func() {
			if err := snapshots.Run(ctx, schedule); err != nil {
				logger.Error("maintenance scheduler stopped", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "workers", len(directory.All()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
