package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pawsnclaws/groomtime/internal/availability"
	"github.com/pawsnclaws/groomtime/internal/booking"
	"github.com/pawsnclaws/groomtime/internal/clock"
	"github.com/pawsnclaws/groomtime/internal/handlers"
	"github.com/pawsnclaws/groomtime/internal/outbox"
	"github.com/pawsnclaws/groomtime/internal/policy"
	"github.com/pawsnclaws/groomtime/internal/schedule"
	"github.com/pawsnclaws/groomtime/internal/storage"
	"github.com/pawsnclaws/groomtime/internal/validate"
	"github.com/pawsnclaws/groomtime/libs/config"
	"github.com/pawsnclaws/groomtime/libs/db"
	"github.com/pawsnclaws/groomtime/libs/httpx"
	"github.com/pawsnclaws/groomtime/libs/kafkax"
	otelx "github.com/pawsnclaws/groomtime/libs/otel"
	"github.com/pawsnclaws/groomtime/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
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
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	cal, err := clock.NewCalendar(clock.System(), config.String("BUSINESS_TIMEZONE", "America/New_York"))
	if err != nil {
		logger.Error("invalid business timezone", "err", err)
		panic(err)
	}
	stepMinutes := config.Int("SLOT_STEP_MINUTES", 15)

	outboxRepo := outbox.NewRepository(pool)
	appointmentRepo := storage.NewAppointmentRepository(pool, outboxRepo)
	settingsRepo := storage.NewSettingsRepository(pool)
	waitlistRepo := storage.NewWaitlistRepository(pool, outboxRepo)
	catalog := storage.NewServiceCatalog(pool)

	validator := validate.NewValidator(cal)
	window := policy.NewWindow(cal)
	hoursResolver := schedule.NewHoursResolver(cal)
	blockedMatcher := schedule.NewBlockedMatcher(cal)
	assembler := availability.NewAssembler(cal, hoursResolver, blockedMatcher, appointmentRepo, waitlistRepo, stepMinutes)
	guard := booking.NewGuard(cal, validator, window, blockedMatcher, hoursResolver, appointmentRepo, catalog, settingsRepo, stepMinutes)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	availabilityHandler := handlers.NewAvailabilityHandler(assembler, validator, window, settingsRepo, catalog, logger)
	bookingHandler := handlers.NewBookingHandler(guard, appointmentRepo, validator, cal, logger)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistRepo, validator, logger)
	adminHandler := handlers.NewAdminHandler(settingsRepo, catalog, logger)

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)},
	)
	mux.HandleFunc("/api/v1/public/availability", availabilityHandler.Get)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.Create)
	mux.HandleFunc("/api/v1/public/waitlist", waitlistHandler.Join)
	mux.HandleFunc("/api/v1/public/services", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		adminHandler.Services(w, r)
	})
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/today", bookingHandler.Today)
	mux.HandleFunc("/api/v1/appointments/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/api/v1/appointments/status", bookingHandler.UpdateStatus)
	mux.HandleFunc("/api/v1/admin/settings", adminHandler.Settings)
	mux.HandleFunc("/api/v1/admin/services", adminHandler.Services)
	mux.HandleFunc("/api/v1/admin/business-hours", adminHandler.BusinessHours)
	mux.HandleFunc("/api/v1/admin/business-hours/", adminHandler.BusinessHoursByWeekday)
	mux.HandleFunc("/api/v1/admin/blocked-dates", adminHandler.BlockedDates)
	mux.HandleFunc("/api/v1/admin/blocked-dates/", adminHandler.BlockedDateByID)

	rateLimit := rateLimitMiddleware(logger)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		rateLimit,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(config.String("CORS_ALLOWED_ORIGINS", "*"), ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		}),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "scheduling")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
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
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// rateLimitMiddleware prefers the shared Redis fixed-window limiter when
// REDIS_ADDR is set and falls back to the per-process one otherwise.
func rateLimitMiddleware(logger *slog.Logger) httpx.Middleware {
	limit := config.Int("RATE_LIMIT_RPM", 120)
	window := time.Minute

	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		logger.Info("rate limiting via redis", "addr", addr, "limit", limit)
		return httpx.NewRedisRateLimiter(rdb, limit, window, "scheduling:rl").Middleware(logger, true)
	}
	logger.Info("rate limiting in-process", "limit", limit)
	return httpx.NewRateLimiter(limit, window).Middleware()
}
