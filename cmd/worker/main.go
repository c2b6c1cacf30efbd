package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/adapters/event"
	"github.com/khoahotran/careerfolio/adapters/mail"
	"github.com/khoahotran/careerfolio/adapters/persistence"
	"github.com/khoahotran/careerfolio/internal/application/usecase/notification"
	"github.com/khoahotran/careerfolio/internal/config"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
	"github.com/khoahotran/careerfolio/pkg/tracing"
)

const (
	serviceName    = "careerfolio-worker"
	defaultGroupID = "careerfolio-notifier"
	maxBackoff     = 30 * time.Second
)

// initialBackoff is the first wait after a failed fetch or handle.
var initialBackoff = time.Second

// messageReader is the part of *kafka.Reader the consumer loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// handleFunc processes one message. A returned error leaves the message uncommitted.
type handleFunc func(ctx context.Context, msg kafka.Message) error

func main() {
	fmt.Println("Starting CareerFolio Worker...")

	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("FATAL: cannot load config: %v", err))
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	shutdownTracer, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracer", err)
	}
	defer shutdownTracer(context.Background())

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	sender, err := mail.NewSMTPSender(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize SMTP sender", err)
	}

	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	courseRepo := persistence.NewPostgresCourseRepo(dbPool, appLogger)

	var recorder metrics.Recorder = metrics.NewNopRecorder()
	if cfg.App.MetricsEnabled {
		registry := prometheus.NewRegistry()
		recorder = metrics.NewCollector(registry)
		go serveMetrics(cfg.App.Port, registry, appLogger)
	}

	sendMailUC := notification.NewSendMailUseCase(sender, userRepo, courseRepo, recorder, appLogger)

	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = defaultGroupID
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	consume := func(topic string, handle handleFunc) {
		defer wg.Done()
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
		defer reader.Close()
		runConsumer(ctx, reader, handle, appLogger.With(zap.String("topic", topic)))
	}

	wg.Add(2)
	go consume(event.TopicMailEvents, func(ctx context.Context, msg kafka.Message) error {
		var payload event.MailEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			return apperror.NewInvalidInput("malformed mail event", err)
		}
		return sendMailUC.ExecuteMailEvent(ctx, payload)
	})
	go consume(event.TopicEnrollmentEvents, func(ctx context.Context, msg kafka.Message) error {
		var payload event.EnrollmentEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			return apperror.NewInvalidInput("malformed enrollment event", err)
		}
		return sendMailUC.ExecuteEnrollmentEvent(ctx, payload)
	})

	appLogger.Info("Worker listening",
		zap.Strings("topics", []string{event.TopicMailEvents, event.TopicEnrollmentEvents}),
		zap.String("group_id", groupID),
	)
	wg.Wait()
	appLogger.Info("Worker exited")
}

// runConsumer commits a message once it was handled or can never be handled.
// Other failures are retried with backoff before the next message is fetched,
// since committing a later offset would skip the failed one. Fetch errors back
// off the same way so a lost broker is not polled in a tight loop.
func runConsumer(ctx context.Context, reader messageReader, handle handleFunc, log logger.Logger) {
	backoff := initialBackoff
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Error("Failed to fetch message from Kafka", err, zap.Duration("backoff", backoff))
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = initialBackoff

		fields := []zap.Field{zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.String("key", string(msg.Key))}

		if !handleWithRetry(ctx, msg, handle, log, fields) {
			return
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("Failed to commit message", err, fields...)
		}
	}
}

// handleWithRetry returns false only when ctx is done before the message was settled.
func handleWithRetry(ctx context.Context, msg kafka.Message, handle handleFunc, log logger.Logger, fields []zap.Field) bool {
	backoff := initialBackoff
	for {
		err := handle(ctx, msg)
		switch {
		case err == nil:
			return true
		case errors.Is(err, apperror.ErrInvalidInput), errors.Is(err, apperror.ErrNotFound):
			log.Warn("Skipping unprocessable message", append(fields, zap.Error(err))...)
			return true
		}

		log.Error("Failed to process message, retrying", err, append(fields, zap.Duration("backoff", backoff))...)
		if !sleep(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff)
	}
}

// sleep reports false when ctx was done before d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	return min(2*d, maxBackoff)
}

func serveMetrics(port string, registry *prometheus.Registry, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	log.Info("Worker metrics listening", zap.String("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Metrics server stopped", err)
	}
}
