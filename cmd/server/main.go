package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/adapters/event"
	httpAdapter "github.com/khoahotran/careerfolio/adapters/http"
	"github.com/khoahotran/careerfolio/adapters/media_storage"
	"github.com/khoahotran/careerfolio/adapters/persistence"
	adminUC "github.com/khoahotran/careerfolio/internal/application/usecase/admin"
	authUC "github.com/khoahotran/careerfolio/internal/application/usecase/auth"
	cartUC "github.com/khoahotran/careerfolio/internal/application/usecase/cart"
	courseUC "github.com/khoahotran/careerfolio/internal/application/usecase/course"
	enrollmentUC "github.com/khoahotran/careerfolio/internal/application/usecase/enrollment"
	learnUC "github.com/khoahotran/careerfolio/internal/application/usecase/learn"
	memoUC "github.com/khoahotran/careerfolio/internal/application/usecase/memo"
	paymentUC "github.com/khoahotran/careerfolio/internal/application/usecase/payment"
	profileUC "github.com/khoahotran/careerfolio/internal/application/usecase/profile"
	resumeUC "github.com/khoahotran/careerfolio/internal/application/usecase/resume"
	"github.com/khoahotran/careerfolio/internal/config"
	"github.com/khoahotran/careerfolio/pkg/auth"
	"github.com/khoahotran/careerfolio/pkg/logger"
	"github.com/khoahotran/careerfolio/pkg/metrics"
	"github.com/khoahotran/careerfolio/pkg/tracing"
)

const serviceName = "careerfolio-api"

func main() {
	fmt.Println("Start CareerFolio API Server...")

	// Load configuration
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
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			appLogger.Error("Failed to shutdown tracer", err)
		}
	}()

	// Initialize dependencies
	if cfg.DB.AutoMigrate {
		if err := persistence.RunMigrations(cfg, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", err)
		}
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	resumeRepo := persistence.NewPostgresResumeRepo(dbPool, appLogger)
	courseRepo := persistence.NewPostgresCourseRepo(dbPool, appLogger)
	enrollmentRepo := persistence.NewPostgresEnrollmentRepo(dbPool, appLogger)
	cartRepo := persistence.NewPostgresCartRepo(dbPool, appLogger)
	paymentRepo := persistence.NewPostgresPaymentRepo(dbPool, appLogger)
	memoRepo := persistence.NewPostgresMemoRepo(dbPool, appLogger)
	verificationStore := persistence.NewRedisVerificationStore(redisClient, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}
	videoStore, err := media_storage.NewMinioVideoStore(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize video store", err)
	}

	registry := prometheus.NewRegistry()
	var recorder metrics.Recorder = metrics.NewNopRecorder()
	var metricsHandler http.Handler
	if cfg.App.MetricsEnabled {
		recorder = metrics.NewCollector(registry)
		metricsHandler = metrics.Handler(registry)
	}

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	registerUseCase := authUC.NewRegisterUseCase(userRepo, verificationStore, kafkaClient, cfg.Auth.VerificationTTL, appLogger)
	courseUseCase := courseUC.NewCourseUseCase(courseRepo, uploader, videoStore, appLogger)
	adminUseCase := adminUC.NewAdminUseCase(courseRepo, appLogger)
	cartUseCase := cartUC.NewCartUseCase(cartRepo, enrollmentRepo, appLogger)
	checkoutUseCase := paymentUC.NewCheckoutUseCase(paymentRepo, kafkaClient, appLogger)
	enrollFreeUseCase := enrollmentUC.NewEnrollFreeUseCase(enrollmentRepo, kafkaClient, appLogger)
	listEnrollmentsUseCase := enrollmentUC.NewListMyEnrollmentsUseCase(enrollmentRepo, recorder, appLogger)
	getCourseUseCase := learnUC.NewGetCourseForLearnerUseCase(courseRepo, enrollmentRepo, appLogger)
	recordProgressUseCase := learnUC.NewRecordProgressUseCase(enrollmentRepo, recorder, appLogger)
	memoUseCase := memoUC.NewMemoUseCase(memoRepo, enrollmentRepo, appLogger)
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, resumeRepo, uploader, appLogger)
	bulkUpdateUseCase := resumeUC.NewBulkUpdateUseCase(resumeRepo, recorder, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth:     httpAdapter.NewAuthHandler(loginUseCase, registerUseCase, appLogger),
		Course:   httpAdapter.NewCourseHandler(courseUseCase, appLogger),
		Admin:    httpAdapter.NewAdminHandler(adminUseCase, appLogger),
		Commerce: httpAdapter.NewCommerceHandler(cartUseCase, checkoutUseCase, enrollFreeUseCase, listEnrollmentsUseCase, appLogger),
		Learn:    httpAdapter.NewLearnHandler(getCourseUseCase, recordProgressUseCase, memoUseCase, appLogger),
		Profile:  httpAdapter.NewProfileHandler(profileUseCase, bulkUpdateUseCase, appLogger),
		Video:    httpAdapter.NewVideoHandler(videoStore, appLogger),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(handlers, httpAdapter.RouterDeps{
		JWT:             jwtSvc,
		Metrics:         recorder,
		MetricsHandler:  metricsHandler,
		SendCodeLimiter: httpAdapter.NewIPRateLimiter(cfg.RateLimit.SendCodePerMinute, cfg.RateLimit.Burst),
		Logger:          appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	appLogger.Info("Server exited")
}
