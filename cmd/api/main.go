package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parcel-platform/label-service/internal/application"
	appconfig "github.com/parcel-platform/label-service/internal/config"
	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/internal/infrastructure/colissimo"
	"github.com/parcel-platform/label-service/internal/infrastructure/events"
	mongoRepo "github.com/parcel-platform/label-service/internal/infrastructure/mongodb"
	"github.com/parcel-platform/label-service/internal/infrastructure/storage"
	"github.com/parcel-platform/label-service/pkg/cloudevents"
	"github.com/parcel-platform/label-service/pkg/errors"
	"github.com/parcel-platform/label-service/pkg/kafka"
	"github.com/parcel-platform/label-service/pkg/logging"
	"github.com/parcel-platform/label-service/pkg/metrics"
	"github.com/parcel-platform/label-service/pkg/middleware"
	"github.com/parcel-platform/label-service/pkg/mongodb"
)

const serviceName = "label-service"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting label-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Register custom binding validators (weight, output_format, ...)
	middleware.InitValidator()

	// Initialize MongoDB with instrumentation
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize Kafka producer with instrumentation
	kafkaProducer := kafka.NewProducer(config.Kafka)
	instrumentedProducer := kafka.NewInstrumentedProducer(kafkaProducer, m, logger)
	defer instrumentedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize CloudEvents factory and domain event publisher
	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceLabelService)
	publisher := events.NewKafkaPublisher(instrumentedProducer, eventFactory)

	// Initialize repositories and stores
	labelRepo := mongoRepo.NewLabelRepository(instrumentedMongo)
	legacyRepo := mongoRepo.NewLegacyLabelRepository(instrumentedMongo)
	settingsStore := mongoRepo.NewSettingsStore(instrumentedMongo)
	orderProvider := mongoRepo.NewOrderProvider(instrumentedMongo)

	// Seed runtime settings with their documented defaults
	settings := appconfig.NewSettings(settingsStore)
	if err := settings.EnsureDefaults(ctx); err != nil {
		logger.WithError(err).Error("Failed to seed settings defaults")
		os.Exit(1)
	}

	// Initialize artifact storage
	fileStore := storage.NewFileStore(config.LabelDir, config.BordereauDir)
	if err := fileStore.EnsureDirs(); err != nil {
		logger.WithError(err).Error("Failed to create storage directories")
		os.Exit(1)
	}
	logger.Info("Artifact storage ready", "labelDir", config.LabelDir, "bordereauDir", config.BordereauDir)

	// Initialize carrier gateway
	carrier := colissimo.NewClient(settings, logger, m)

	// Initialize application services
	reconciler := application.NewReconciler(labelRepo, legacyRepo, settings)
	labelService := application.NewLabelApplicationService(
		labelRepo,
		orderProvider,
		carrier,
		fileStore,
		settings,
		reconciler,
		publisher,
		m,
		logger,
		config.Sender,
	)
	bordereauService := application.NewBordereauApplicationService(
		labelRepo,
		legacyRepo,
		carrier,
		fileStore,
		settings,
		publisher,
		m,
		logger,
	)

	// Setup Gin router with middleware
	router := gin.New()

	// Apply standard middleware (includes recovery, request ID, correlation, logging, error handling)
	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	// Add metrics middleware
	router.Use(middleware.MetricsMiddleware(m))

	// Handle 404 and 405 errors
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return instrumentedMongo.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes - Orders
	orderAPI := router.Group("/api/v1/orders")
	{
		orderAPI.POST("/:orderId/label", generateLabelHandler(labelService, logger))
		orderAPI.GET("/:orderId/labels", getLabelsHandler(labelService, logger))
	}

	// API v1 routes - Labels
	labelAPI := router.Group("/api/v1/labels")
	{
		labelAPI.GET("/:trackingNumber/file", getLabelFileHandler(labelService, logger))
		labelAPI.DELETE("/:trackingNumber", deleteLabelHandler(labelService, logger))
	}

	// API v1 routes - Bordereaux
	bordereauAPI := router.Group("/api/v1/bordereaux")
	{
		bordereauAPI.POST("", generateBordereauHandler(bordereauService, logger))
		bordereauAPI.GET("", listBordereauxHandler(bordereauService, logger))
		bordereauAPI.GET("/:name/file", getBordereauFileHandler(bordereauService, logger))
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr   string
	LabelDir     string
	BordereauDir string
	MongoDB      *mongodb.Config
	Kafka        *kafka.Config
	Sender       application.SenderProfile
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8010"),
		LabelDir:     getEnv("LABEL_DIR", "/var/lib/label-service/labels"),
		BordereauDir: getEnv("BORDEREAU_DIR", "/var/lib/label-service/bordereaux"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "parcel"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		Sender: application.SenderProfile{
			CommercialName: getEnv("SENDER_COMMERCIAL_NAME", ""),
			Address: domain.Address{
				Company:   getEnv("SENDER_COMPANY", ""),
				LastName:  getEnv("SENDER_LAST_NAME", ""),
				FirstName: getEnv("SENDER_FIRST_NAME", ""),
				Line1:     getEnv("SENDER_ADDRESS_LINE1", ""),
				Line2:     getEnv("SENDER_ADDRESS_LINE2", ""),
				City:      getEnv("SENDER_CITY", ""),
				ZipCode:   getEnv("SENDER_ZIP_CODE", ""),
				Country:   getEnv("SENDER_COUNTRY", "FR"),
				Phone:     getEnv("SENDER_PHONE", ""),
				Email:     getEnv("SENDER_EMAIL", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP Handlers

func generateLabelHandler(service *application.LabelApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var cmd application.GenerateLabelCommand
		// The body is optional: an empty request labels the order with its
		// stored weight and the configured defaults.
		if c.Request.ContentLength > 0 {
			if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
				responder.RespondWithAppError(appErr)
				return
			}
		}
		cmd.OrderID = c.Param("orderId")

		label, err := service.GenerateLabel(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, label)
	}
}

func getLabelsHandler(service *application.LabelApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		labels, err := service.GetLabels(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, labels)
	}
}

func getLabelFileHandler(service *application.LabelApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		content, fileName, err := service.GetLabelFile(c.Request.Context(), c.Param("trackingNumber"))
		if err != nil {
			respondError(responder, err)
			return
		}

		serveAttachment(c, fileName, content)
	}
}

func deleteLabelHandler(service *application.LabelApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		deleted, err := service.DeleteLabel(c.Request.Context(), c.Param("trackingNumber"), c.Query("orderId"))
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, deleted)
	}
}

func generateBordereauHandler(service *application.BordereauApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		bordereau, err := service.Generate(c.Request.Context())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, bordereau)
	}
}

func listBordereauxHandler(service *application.BordereauApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		listing, err := service.List(c.Request.Context())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, listing)
	}
}

func getBordereauFileHandler(service *application.BordereauApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		name := c.Param("name")
		content, err := service.GetFile(c.Request.Context(), name)
		if err != nil {
			respondError(responder, err)
			return
		}

		serveAttachment(c, name, content)
	}
}

func respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func serveAttachment(c *gin.Context, fileName string, content []byte) {
	contentType := "application/octet-stream"
	if strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, content)
}
