package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"carbe/internal/app/commands"
	calendarapp "carbe/internal/app/handlers/calendar"
	searchapp "carbe/internal/app/handlers/search"
	"carbe/internal/app/middleware"
	"carbe/internal/app/outbox"
	"carbe/internal/app/queries"
	appuow "carbe/internal/app/uow"
	domainvehicle "carbe/internal/domain/vehicle"
	kafkabroker "carbe/internal/infra/broker/kafka"
	"carbe/internal/infra/config"
	mongodb "carbe/internal/infra/db/mongo"
	ginserver "carbe/internal/infra/http/gin"
	"carbe/internal/infra/inbox"
	"carbe/internal/infra/obs"
	outboxmongo "carbe/internal/infra/outbox"
	"carbe/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("VEHICLE_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = defaultVehicleFixturesPath()
	}
	if err := app.loadVehicleFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("vehicle fixtures load failed", "error", err, "path", fixturesPath)
	}

	app.startWorkers(ctx, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	cfg      config.Config
	handlers ginserver.Handlers
	vehicles domainvehicle.Repository

	ping     func(ctx context.Context) error
	producer *kafkabroker.Producer
	consumer *kafkabroker.Consumer
	worker   *outboxmongo.Worker
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	app := application{cfg: cfg}

	var (
		uowFactory  appuow.Factory
		outboxStore outbox.Outbox
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		app.ping = client.Ping
		app.vehicles = mongodb.NewVehicleRepository(client.DB)
		uowFactory = mongodb.Factory{
			DB:           client.DB,
			VehicleRepo:  app.vehicles,
			CalendarRepo: mongodb.NewCalendarRepository(client.DB),
			BookingRepo:  mongodb.NewBookingRepository(client.DB),
		}

		store := outboxmongo.NewStore(client.DB)
		outboxStore = store
		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			app.producer = producer
			app.worker = &outboxmongo.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			applier := &kafkabroker.BookingApplier{
				Factory: uowFactory,
				Deduper: inbox.NewStore(client.DB, "carbe-calendar"),
				Logger:  logger,
			}
			consumer, err := kafkabroker.NewConsumer(cfg.KafkaBrokers, "carbe-calendar", nil, applier)
			if err != nil {
				return application{}, fmt.Errorf("kafka consumer: %w", err)
			}
			app.consumer = consumer
		}
	default:
		app.vehicles = memory.NewVehicleRepository()
		uowFactory = memory.Factory{
			VehicleRepo:  app.vehicles,
			CalendarRepo: memory.NewCalendarRepository(),
			BookingRepo:  memory.NewBookingRepository(),
		}
		outboxStore = memory.NewOutbox()
	}

	idStore := memory.NewIdempotencyStore(cfg.IdempotencyTTL)

	commandBus := commands.NewInMemoryBus()
	availabilityHandler := &calendarapp.SetAvailabilityHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    outbox.JSONEventEncoder{},
	}
	commands.RegisterHandler(commandBus, calendarapp.SetAvailabilityCommand{}.Key(), availabilityHandler)
	pricingHandler := &calendarapp.SetPricingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    outbox.JSONEventEncoder{},
	}
	commands.RegisterHandler(commandBus, calendarapp.SetPricingCommand{}.Key(), pricingHandler)

	queryBus := queries.NewInMemoryBus()
	monthHandler := &calendarapp.GetMonthHandler{
		UoWFactory:       uowFactory,
		WeekendMarkupPct: cfg.WeekendMarkupPct,
	}
	queries.RegisterHandler(queryBus, calendarapp.GetMonthQuery{}.Key(), monthHandler)
	catalogHandler := &searchapp.CatalogHandler{UoWFactory: uowFactory}
	queries.RegisterHandler(queryBus, searchapp.CatalogQuery{}.Key(), catalogHandler)

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryValidation())

	app.handlers = ginserver.Handlers{
		Calendar: ginserver.CalendarHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Catalog: ginserver.CatalogHandler{
			Queries: queryBusWithMiddleware,
			Logger:  logger,
		},
	}
	if cfg.JWTSecret != "" {
		app.handlers.AuthMiddleware = ginserver.AuthMiddleware{Secret: []byte(cfg.JWTSecret), Logger: logger}.Handle
	}
	return app, nil
}

func (a application) ready() error {
	if a.ping == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return a.ping(ctx)
}

func (a application) startWorkers(ctx context.Context, logger *slog.Logger) {
	if a.worker != nil {
		go func() {
			if err := a.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if a.consumer != nil {
		topic := a.cfg.KafkaTopicPrefix + "booking.events.v1"
		go func() {
			if err := a.consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", "error", err)
			}
		}()
	}
}

func (a application) close(logger *slog.Logger) {
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			logger.Warn("consumer close failed", "error", err)
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("producer close failed", "error", err)
		}
	}
}

func (a application) loadVehicleFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("vehicle fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("vehicle fixtures file empty", "path", path)
		return nil
	}

	var fixtures []vehicleFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		v, err := domainvehicle.New(domainvehicle.CreateParams{
			ID:             domainvehicle.VehicleID(fx.ID),
			Host:           domainvehicle.HostID(fx.Host),
			Make:           fx.Make,
			Model:          fx.Model,
			Year:           fx.Year,
			Seats:          fx.Seats,
			Transmission:   fx.Transmission,
			FuelType:       fx.FuelType,
			City:           fx.City,
			BasePriceCents: fx.BasePriceCents,
			PhotoURL:       fx.PhotoURL,
			Now:            now,
		})
		if err != nil {
			logger.Error("fixture invalid", "vehicle_id", fx.ID, "error", err)
			continue
		}
		if err := a.vehicles.Save(ctx, v); err != nil {
			logger.Error("cannot store fixture vehicle", "vehicle_id", fx.ID, "error", err)
			continue
		}
		logger.Info("vehicle fixture imported", "vehicle_id", v.ID)
	}
	return nil
}

type vehicleFixture struct {
	ID             string `json:"id"`
	Host           string `json:"host"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	Seats          int    `json:"seats"`
	Transmission   string `json:"transmission"`
	FuelType       string `json:"fuel_type"`
	City           string `json:"city"`
	BasePriceCents int64  `json:"base_price_cents"`
	PhotoURL       string `json:"photo_url"`
}

func defaultVehicleFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "vehicles.json"),
		filepath.Join("backend", "data", "vehicles.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
