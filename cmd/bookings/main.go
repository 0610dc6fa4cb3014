package main

import (
	"homeserve/internal/bookings/handler"
	"homeserve/internal/bookings/repository"
	"homeserve/internal/bookings/service"
	"homeserve/internal/bookings/validator"
	catalogrepo "homeserve/internal/catalog/repository"
	"homeserve/pkg/app"
	"homeserve/pkg/config"
	"homeserve/pkg/events"
	"homeserve/pkg/kafka"
	kafka_config "homeserve/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")
	bookingService, cleanup := initServices(cfg)
	defer cleanup()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.BookingService, func()) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	listingRepo := catalogrepo.NewMongoListingRepository(cfg)

	var publisher service.EventPublisher
	cleanup := func() {}
	producer, err := kafka.NewProducer(kafka_config.Load(), events.TopicBookingLifecycle)
	if err != nil {
		// Event emission is best effort; the service runs without it.
		cfg.Log.Warn("Kafka producer unavailable, lifecycle events disabled", "error", err)
	} else {
		publisher = producer
		cleanup = func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		}
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		listingRepo,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Bookings service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, cleanup
}
