package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"homeserve/pkg/events"
	"homeserve/pkg/kafka"
	kafka_config "homeserve/pkg/kafka/config"
	"homeserve/pkg/logger"
)

const (
	ServiceName     = "events"
	ConsumerGroupID = "homeserve-events-audit"
)

// The events worker tails the booking lifecycle topic and writes a
// structured audit log entry per event.
func main() {
	log := logger.New(logger.Config{
		Level:     envOr("LOG_LEVEL", "info"),
		Format:    logger.JSON,
		AddSource: true,
		Service:   ServiceName,
	})

	consumer, err := kafka.NewConsumer(
		kafka_config.Load(),
		events.TopicBookingLifecycle,
		ConsumerGroupID,
		handleEvent(log),
		log,
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	log.Info("Events worker started", "topic", events.TopicBookingLifecycle, "group_id", ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("Consumer stopped unexpectedly", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Events worker stopped")
}

func handleEvent(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event events.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			log.Error("Failed to decode booking event",
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
				"error", err,
			)
			// Undecodable payloads are dropped, not retried.
			return nil
		}

		log.Info("Booking event",
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"booking_id", event.BookingID,
			"service_id", event.ServiceID,
			"status", event.Status,
			"customer_email", event.CustomerEmail,
			"provider_email", event.ProviderEmail,
			"scheduled_at", event.ScheduledAt,
			"occurred_at", event.OccurredAt,
		)
		return nil
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
