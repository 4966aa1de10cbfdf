package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airreservations/config"
	"github.com/Domenick1991/airreservations/internal/kafka"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/Domenick1991/airreservations/internal/notification"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Fatalw("kafka.brokers is empty, nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic, logger)
	defer func() { _ = consumer.Close() }()

	sender := notification.NewSender(nil, logger)

	logger.Infow("worker started", "topic", cfg.Kafka.EventsTopic, "group_id", cfg.Kafka.GroupID)
	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			// one failed notice must not stall the partition
			logger.Errorw("notification failed", "event_id", event.ID, "type", event.Type, "error", err)
		}
		return nil
	})
	if err != nil {
		logger.Fatalw("consumer stopped", "error", err)
	}
	logger.Infow("worker stopped")
}
