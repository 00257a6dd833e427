package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/astrobookings/config"
	"github.com/Domenick1991/astrobookings/internal/domain"
	"github.com/Domenick1991/astrobookings/internal/email"
	"github.com/Domenick1991/astrobookings/internal/kafka"
	"github.com/Domenick1991/astrobookings/internal/logging"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
)

func main() {
	cfgPath := pflag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Kafka.Enabled() {
		logger.Error("worker needs kafka.brokers")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.FlightEventsTopic
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic)
	defer consumer.Close()

	sender := email.NewSender(logger)
	logger.Info("worker consuming flight events", "topic", topic, "group_id", cfg.Kafka.GroupID)

	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event domain.FlightEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Warn("skipping undecodable flight event", "offset", msg.Offset, "error", err)
			return nil
		}
		return sender.Send(ctx, event)
	})
	if err != nil {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
