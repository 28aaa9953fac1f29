package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"

	"github.com/sweetshop/backend/internal/config"
	"github.com/sweetshop/backend/internal/es"
	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/mykafka"
	"github.com/sweetshop/backend/internal/search"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if configuration.KAFKA_ADDRESS == "" || configuration.ES_URL == "" {
		log.Fatal("indexer requires KAFKA_ADDRESS and ES_URL")
	}

	logger := logging.New(configuration.LOG_LEVEL)

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{configuration.KAFKA_ADDRESS},
		Topic:   mykafka.TopicSweetEvents,
		GroupID: "sweet-indexer",
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	ix := &search.Indexer{Reader: reader, ES: esClient, Index: "sweet"}
	if err := ix.Run(ctx); err != nil {
		log.Fatalf("indexer error: %v", err)
	}

	log.Println("indexer stopped")
}
