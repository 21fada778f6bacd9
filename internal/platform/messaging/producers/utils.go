package producers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/transactionflow-billing/internal/config"
)

const (
	topicReadAttempts = 5
	topicReadBackoff  = 2 * time.Second
)

// ensureTopic dials the broker and creates topic when it does not exist yet
func ensureTopic(ctx context.Context, cfg *config.KafkaConfig, topic string, log *slog.Logger) error {
	dialer := &kafka.Dialer{Timeout: cfg.MaxWait}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(ctx, conn, topicSpec(cfg, topic), log); err != nil {
		return fmt.Errorf("failed to ensure topic %s exists: %w", topic, err)
	}
	return nil
}

// topicSpec fills in single-broker defaults for unset partition and replica counts
func topicSpec(cfg *config.KafkaConfig, topic string) kafka.TopicConfig {
	spec := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if spec.NumPartitions <= 0 {
		spec.NumPartitions = 1
	}
	if spec.ReplicationFactor <= 0 {
		spec.ReplicationFactor = 1
	}
	return spec
}

// topicAdmin is the part of kafka.Conn used to manage topics
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// createKafkaTopicIfNotExists creates the topic if no partitions can be read, retrying
// the read a few times while the broker starts up
func createKafkaTopicIfNotExists(ctx context.Context, conn topicAdmin, spec kafka.TopicConfig, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	for attempt := 1; attempt <= topicReadAttempts; attempt++ {
		partitions, err = conn.ReadPartitions(spec.Topic)
		if err == nil && len(partitions) > 0 {
			log.Info("Kafka topic already exists", "topic", spec.Topic, "partitions", len(partitions))
			return nil
		}
		if err == nil || errors.Is(err, kafka.UnknownTopicOrPartition) {
			break
		}
		log.Warn("Failed to read partitions, retrying", "topic", spec.Topic, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(topicReadBackoff):
		}
	}

	log.Info("Creating Kafka topic",
		"topic", spec.Topic,
		"partitions", spec.NumPartitions,
		"replication_factor", spec.ReplicationFactor,
		"last_read_error", err,
	)
	if err := conn.CreateTopics(spec); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", spec.Topic, err)
	}
	return nil
}
