package producers

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/register-pos/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	partitionReadAttempts = 5
	partitionReadBackoff  = 2 * time.Second
)

var errNoBrokers = errors.New("no kafka brokers configured")

// ensureTopic creates topic through the cluster controller unless it already has partitions.
func ensureTopic(cfg *config.KafkaConfig, topic string, log *slog.Logger) error {
	conn, err := dialAny(cfg.BrokerList())
	if err != nil {
		return err
	}
	defer conn.Close()

	if topicExists(conn, topic, log) {
		log.Info("Kafka topic exists", "topic", topic)
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to find kafka controller: %w", err)
	}
	ctrl, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer ctrl.Close()

	tc := topicConfig(cfg, topic)
	if err := ctrl.CreateTopics(tc); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	log.Info("Created Kafka topic", "topic", topic, "partitions", tc.NumPartitions, "replication_factor", tc.ReplicationFactor)
	return nil
}

// dialAny connects to the first reachable broker.
func dialAny(brokers []string) (*kafka.Conn, error) {
	if len(brokers) == 0 {
		return nil, errNoBrokers
	}
	var errs []error
	for _, addr := range brokers {
		conn, err := kafka.Dial("tcp", addr)
		if err == nil {
			return conn, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", addr, err))
	}
	return nil, fmt.Errorf("failed to dial kafka: %w", errors.Join(errs...))
}

// topicExists retries the metadata read because a freshly started broker may not
// answer yet. Any partition returned means the topic exists.
func topicExists(conn *kafka.Conn, topic string, log *slog.Logger) bool {
	for attempt := 1; attempt <= partitionReadAttempts; attempt++ {
		partitions, err := conn.ReadPartitions(topic)
		if err == nil {
			return len(partitions) > 0
		}
		log.Warn("Kafka partition read failed", "topic", topic, "attempt", attempt, "error", err)
		if attempt < partitionReadAttempts {
			time.Sleep(partitionReadBackoff)
		}
	}
	return false
}

// topicConfig defaults to one partition so the change feed keeps a single order.
func topicConfig(cfg *config.KafkaConfig, topic string) kafka.TopicConfig {
	tc := kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if tc.NumPartitions <= 0 {
		tc.NumPartitions = 1
	}
	if tc.ReplicationFactor <= 0 {
		tc.ReplicationFactor = 1
	}
	return tc
}
