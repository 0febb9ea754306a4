package utils

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ledgerly/ledgerly-backend/config"
)

// KafkaAuditPublisher mirrors audit entries to a Kafka topic so downstream
// consumers (SIEM, warehousing) see the same trail as the database.
type KafkaAuditPublisher struct {
	writer *kafka.Writer
}

// NewKafkaAuditPublisher builds a publisher from KAFKA_BROKERS and
// KAFKA_AUDIT_TOPIC. Returns nil when brokers are not configured.
func NewKafkaAuditPublisher(cfg *config.Config) *KafkaAuditPublisher {
	if cfg.KafkaBrokers == "" {
		return nil
	}

	topic := cfg.KafkaAuditTopic
	if topic == "" {
		topic = "ledgerly.audit"
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	log.Printf("kafka audit publisher enabled, topic %s", topic)
	return &KafkaAuditPublisher{writer: writer}
}

func (p *KafkaAuditPublisher) PublishAuditEvent(ctx context.Context, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Time:  time.Now(),
		Value: payload,
	})
}

func (p *KafkaAuditPublisher) Close() error {
	return p.writer.Close()
}
