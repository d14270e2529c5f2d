package kafka

import (
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

type Options struct {
	Topic       string
	SendTimeout time.Duration
}

// Kafka producer sink. Acks are not requested, matching push semantics.
type Sink struct {
	brokers []string
	writer  *kafkago.Writer
}
