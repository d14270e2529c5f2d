// Kafka transport sink
package kafka

import (
	"context"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/transport"
	"net"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const batchTimeout time.Duration = 10 * time.Millisecond

// Parses a comma separated broker list
func parseBrokers(endpoint string) (brokers []string, err error) {
	for _, broker := range strings.Split(endpoint, ",") {
		broker = strings.TrimSpace(broker)
		if broker == "" {
			continue
		}
		_, port, splitErr := net.SplitHostPort(broker)
		if splitErr != nil || port == "" {
			err = fmt.Errorf("invalid kafka broker '%s': expected host:port", broker)
			return
		}
		brokers = append(brokers, broker)
	}
	if len(brokers) == 0 {
		err = fmt.Errorf("kafka endpoint lists no brokers")
		return
	}
	return
}

// Validates brokers and returns a dialer creating producer sinks
func NewDialer(endpoint string, opts Options) (dialer transport.Dialer, err error) {
	brokers, err := parseBrokers(endpoint)
	if err != nil {
		return
	}
	if opts.Topic == "" {
		opts.Topic = global.DefaultKafkaTopic
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = global.DefaultSendTimeout
	}

	dialer = func(ctx context.Context) (sink transport.Sink, err error) {
		ctx = logctx.AppendCtxTag(ctx, global.NSoKafka)
		sink = newSink(brokers, opts)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Producing to topic '%s' on %s\n", opts.Topic, strings.Join(brokers, ","))
		return
	}
	return
}

// Writer connects lazily on first write. Each Send carries one frame, so batches
// are flushed at one message instead of waiting for BatchTimeout.
func newSink(brokers []string, opts Options) (new *Sink) {
	new = &Sink{
		brokers: brokers,
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  opts.Topic,
			Balancer:               &kafkago.LeastBytes{},
			RequiredAcks:           kafkago.RequireNone,
			BatchSize:              1,
			BatchTimeout:           batchTimeout,
			WriteTimeout:           opts.SendTimeout,
			AllowAutoTopicCreation: true,
		},
	}
	return
}
