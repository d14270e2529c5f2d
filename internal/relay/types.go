package relay

import (
	"logpush/internal/message"
	"logpush/internal/queue/fifo"
	"logpush/internal/relay/collector"
	"logpush/internal/relay/dispatcher"
	"logpush/internal/relay/metrics"
	"logpush/internal/relay/shared"
	"sync/atomic"
	"time"
)

type JSONConfig struct {
	Type       string `json:"type,omitempty"`
	EscapeMode string `json:"escapeMode,omitempty"`
	Transport  struct {
		Kind              string `json:"kind,omitempty"`
		Endpoint          string `json:"endpoint,omitempty"`
		Topic             string `json:"topic,omitempty"`
		ReconnectInterval string `json:"reconnectInterval,omitempty"`
		LowWatermark      uint64 `json:"lowWatermark,omitempty"`
		HighWatermark     uint64 `json:"highWatermark,omitempty"`
		DrainTimeout      string `json:"drainTimeout,omitempty"`
		Linger            string `json:"linger,omitempty"`
		SendTimeout       string `json:"sendTimeout,omitempty"`
	} `json:"transport"`
	Relay struct {
		PollTimeout          string `json:"pollTimeout,omitempty"`
		ReadyTimeout         string `json:"readyTimeout,omitempty"`
		BackpressureInterval string `json:"backpressureInterval,omitempty"`
	} `json:"relay"`
	Metrics struct {
		Enabled  bool   `json:"enabled"`
		Interval string `json:"collectionInterval,omitempty"`
		MaxAge   string `json:"maximumRetention,omitempty"`
	} `json:"metrics"`
}

type Config struct {
	// Record settings
	MessageType string
	EscapeMode  string

	// Outbound transport
	TransportKind     string
	Endpoint          string
	Topic             string
	ReconnectInterval time.Duration
	LowWatermark      uint64
	HighWatermark     uint64
	DrainTimeout      time.Duration
	Linger            time.Duration
	SendTimeout       time.Duration

	// Task timing
	PollTimeout          time.Duration
	ReadyTimeout         time.Duration
	BackpressureInterval time.Duration

	// Metrics
	MetricsEnabled           bool
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

// Outcome of one run, printed as the final summary line
type Summary struct {
	Sent    uint64
	Elapsed time.Duration
	PID     int
}

// Relay coordinator. Owns everything shared by the two tasks.
type Relay struct {
	cfg Config

	queue      *fifo.Queue[string]
	ready      *shared.Latch
	terminated *shared.Latch
	sent       atomic.Uint64

	source shared.LineSource
	open   dispatcher.Opener

	Collector  *collector.Instance
	Dispatcher *dispatcher.Instance
	Formatter  *message.Formatter
	Gatherer   *metrics.Gatherer
}
