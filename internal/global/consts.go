package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgBaseName string = "logpush"
	ProgVersion  string = "v0.7.0"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultMessageType string = "syslog"
	DefaultEscapeMode  string = EscapeBackslash

	// Escape policies for text embedded in records
	EscapeBackslash  string = "backslash"  // \ -> \\ and " -> \"
	EscapeSubstitute string = "substitute" // " -> '

	// Transport kinds
	TransportZmq   string = "zmq"
	TransportBeats string = "beats"
	TransportKafka string = "kafka"

	DefaultTransport     string = TransportZmq
	DefaultZmqEndpoint   string = "tcp://127.0.0.1:5014"
	DefaultBeatsEndpoint string = "127.0.0.1:5044"
	DefaultKafkaEndpoint string = "127.0.0.1:9092"
	DefaultKafkaTopic    string = "logs"

	// Outbound channel defaults
	DefaultLowWatermark      uint64        = 16 * 1024
	DefaultHighWatermark     uint64        = 64 * 1024
	DefaultReconnectInterval time.Duration = 1 * time.Second
	DefaultDrainTimeout      time.Duration = 100 * time.Millisecond
	DefaultLinger            time.Duration = 0
	DefaultSendTimeout       time.Duration = 3 * time.Second

	// Relay timing defaults
	DefaultPollTimeout          time.Duration = 50 * time.Millisecond
	DefaultReadyTimeout         time.Duration = 1 * time.Second
	DefaultBackpressureInterval time.Duration = 100 * time.Millisecond

	// Metric defaults
	DefaultMetricInterval time.Duration = 15 * time.Second
	DefaultMetricMaxAge   time.Duration = 1 * time.Hour

	// Timeout values
	RelayShutdownTimeout time.Duration = 5 * time.Second

	// Namespacing Name Components
	NSMetric     string = "Metrics"
	NSTest       string = "Test"
	NSCLI        string = "CLI"
	NSRelay      string = "Relay"
	NSCollector  string = "Collector"
	NSDispatcher string = "Dispatcher"
	NSQueue      string = "Queue"
	NSTransport  string = "Transport"
	NSFlusher    string = "Flusher"
	NSoStdIn     string = "Stdin"
	NSoZmq       string = "Zmq"
	NSoBeats     string = "Beats"
	NSoKafka     string = "Kafka"
)
