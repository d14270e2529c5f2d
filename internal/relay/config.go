package relay

import (
	"encoding/json"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/message"
	"logpush/internal/transport"
	"os"
	"time"
)

// Loads JSON config from file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %w", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %w", path, err)
		return
	}
	return
}

// Empty values leave the duration unset so defaults apply
func parseDuration(field string, value string) (duration time.Duration, err error) {
	if value == "" {
		return
	}
	duration, err = time.ParseDuration(value)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", field, err)
		return
	}
	if duration < 0 {
		err = fmt.Errorf("%s cannot be negative (got %s)", field, value)
		return
	}
	return
}

// Parses JSON config into relay config
func (cfg JSONConfig) NewRelayConf() (config Config, err error) {
	// Record settings
	config.MessageType = cfg.Type
	config.EscapeMode = cfg.EscapeMode

	// Transport settings
	config.TransportKind = cfg.Transport.Kind
	config.Endpoint = cfg.Transport.Endpoint
	config.Topic = cfg.Transport.Topic
	config.LowWatermark = cfg.Transport.LowWatermark
	config.HighWatermark = cfg.Transport.HighWatermark

	config.ReconnectInterval, err = parseDuration("reconnect interval", cfg.Transport.ReconnectInterval)
	if err != nil {
		return
	}
	config.DrainTimeout, err = parseDuration("drain timeout", cfg.Transport.DrainTimeout)
	if err != nil {
		return
	}
	config.Linger, err = parseDuration("linger", cfg.Transport.Linger)
	if err != nil {
		return
	}
	config.SendTimeout, err = parseDuration("send timeout", cfg.Transport.SendTimeout)
	if err != nil {
		return
	}

	// Relay timing
	config.PollTimeout, err = parseDuration("poll timeout", cfg.Relay.PollTimeout)
	if err != nil {
		return
	}
	config.ReadyTimeout, err = parseDuration("ready timeout", cfg.Relay.ReadyTimeout)
	if err != nil {
		return
	}
	config.BackpressureInterval, err = parseDuration("backpressure interval", cfg.Relay.BackpressureInterval)
	if err != nil {
		return
	}

	// Metric settings
	config.MetricsEnabled = cfg.Metrics.Enabled
	config.MetricCollectionInterval, err = parseDuration("collection interval", cfg.Metrics.Interval)
	if err != nil {
		return
	}
	config.MetricMaxAge, err = parseDuration("metric max age", cfg.Metrics.MaxAge)
	if err != nil {
		return
	}
	return
}

// Sets defaults for any missing values
func (cfg *Config) SetDefaults() {
	if cfg.MessageType == "" {
		cfg.MessageType = global.DefaultMessageType
	}
	if cfg.EscapeMode == "" {
		cfg.EscapeMode = global.DefaultEscapeMode
	}

	// Transport
	if cfg.TransportKind == "" {
		cfg.TransportKind = global.DefaultTransport
	}
	if cfg.Endpoint == "" {
		switch cfg.TransportKind {
		case global.TransportZmq:
			cfg.Endpoint = global.DefaultZmqEndpoint
		case global.TransportBeats:
			cfg.Endpoint = global.DefaultBeatsEndpoint
		case global.TransportKafka:
			cfg.Endpoint = global.DefaultKafkaEndpoint
		}
	}
	if cfg.Topic == "" {
		cfg.Topic = global.DefaultKafkaTopic
	}
	if cfg.LowWatermark == 0 {
		cfg.LowWatermark = global.DefaultLowWatermark
	}
	if cfg.HighWatermark == 0 {
		cfg.HighWatermark = global.DefaultHighWatermark
	}
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = global.DefaultReconnectInterval
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = global.DefaultDrainTimeout
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = global.DefaultSendTimeout
	}

	// Timing
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = global.DefaultPollTimeout
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = global.DefaultReadyTimeout
	}
	if cfg.BackpressureInterval == 0 {
		cfg.BackpressureInterval = global.DefaultBackpressureInterval
	}

	// Metrics
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = global.DefaultMetricMaxAge
	}
}

// Rejects combinations the relay cannot run with. Expects defaults applied.
func (cfg Config) Validate() (err error) {
	switch cfg.TransportKind {
	case global.TransportZmq, global.TransportBeats, global.TransportKafka:
	default:
		err = fmt.Errorf("unknown transport '%s' (expected %s, %s or %s)",
			cfg.TransportKind, global.TransportZmq, global.TransportBeats, global.TransportKafka)
		return
	}

	_, err = message.NewFormatter(cfg.MessageType, 0, cfg.EscapeMode)
	if err != nil {
		return
	}

	if cfg.HighWatermark < cfg.LowWatermark {
		err = fmt.Errorf("high watermark (%d) must not be below low watermark (%d)",
			cfg.HighWatermark, cfg.LowWatermark)
		return
	}
	return
}

// Outbound channel policy derived from the config
func (cfg Config) ChannelOptions() (opts transport.Options) {
	opts = transport.Options{
		LowWatermark:      cfg.LowWatermark,
		HighWatermark:     cfg.HighWatermark,
		ReconnectInterval: cfg.ReconnectInterval,
		DrainTimeout:      cfg.DrainTimeout,
		Linger:            cfg.Linger,
	}
	return
}
