package cli

import (
	"context"
	"fmt"
	"logpush/internal/externalio/beats"
	"logpush/internal/externalio/kafka"
	"logpush/internal/externalio/zmq"
	"logpush/internal/global"
	"logpush/internal/relay"
	"logpush/internal/relay/shared"
	"logpush/internal/transport"
)

// Selects the sink dialer for the configured transport kind
func NewDialer(cfg relay.Config) (dialer transport.Dialer, err error) {
	switch cfg.TransportKind {
	case global.TransportZmq:
		dialer, err = zmq.NewDialer(cfg.Endpoint, zmq.Options{
			ReconnectInterval: cfg.ReconnectInterval,
			SendTimeout:       cfg.SendTimeout,
			Linger:            cfg.Linger,
		})
	case global.TransportBeats:
		dialer, err = beats.NewDialer(cfg.Endpoint, beats.Options{
			Timeout: cfg.SendTimeout,
		})
	case global.TransportKafka:
		dialer, err = kafka.NewDialer(cfg.Endpoint, kafka.Options{
			Topic:       cfg.Topic,
			SendTimeout: cfg.SendTimeout,
		})
	default:
		err = fmt.Errorf("unknown transport '%s'", cfg.TransportKind)
	}
	return
}

// Opener establishing the outbound channel when the dispatcher starts.
// Endpoint errors surface there as establishment failures.
func newOpener(cfg relay.Config) (open func(ctx context.Context) (shared.OutboundChannel, error)) {
	open = func(ctx context.Context) (channel shared.OutboundChannel, err error) {
		dialer, err := NewDialer(cfg)
		if err != nil {
			return
		}
		channel, err = transport.New(ctx, dialer, cfg.ChannelOptions())
		return
	}
	return
}
