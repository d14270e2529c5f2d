package kafka

import (
	"context"
	"errors"
	"fmt"
	"logpush/internal/transport"

	kafkago "github.com/segmentio/kafka-go"
)

func (sink *Sink) Send(ctx context.Context, frame []byte) (err error) {
	err = sink.writer.WriteMessages(ctx, kafkago.Message{Value: frame})
	if err != nil {
		var kafkaErr kafkago.Error
		if errors.As(err, &kafkaErr) && kafkaErr.Temporary() {
			err = fmt.Errorf("%w: %v", transport.ErrTemporary, err)
			return
		}
		err = fmt.Errorf("failed producing to brokers %v: %w", sink.brokers, err)
		return
	}
	return
}

func (sink *Sink) Close() (err error) {
	if sink == nil || sink.writer == nil {
		return
	}
	err = sink.writer.Close()
	sink.writer = nil
	return
}
