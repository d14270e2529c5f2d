package zmq

import (
	"context"
	"fmt"
	"logpush/internal/transport"

	"github.com/zeromq/goczmq"
)

// Queues one frame on the socket. The socket reconnects on its own, so every
// failure is reported as temporary and the frame is retried on the same socket.
func (sink *Sink) Send(ctx context.Context, frame []byte) (err error) {
	err = sink.sock.SendFrame(frame, goczmq.FlagNone)
	if err != nil {
		err = fmt.Errorf("%w: push to %s: %v", transport.ErrTemporary, sink.endpoint, err)
		return
	}
	return
}

// Destroys the socket without lingering
func (sink *Sink) Close() (err error) {
	if sink == nil || sink.sock == nil {
		return
	}
	sink.sock.Destroy()
	sink.sock = nil
	return
}
