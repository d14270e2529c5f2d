package relay

import (
	"context"
	"logpush/internal/relay/shared"
	"logpush/internal/transport"
	"sync"
)

// Sink collecting frames in memory
type recordingSink struct {
	mu     sync.Mutex
	frames []string
}

func (sink *recordingSink) Send(ctx context.Context, frame []byte) (err error) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.frames = append(sink.frames, string(frame))
	return
}

func (sink *recordingSink) Close() (err error) {
	return
}

func (sink *recordingSink) received() (frames []string) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	frames = append(frames, sink.frames...)
	return
}

// Opener backed by a real channel over sink. Linger lets every frame reach the sink.
func channelOpener(sink *recordingSink, opts transport.Options) (open func(ctx context.Context) (shared.OutboundChannel, error)) {
	open = func(ctx context.Context) (channel shared.OutboundChannel, err error) {
		channel, err = transport.New(ctx, func(ctx context.Context) (transport.Sink, error) {
			return sink, nil
		}, opts)
		return
	}
	return
}
