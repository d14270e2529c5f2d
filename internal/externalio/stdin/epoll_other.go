//go:build !linux

package stdin

import (
	"context"
	"logpush/internal/relay/shared"
	"os"
	"time"
)

// Readiness polling is only implemented on linux
func NewEpollSource(namespace []string, file *os.File) (new *EpollSource, err error) {
	err = ErrNotPollable
	return
}

func (source *EpollSource) Poll(ctx context.Context, timeout time.Duration) (state shared.PollState, lines []string, err error) {
	state = shared.Ended
	return
}

func (source *EpollSource) Close() (err error) {
	return
}
