package stdin

import (
	"errors"
	"os"
	"sync/atomic"
)

const (
	readChunkSize   int = 65536
	maxLinesPerPoll int = 1024 // upper bound of lines returned by one Poll
)

// Descriptor cannot be registered with epoll (regular files, some devices)
var ErrNotPollable = errors.New("descriptor does not support readiness polling")

// Edge-triggered readiness source over a raw descriptor
type EpollSource struct {
	Namespace []string
	file      *os.File // kept so the descriptor stays open
	fd        int
	epfd      int
	readBuf   []byte
	tail      []byte   // incomplete trailing line
	backlog   []string // complete lines read past the per-poll cap
	unread    bool     // descriptor not read to EAGAIN, no new edge will be reported
	ended     bool     // end of input read, reported once backlog is delivered
	Metrics   *MetricStorage
}

// Goroutine backed source for any io.Reader
type ReaderSource struct {
	Namespace []string
	lines     chan string
	stop      chan struct{}
	stopped   atomic.Bool
	readErr   error // set before lines is closed
	ended     bool
	Metrics   *MetricStorage
}

type MetricStorage struct {
	LinesRead  atomic.Uint64
	BytesRead  atomic.Uint64
	Polls      atomic.Uint64
	EmptyPolls atomic.Uint64
}
