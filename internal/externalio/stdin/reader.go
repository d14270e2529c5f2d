package stdin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"logpush/internal/global"
	"logpush/internal/relay/shared"
	"time"
)

const readerBacklog int = 1024 // lines buffered ahead of the collector

// Starts a background reader over r. The goroutine exits at end of input,
// on read error, or once Close is called and it next tries to hand off a line.
func NewReaderSource(namespace []string, r io.Reader) (new *ReaderSource) {
	new = &ReaderSource{
		Namespace: append(append([]string(nil), namespace...), global.NSoStdIn),
		lines:     make(chan string, readerBacklog),
		stop:      make(chan struct{}),
		Metrics:   &MetricStorage{},
	}
	go new.read(bufio.NewReaderSize(r, readChunkSize))
	return
}

func (source *ReaderSource) read(reader *bufio.Reader) {
	defer close(source.lines)

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			source.Metrics.BytesRead.Add(uint64(len(line)))
			select {
			case source.lines <- trimTerminator(line):
			case <-source.stop:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				source.readErr = fmt.Errorf("failed reading input: %w", err)
			}
			return
		}
	}
}

// Waits up to timeout for the first line then collects what is immediately available
func (source *ReaderSource) Poll(ctx context.Context, timeout time.Duration) (state shared.PollState, lines []string, err error) {
	source.Metrics.Polls.Add(1)

	if source.ended {
		state, err = source.endState()
		return
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		state = shared.NoData
		source.Metrics.EmptyPolls.Add(1)
		return
	case <-timer.C:
		state = shared.NoData
		source.Metrics.EmptyPolls.Add(1)
		return
	case line, ok := <-source.lines:
		if !ok {
			source.ended = true
			state, err = source.endState()
			return
		}
		lines = append(lines, line)
	}

drain:
	for len(lines) < maxLinesPerPoll {
		select {
		case line, ok := <-source.lines:
			if !ok {
				source.ended = true
				break drain
			}
			lines = append(lines, line)
		default:
			break drain
		}
	}

	state = shared.DataAvailable
	source.Metrics.LinesRead.Add(uint64(len(lines)))
	return
}

// Ended on clean EOF, otherwise the read error
func (source *ReaderSource) endState() (state shared.PollState, err error) {
	if source.readErr != nil {
		err = source.readErr
		return
	}
	state = shared.Ended
	return
}

func (source *ReaderSource) Close() (err error) {
	if source.stopped.CompareAndSwap(false, true) {
		close(source.stop)
	}
	return
}
