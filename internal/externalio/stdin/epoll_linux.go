//go:build linux

package stdin

import (
	"context"
	"errors"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/relay/shared"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Registers file with a new edge-triggered epoll instance.
// Returns ErrNotPollable when the kernel refuses the descriptor.
func NewEpollSource(namespace []string, file *os.File) (new *EpollSource, err error) {
	fd := int(file.Fd())

	err = unix.SetNonblock(fd, true)
	if err != nil {
		err = fmt.Errorf("failed to set non-blocking mode on fd %d: %w", fd, err)
		return
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		_ = unix.SetNonblock(fd, false)
		err = fmt.Errorf("failed to create epoll instance: %w", err)
		return
	}

	event := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET,
		Fd:     int32(fd),
	}
	err = unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &event)
	if err != nil {
		unix.Close(epfd)
		_ = unix.SetNonblock(fd, false)
		if errors.Is(err, unix.EPERM) {
			err = fmt.Errorf("%w: fd %d: %v", ErrNotPollable, fd, err)
			return
		}
		err = fmt.Errorf("failed to register fd %d with epoll: %w", fd, err)
		return
	}

	new = &EpollSource{
		Namespace: append(append([]string(nil), namespace...), global.NSoStdIn),
		file:      file,
		fd:        fd,
		epfd:      epfd,
		readBuf:   make([]byte, readChunkSize),
		Metrics:   &MetricStorage{},
	}
	return
}

// Waits up to timeout for readiness, then reads at most maxLinesPerPoll lines
func (source *EpollSource) Poll(ctx context.Context, timeout time.Duration) (state shared.PollState, lines []string, err error) {
	source.Metrics.Polls.Add(1)

	if len(source.backlog) > 0 {
		lines = source.takeBacklog()
		state = shared.DataAvailable
		source.Metrics.LinesRead.Add(uint64(len(lines)))
		return
	}
	if source.ended {
		state = shared.Ended
		return
	}
	if ctx.Err() != nil {
		state = shared.NoData
		return
	}

	if !source.unread {
		var ready int
		ready, err = source.wait(timeout)
		if err != nil {
			return
		}
		if ready == 0 {
			state = shared.NoData
			source.Metrics.EmptyPolls.Add(1)
			return
		}
	}

	source.backlog, err = source.readAvailable()
	if err != nil {
		source.backlog = nil
		return
	}
	lines = source.takeBacklog()

	if len(lines) > 0 {
		state = shared.DataAvailable
		source.Metrics.LinesRead.Add(uint64(len(lines)))
		return
	}
	if source.ended {
		state = shared.Ended
		return
	}

	// readiness without a full line (partial write or spurious wakeup)
	state = shared.NoData
	source.Metrics.EmptyPolls.Add(1)
	return
}

// EINTR is reported as zero ready descriptors
func (source *EpollSource) wait(timeout time.Duration) (ready int, err error) {
	waitMs := int(timeout.Milliseconds())
	if timeout > 0 && waitMs == 0 {
		waitMs = 1
	}

	events := make([]unix.EpollEvent, 1)
	ready, err = unix.EpollWait(source.epfd, events, waitMs)
	if err != nil {
		ready = 0
		if errors.Is(err, unix.EINTR) {
			err = nil
			return
		}
		err = fmt.Errorf("epoll wait failed: %w", err)
	}
	return
}

// Hands out up to maxLinesPerPoll lines, keeping the rest for the next poll
func (source *EpollSource) takeBacklog() (lines []string) {
	count := min(len(source.backlog), maxLinesPerPoll)
	lines = source.backlog[:count:count]
	source.backlog = source.backlog[count:]
	if len(source.backlog) == 0 {
		source.backlog = nil
	}
	return
}

// Reads until the descriptor would block or maxLinesPerPoll lines are complete.
// Edge-triggered registration reports no new edge for data left unread,
// so an early stop marks the descriptor for reading without a wait.
func (source *EpollSource) readAvailable() (lines []string, err error) {
	source.unread = false
	for {
		if len(lines) >= maxLinesPerPoll {
			source.unread = true
			return
		}

		n, readErr := unix.Read(source.fd, source.readBuf)
		if readErr != nil {
			if errors.Is(readErr, unix.EINTR) {
				continue
			}
			if errors.Is(readErr, unix.EAGAIN) {
				return
			}
			err = fmt.Errorf("read from fd %d failed: %w", source.fd, readErr)
			return
		}

		if n == 0 {
			source.ended = true
			if len(source.tail) > 0 {
				lines = append(lines, string(source.tail))
				source.tail = nil
			}
			return
		}

		source.Metrics.BytesRead.Add(uint64(n))

		var newLines []string
		newLines, source.tail = splitLines(source.tail, source.readBuf[:n])
		lines = append(lines, newLines...)
	}
}

// Releases the epoll instance and restores blocking mode. The file stays open.
func (source *EpollSource) Close() (err error) {
	err = unix.Close(source.epfd)
	if err != nil {
		err = fmt.Errorf("failed to close epoll instance: %w", err)
	}
	_ = unix.SetNonblock(source.fd, false)
	return
}
