// Line sources over standard input
package stdin

import (
	"context"
	"errors"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/relay/shared"
	"os"

	"golang.org/x/term"
)

// Opens the best available line source for file.
// Epoll is preferred, descriptors it cannot watch fall back to a reader goroutine.
func Open(ctx context.Context, file *os.File) (source shared.LineSource, err error) {
	namespace := logctx.GetTagList(ctx)

	epollSource, err := NewEpollSource(namespace, file)
	if err == nil {
		logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
			"Using edge-triggered readiness polling for %s\n", file.Name())
		source = epollSource
		return
	}
	if !errors.Is(err, ErrNotPollable) {
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Input %s is not pollable, falling back to buffered reader\n", file.Name())
	err = nil
	source = NewReaderSource(namespace, file)
	return
}

// Reports whether file is attached to a terminal
func IsInteractive(file *os.File) (interactive bool) {
	interactive = term.IsTerminal(int(file.Fd()))
	return
}
