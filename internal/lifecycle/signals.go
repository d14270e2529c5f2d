package lifecycle

import (
	"context"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"os"
	"os/signal"
	"syscall"
)

// Cancels the relay on the first interrupt signal so both tasks unwind to the
// summary path. Later signals are logged and ignored. Returns when ctx is done,
// ctx should outlive the relay context that cancel belongs to.
func SignalHandler(ctx context.Context, cancel context.CancelFunc) {
	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	handleSignals(ctx, sigChan, cancel)
}

func handleSignals(ctx context.Context, sigChan <-chan os.Signal, cancel context.CancelFunc) {
	var stopping bool
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			if stopping {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"Received signal %v while already stopping, ignoring\n", sig)
				continue
			}
			stopping = true
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
				"Received signal: %v, stopping relay\n", sig)
			cancel()
		}
	}
}
