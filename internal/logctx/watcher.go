package logctx

import (
	"fmt"
	"io"
	"logpush/internal/global"
	"strings"
	"time"
)

const (
	dedupWindow      = 5 * time.Second
	dedupMinRepeats  = 10
	suppressCooldown = 1 * time.Minute
)

// Starts a go routine that reads events and writes formatted output to io.Writer.
// Stops when logger.Done is closed and every queued event has been written.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	// Closing Done must wake a watcher parked on the condition
	go func() {
		<-logger.Done
		logger.Wake()
	}()

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			event, ok := logger.next()
			if !ok {
				return
			}

			if dedup.suppress(event, output) {
				continue
			}
			fmt.Fprintf(output, "%s", event.Format())
		}
	}()
}

// Blocks until an event is queued. Returns false once done and empty.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
			logger.cond.Wait()
		}
	}

	// Pop one event from the front of the queue
	event = logger.queue[0]
	logger.queue = logger.queue[1:]
	ok = true
	return
}

// Reports whether event is a repeat that should not be printed.
// Emits a single suppression notice once enough repeats accumulate.
func (dedup *dedupState) suppress(event Event, output io.Writer) (skip bool) {
	now := time.Now()

	if event.Message == "" ||
		event.Message != dedup.lastMsg ||
		now.Sub(event.Timestamp) > dedupWindow {
		dedup.lastMsg = event.Message
		dedup.repeatCount = 1
		return
	}

	dedup.repeatCount++
	if dedup.repeatCount >= dedupMinRepeats && now.Sub(dedup.lastSuppressTime) >= suppressCooldown {
		fmt.Fprintf(output,
			"[%s] [%s] [%s] Suppressed %d repeated messages: %s",
			padTimestamp(event.Timestamp),
			strings.Join(event.Tags, "/"),
			global.InfoLog,
			dedup.repeatCount,
			dedup.lastMsg)

		dedup.lastSuppressTime = now
		dedup.repeatCount = 0
	}
	skip = true
	return
}
