package logctx

import (
	"bytes"
	"context"
	"logpush/internal/global"
	"strings"
	"testing"
)

func TestWatcher_DrainsQueueOnDone(t *testing.T) {
	done := make(chan struct{})
	ctx := New(context.Background(), global.NSTest, global.VerbosityStandard, done)
	logger := GetLogger(ctx)

	var output bytes.Buffer
	StartWatcher(logger, &output)

	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "first\n")
	LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "second\n")

	close(done)
	logger.Wait()

	out := output.String()
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected both events written before watcher exit, got:\n%s", out)
	}
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Fatalf("events written out of order:\n%s", out)
	}
	if logger.Pending() != 0 {
		t.Fatalf("expected empty queue after wait, got %d", logger.Pending())
	}
}

func TestWatcher_WaitWakeAndDedup(t *testing.T) {
	done := make(chan struct{})
	ctx := New(context.Background(), global.NSTest, global.VerbosityDebug, done)
	logger := GetLogger(ctx)

	var output bytes.Buffer
	StartWatcher(logger, &output)

	// Idle wake is harmless
	logger.Wake()

	const repeats = 11
	msg := "duplicate-message\n"
	for i := 0; i < repeats; i++ {
		LogEvent(ctx, global.VerbosityStandard, global.InfoLog, msg)
	}

	close(done)
	logger.Wait()

	out := output.String()
	if strings.Count(out, "] duplicate-message") != 1 {
		t.Fatalf("expected original message printed once, got:\n%s", out)
	}
	if !strings.Contains(out, "Suppressed 10 repeated messages") {
		t.Fatalf("expected suppression notice, got:\n%s", out)
	}
}
