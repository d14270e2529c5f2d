package lifecycle

import (
	"context"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestNotify_NoSocketIsNoop(t *testing.T) {
	t.Setenv(EnvNameNotifySocket, "")
	ctx := logctx.New(context.Background(), global.NSTest, global.VerbosityNone, nil)
	if err := NotifyReady(ctx); err != nil {
		t.Fatalf("expected no-op without socket, got %v", err)
	}
}

func TestNotify_Messages(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: sockPath, Net: "unixgram"})
	if err != nil {
		t.Fatalf("failed to listen on notify socket: %v", err)
	}
	defer conn.Close()
	t.Setenv(EnvNameNotifySocket, sockPath)

	ctx := logctx.New(context.Background(), global.NSTest, global.VerbosityNone, nil)

	tests := []struct {
		name string
		send func() error
		want string
	}{
		{name: "Ready", send: func() error { return NotifyReady(ctx) }, want: "READY=1"},
		{name: "Status", send: func() error { return NotifyStatus(ctx, "line one\nline two") }, want: "STATUS=line one line two"},
		{name: "Stopping", send: func() error { return NotifyStopping(ctx, "Processed 1 messages") }, want: "STOPPING=1\nSTATUS=Processed 1 messages"},
	}

	buf := make([]byte, 512)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.send(); err != nil {
				t.Fatalf("notify failed: %v", err)
			}
			_ = conn.SetReadDeadline(time.Now().Add(time.Second))
			n, _, err := conn.ReadFromUnix(buf)
			if err != nil {
				t.Fatalf("failed to read notification: %v", err)
			}
			if got := string(buf[:n]); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleSignals_CancelsOnce(t *testing.T) {
	ctx, stopHandler := context.WithCancel(logctx.New(context.Background(), global.NSTest, global.VerbosityNone, nil))
	defer stopHandler()

	sigChan := make(chan os.Signal, 2)
	var cancels int
	cancelled := make(chan struct{}, 2)
	cancel := func() {
		cancels++
		cancelled <- struct{}{}
	}

	done := make(chan struct{})
	go func() {
		handleSignals(ctx, sigChan, cancel)
		close(done)
	}()

	sigChan <- syscall.SIGTERM
	sigChan <- syscall.SIGINT

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("signal did not cancel relay")
	}

	// let the second signal be absorbed
	time.Sleep(20 * time.Millisecond)
	stopHandler()
	<-done

	if cancels != 1 {
		t.Fatalf("expected exactly one cancel, got %d", cancels)
	}
}
