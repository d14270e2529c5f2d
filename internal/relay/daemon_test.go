package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"logpush/internal/externalio/stdin"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/message"
	"logpush/internal/relay/shared"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testCtx() (ctx context.Context) {
	ctx = logctx.New(context.Background(), global.NSTest, global.VerbosityNone, nil)
	return
}

func testConfig() (cfg Config) {
	cfg = Config{
		MessageType:  "syslog",
		ReadyTimeout: time.Second,
		PollTimeout:  5 * time.Millisecond,
	}
	return
}

func decodeAll(t *testing.T, frames []string) (records []message.Record) {
	t.Helper()
	for _, frame := range frames {
		var record message.Record
		if err := json.Unmarshal([]byte(frame), &record); err != nil {
			t.Fatalf("frame %s is not valid JSON: %v", frame, err)
		}
		records = append(records, record)
	}
	return
}

func TestRun_RelaysAllLinesInOrder(t *testing.T) {
	global.PID = 4242
	sink := &recordingSink{}
	source := stdin.NewReaderSource([]string{global.NSTest}, strings.NewReader("a\nb\nc\n"))

	cfg := testConfig()
	cfg.Linger = time.Second
	relay, err := New(cfg, source, channelOpener(sink, cfg.ChannelOptions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := relay.Run(testCtx())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Sent != 3 {
		t.Fatalf("expected 3 sent, got %d", summary.Sent)
	}
	if summary.PID != 4242 {
		t.Fatalf("expected pid 4242, got %d", summary.PID)
	}

	var messages []string
	for _, record := range decodeAll(t, sink.received()) {
		if record.Type != "syslog" || record.PID != 4242 {
			t.Fatalf("unexpected record metadata %+v", record)
		}
		messages = append(messages, record.Message)
	}
	if !reflect.DeepEqual(messages, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected messages %q", messages)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	sink := &recordingSink{}
	source := stdin.NewReaderSource([]string{global.NSTest}, strings.NewReader(""))

	cfg := testConfig()
	relay, err := New(cfg, source, channelOpener(sink, cfg.ChannelOptions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := relay.Run(testCtx())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Sent != 0 || len(sink.received()) != 0 {
		t.Fatalf("expected nothing sent, got %d", summary.Sent)
	}
	if !strings.HasPrefix(summary.String(), "Processed 0 messages in ") {
		t.Fatalf("unexpected summary %q", summary.String())
	}
}

func TestRun_QuotesAndBackslashesSurvive(t *testing.T) {
	sink := &recordingSink{}
	line := `he said "hi" from C:\temp`
	source := stdin.NewReaderSource([]string{global.NSTest}, strings.NewReader(line+"\n"))

	cfg := testConfig()
	cfg.Linger = time.Second
	relay, err := New(cfg, source, channelOpener(sink, cfg.ChannelOptions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := relay.Run(testCtx()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := decodeAll(t, sink.received())
	if len(records) != 1 || records[0].Message != line {
		t.Fatalf("line did not survive the round trip: %+v", records)
	}
}

func TestRun_ReadyTimeout(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	source := stdin.NewReaderSource([]string{global.NSTest}, reader)

	// Channel establishment hangs until the run is stopped
	opened := make(chan struct{})
	open := func(ctx context.Context) (channel shared.OutboundChannel, err error) {
		close(opened)
		<-ctx.Done()
		err = ctx.Err()
		return
	}

	cfg := testConfig()
	cfg.ReadyTimeout = 50 * time.Millisecond
	relay, err := New(cfg, source, open)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	summary, err := relay.Run(testCtx())
	if !errors.Is(err, ErrReadyTimeout) {
		t.Fatalf("expected ready timeout, got %v", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("dispatcher cancellation reported alongside root cause: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("run did not stop promptly: %v", elapsed)
	}
	if summary.Sent != 0 {
		t.Fatalf("expected nothing sent, got %d", summary.Sent)
	}
	<-opened
}

func TestRun_OpenFailure(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	source := stdin.NewReaderSource([]string{global.NSTest}, reader)

	openErr := errors.New("invalid endpoint")
	open := func(ctx context.Context) (channel shared.OutboundChannel, err error) {
		err = openErr
		return
	}

	relay, err := New(testConfig(), source, open)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, runErr := relay.Run(testCtx())
		done <- runErr
	}()

	select {
	case err := <-done:
		if !errors.Is(err, openErr) {
			t.Fatalf("expected open error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay hung after channel establishment failed")
	}
}

func TestRun_InterruptIsNotAnError(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	source := stdin.NewReaderSource([]string{global.NSTest}, reader)
	sink := &recordingSink{}

	cfg := testConfig()
	relay, err := New(cfg, source, channelOpener(sink, cfg.ChannelOptions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(testCtx())
	go func() {
		_, _ = writer.Write([]byte("before interrupt\n"))
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	summary, err := relay.Run(ctx)
	if err != nil {
		t.Fatalf("interrupt reported as error: %v", err)
	}
	if summary.Sent > 1 {
		t.Fatalf("unexpected sent count %d", summary.Sent)
	}
}

func TestRun_MetricsTotals(t *testing.T) {
	sink := &recordingSink{}
	source := stdin.NewReaderSource([]string{global.NSTest}, strings.NewReader("one\ntwo\n"))

	cfg := testConfig()
	cfg.Linger = time.Second
	cfg.MetricsEnabled = true
	cfg.MetricCollectionInterval = 10 * time.Millisecond
	relay, err := New(cfg, source, channelOpener(sink, cfg.ChannelOptions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := relay.Run(testCtx()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := relay.Gatherer.Registry.Total("dispatched", nil); got != 2 {
		t.Fatalf("expected 2 dispatched recorded, got %d", got)
	}
	if got := relay.Gatherer.Registry.Total("lines_queued", nil); got != 2 {
		t.Fatalf("expected 2 queued recorded, got %d", got)
	}
}

func TestSummary_String(t *testing.T) {
	tests := []struct {
		summary Summary
		want    string
	}{
		{
			summary: Summary{Sent: 3, Elapsed: 1500 * time.Microsecond, PID: 42},
			want:    "Processed 3 messages in 1.5000ms. Tagged with @pid:42",
		},
		{
			summary: Summary{Sent: 0, Elapsed: 0, PID: 1},
			want:    "Processed 0 messages in 0.0000ms. Tagged with @pid:1",
		},
		{
			summary: Summary{Sent: 100000, Elapsed: 2*time.Second + 123400*time.Nanosecond, PID: 9},
			want:    "Processed 100000 messages in 2000.1234ms. Tagged with @pid:9",
		},
	}

	for _, tt := range tests {
		if got := tt.summary.String(); got != tt.want {
			t.Fatalf("got %q, want %q", got, tt.want)
		}
	}
}
