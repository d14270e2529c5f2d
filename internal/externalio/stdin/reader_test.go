package stdin

import (
	"context"
	"errors"
	"io"
	"logpush/internal/global"
	"logpush/internal/relay/shared"
	"reflect"
	"strings"
	"testing"
	"time"
)

// Polls until Ended or error, collecting all lines
func drainSource(t *testing.T, source shared.LineSource) (lines []string, err error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for ctx.Err() == nil {
		state, batch, pollErr := source.Poll(ctx, 20*time.Millisecond)
		if pollErr != nil {
			err = pollErr
			return
		}
		lines = append(lines, batch...)
		if state == shared.Ended {
			return
		}
	}
	t.Fatal("source never reported end of input")
	return
}

func TestReaderSource_Lines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Empty", input: "", want: nil},
		{name: "TwoLines", input: "alpha\nbeta\n", want: []string{"alpha", "beta"}},
		{name: "TrailingPartial", input: "alpha\nbeta", want: []string{"alpha", "beta"}},
		{name: "CRLF", input: "alpha\r\nbeta\r\n", want: []string{"alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewReaderSource([]string{global.NSTest}, strings.NewReader(tt.input))
			defer source.Close()

			got, err := drainSource(t, source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}

			// stays ended
			state, _, _ := source.Poll(context.Background(), time.Millisecond)
			if state != shared.Ended {
				t.Fatalf("expected Ended on repeated poll, got %v", state)
			}
		})
	}
}

func TestReaderSource_NoDataWhileIdle(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	source := NewReaderSource([]string{global.NSTest}, reader)
	defer source.Close()

	start := time.Now()
	state, lines, err := source.Poll(context.Background(), 30*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != shared.NoData || len(lines) != 0 {
		t.Fatalf("expected NoData, got state=%v lines=%q", state, lines)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Fatalf("poll returned before its timeout")
	}

	go func() {
		_, _ = writer.Write([]byte("late\n"))
	}()

	state, lines, err = source.Poll(context.Background(), time.Second)
	if err != nil || state != shared.DataAvailable || !reflect.DeepEqual(lines, []string{"late"}) {
		t.Fatalf("expected late line, got state=%v lines=%q err=%v", state, lines, err)
	}
}

func TestReaderSource_ReadError(t *testing.T) {
	reader, writer := io.Pipe()
	source := NewReaderSource([]string{global.NSTest}, reader)
	defer source.Close()

	readFailure := errors.New("device gone")
	go func() {
		_, _ = writer.Write([]byte("ok\n"))
		writer.CloseWithError(readFailure)
	}()

	lines, err := drainSource(t, source)
	if !errors.Is(err, readFailure) {
		t.Fatalf("expected read failure, got %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"ok"}) {
		t.Fatalf("expected line before failure, got %q", lines)
	}
}
