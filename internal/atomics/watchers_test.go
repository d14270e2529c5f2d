package atomics

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestWaitUntilZero(t *testing.T) {
	tests := []struct {
		name          string
		initial       uint64
		mutate        func(a *atomic.Uint64)
		maxWaitTime   time.Duration
		expectReached bool
	}{
		{
			name:          "already zero",
			initial:       0,
			mutate:        func(a *atomic.Uint64) {},
			maxWaitTime:   500 * time.Millisecond,
			expectReached: true,
		},
		{
			name:    "eventually reaches zero",
			initial: 5,
			mutate: func(a *atomic.Uint64) {
				go func() {
					time.Sleep(50 * time.Millisecond)
					a.Store(0)
				}()
			},
			maxWaitTime:   2 * time.Second,
			expectReached: true,
		},
		{
			name:          "never reaches zero",
			initial:       3,
			mutate:        func(a *atomic.Uint64) {},
			maxWaitTime:   200 * time.Millisecond,
			expectReached: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a atomic.Uint64
			a.Store(tt.initial)

			tt.mutate(&a)

			reached, last := WaitUntilZero(context.Background(), &a, tt.maxWaitTime)
			if reached != tt.expectReached {
				t.Fatalf("expected reached=%v, got %v (last=%d)", tt.expectReached, reached, last)
			}
			if reached && last != 0 {
				t.Fatalf("expected last value to be 0, got %d", last)
			}
		})
	}
}

func TestWaitUntilZero_Cancelled(t *testing.T) {
	var a atomic.Uint64
	a.Store(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	reached, last := WaitUntilZero(ctx, &a, 10*time.Second)
	if reached {
		t.Fatal("expected cancelled wait to report not reached")
	}
	if last != 1 {
		t.Fatalf("expected last value 1, got %d", last)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancelled wait took %v", time.Since(start))
	}
}
