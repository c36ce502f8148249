package fanout_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jsamuelsen11/maingo/internal/platform/fanout"
)

func TestRun_EmptyItems(t *testing.T) {
	t.Parallel()

	results := fanout.Run(context.Background(), 4, []string{}, func(context.Context, string) (int, error) {
		t.Fatal("fn should not be called for empty items")
		return 0, nil
	})

	if results == nil {
		t.Fatal("expected non-nil slice for empty items")
	}
	if len(results) != 0 {
		t.Fatalf("len(results) = %d, want 0", len(results))
	}
}

func TestRun_OrderAndPartialFailure(t *testing.T) {
	t.Parallel()

	errNotFound := errors.New("404")
	endpoints := []string{"/slow", "/missing", "/fast"}
	delays := map[string]time.Duration{"/slow": 30 * time.Millisecond, "/fast": time.Millisecond}

	results := fanout.Run(context.Background(), 3, endpoints, func(_ context.Context, ep string) (string, error) {
		if ep == "/missing" {
			return "", errNotFound
		}
		time.Sleep(delays[ep])
		return "ok " + ep, nil
	})

	if len(results) != len(endpoints) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(endpoints))
	}
	if results[0].Value != "ok /slow" || results[0].Err != nil {
		t.Errorf("results[0] = %+v, want ok /slow", results[0])
	}
	if !errors.Is(results[1].Err, errNotFound) {
		t.Errorf("results[1].Err = %v, want %v", results[1].Err, errNotFound)
	}
	if results[2].Value != "ok /fast" || results[2].Err != nil {
		t.Errorf("results[2] = %+v, want ok /fast", results[2])
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	tests := []struct {
		name       string
		maxWorkers int
		wantPeak   int32
	}{
		{"three workers", 3, 3},
		{"zero treated as one", 0, 1},
		{"more workers than items", 100, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var active, peak atomic.Int32
			items := make([]int, 12)

			results := fanout.Run(context.Background(), tt.maxWorkers, items, func(context.Context, int) (int, error) {
				cur := active.Add(1)
				defer active.Add(-1)
				for {
					p := peak.Load()
					if cur <= p || peak.CompareAndSwap(p, cur) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				return 0, nil
			})

			if len(results) != len(items) {
				t.Fatalf("got %d results, want %d", len(results), len(items))
			}
			if p := peak.Load(); p > tt.wantPeak {
				t.Fatalf("peak concurrency %d exceeded %d", p, tt.wantPeak)
			}
		})
	}
}

func TestRun_CanceledWhileWaitingForSlot(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	results := fanout.Run(ctx, 1, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		if n == 1 {
			cancel()
			time.Sleep(20 * time.Millisecond)
		}
		return n, nil
	})

	if results[0].Err != nil || results[0].Value != 1 {
		t.Errorf("results[0] = %+v, want {1 <nil>}", results[0])
	}
	for i := 1; i < len(results); i++ {
		if !errors.Is(results[i].Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, results[i].Err)
		}
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("fn called %d times, want 1", c)
	}
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := fanout.Run(ctx, 2, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	if c := calls.Load(); c != 0 {
		t.Errorf("fn called %d times, want 0", c)
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}
