package health_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/jsamuelsen11/maingo/internal/platform/health"
)

type fakeChecker struct {
	name string
	err  error
	seen func(ctx context.Context)
}

func (f fakeChecker) Name() string { return f.name }

func (f fakeChecker) HealthCheck(ctx context.Context) error {
	if f.seen != nil {
		f.seen(ctx)
	}
	return f.err
}

func TestCheckAll_Empty(t *testing.T) {
	t.Parallel()

	r := health.New()
	results := r.CheckAll(context.Background())

	if results == nil {
		t.Fatal("expected non-nil map, got nil")
	}
	if len(results) != 0 {
		t.Errorf("expected empty map, got %d entries", len(results))
	}
	if !health.Healthy(results) {
		t.Error("empty results should be healthy")
	}
}

func TestCheckAll_MixedHealth(t *testing.T) {
	t.Parallel()

	r := health.New()
	r.Register(fakeChecker{name: "api.example.com"})
	r.Register(fakeChecker{name: "auth.example.com", err: errors.New("circuit breaker is open")})

	results := r.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["api.example.com"] != nil {
		t.Errorf("api check = %v, want nil", results["api.example.com"])
	}
	if results["auth.example.com"] == nil {
		t.Error("auth check = nil, want error")
	}
	if health.Healthy(results) {
		t.Error("mixed results reported healthy")
	}
	if got, want := health.Names(results), []string{"api.example.com", "auth.example.com"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestCheckAll_ContextPropagated(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawCanceled bool
	r := health.New()
	r.Register(fakeChecker{
		name: "api",
		err:  context.Canceled,
		seen: func(ctx context.Context) { sawCanceled = ctx.Err() != nil },
	})

	results := r.CheckAll(ctx)

	if !sawCanceled {
		t.Error("checker did not receive the canceled context")
	}
	if !errors.Is(results["api"], context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results["api"])
	}
}

func TestCheckAll_DuplicateNames_LastWriteWins(t *testing.T) {
	t.Parallel()

	secondErr := errors.New("second failure")
	r := health.New()
	r.Register(fakeChecker{name: "api"})
	r.Register(fakeChecker{name: "api", err: secondErr})

	results := r.CheckAll(context.Background())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !errors.Is(results["api"], secondErr) {
		t.Errorf("api check = %v, want %v (from last registered checker)", results["api"], secondErr)
	}
}

func TestCheckAll_ConcurrentSafety(t *testing.T) {
	t.Parallel()

	r := health.New()

	var wg sync.WaitGroup
	const goroutines = 50

	// Half the goroutines register checkers, half call CheckAll.
	for i := range goroutines {
		wg.Add(1)
		if i%2 == 0 {
			go func() {
				defer wg.Done()
				r.Register(fakeChecker{name: "checker"})
			}()
		} else {
			go func() {
				defer wg.Done()
				r.CheckAll(context.Background())
			}()
		}
	}

	wg.Wait()
}
