package resilience

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.now
	return cb, clock
}

var errBoom = errors.New("boom")

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("pyannote"))
	if cb.State() != StateClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
	if cb.Name() != "pyannote" {
		t.Errorf("Name() = %q", cb.Name())
	}
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{Name: "whisper", MaxFailures: 3, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("attempt %d: expected errBoom, got %v", i, err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	err := cb.Execute(func() error {
		t.Error("fn must not run while open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 2})

	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errBoom })

	if cb.State() != StateClosed {
		t.Errorf("non-consecutive failures opened the circuit")
	}
	if cb.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", cb.Failures())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name      string
		probeErr  error
		wantState State
	}{
		{"successful probe closes", nil, StateClosed},
		{"failed probe reopens", errBoom, StateOpen},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, OpenTimeout: 10 * time.Second})
			_ = cb.Execute(func() error { return errBoom })

			clock.advance(10 * time.Second)
			if cb.State() != StateHalfOpen {
				t.Fatalf("expected half-open, got %s", cb.State())
			}

			_ = cb.Execute(func() error { return tc.probeErr })
			if cb.State() != tc.wantState {
				t.Errorf("state = %s, want %s", cb.State(), tc.wantState)
			}
		})
	}
}

func TestCircuitBreaker_ShouldTripFiltersErrors(t *testing.T) {
	ignored := errors.New("caller mistake")
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		ShouldTrip:  func(err error) bool { return !errors.Is(err, ignored) },
	})

	_ = cb.Execute(func() error { return ignored })
	if cb.State() != StateClosed {
		t.Errorf("ignored error tripped the breaker")
	}
}

func TestCircuitBreaker_ReportsTransitions(t *testing.T) {
	var got []string
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		Name:        "qdrant",
		MaxFailures: 1,
		OnStateChange: func(name string, from, to State) {
			got = append(got, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(func() error { return errBoom })
	cb.Reset()

	want := []string{"qdrant:closed->open", "qdrant:open->closed"}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d = %q, want %q", i, got[i], want[i])
		}
	}
}
