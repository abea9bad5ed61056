package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fakeSleep(slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestPolicy_Do_SucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	p := Default()
	p.Sleep = fakeSleep(&slept)

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(slept) != 0 {
		t.Errorf("expected no sleeps, got %v", slept)
	}
}

func TestPolicy_Do_ExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	p := Default()
	p.Sleep = fakeSleep(&slept)

	boom := errors.New("boom")
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
	// Two sleeps between three attempts, both on the error backoff.
	if len(slept) != 2 || slept[0] != 3*time.Second || slept[1] != 3*time.Second {
		t.Errorf("unexpected backoff schedule: %v", slept)
	}
}

func TestPolicy_Do_EmptyReplyUsesShorterBackoff(t *testing.T) {
	var slept []time.Duration
	p := Default()
	p.Sleep = fakeSleep(&slept)

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return ErrEmptyReply
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slept) != 2 || slept[0] != 2*time.Second || slept[1] != 2*time.Second {
		t.Errorf("expected two 2s backoffs for empty replies, got %v", slept)
	}
}

func TestPolicy_Do_RecoversMidSchedule(t *testing.T) {
	var slept []time.Duration
	p := Default()
	p.Sleep = fakeSleep(&slept)

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestPolicy_Do_ContextCancelStopsSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Default()
	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancellation stop, got %d", calls)
	}
}

func TestPolicy_Do_OnRetryReportsAttempts(t *testing.T) {
	var slept []time.Duration
	var attempts []int
	p := Default()
	p.Sleep = fakeSleep(&slept)
	p.OnRetry = func(attempt int, _ error) {
		attempts = append(attempts, attempt)
	}

	_ = p.Do(context.Background(), func() error {
		return errors.New("boom")
	})
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("unexpected retry attempts: %v", attempts)
	}
}
