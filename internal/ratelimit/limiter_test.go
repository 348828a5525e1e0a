package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_AllowsUnderBudget(t *testing.T) {
	l := NewMemoryLimiter()
	for i := 0; i < 10; i++ {
		result, err := l.Check(context.Background(), "chat:10.0.0.1", 10, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if result.Remaining != int64(10-i-1) {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 10-i-1, result.Remaining)
		}
	}
}

func TestMemoryLimiter_DeniesOverBudget(t *testing.T) {
	l := NewMemoryLimiter()
	for i := 0; i < 10; i++ {
		l.Check(context.Background(), "transcribe:10.0.0.1", 10, time.Minute)
	}

	result, err := l.Check(context.Background(), "transcribe:10.0.0.1", 10, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Allowed {
		t.Fatal("11th request within the window should be denied")
	}
	if result.Remaining != 0 {
		t.Errorf("expected remaining 0, got %d", result.Remaining)
	}
	if result.RetryAfter <= 0 {
		t.Error("expected positive RetryAfter on denial")
	}
}

func TestMemoryLimiter_DenialDoesNotConsume(t *testing.T) {
	l := NewMemoryLimiter()
	base := time.Now()
	now := base
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		l.Check(context.Background(), "k", 2, time.Minute)
	}

	// Window expires: full budget available again.
	now = base.Add(time.Minute)
	result, _ := l.Check(context.Background(), "k", 2, time.Minute)
	if !result.Allowed || result.Remaining != 1 {
		t.Errorf("expected fresh window with remaining 1, got %+v", result)
	}
}

func TestMemoryLimiter_WindowReset(t *testing.T) {
	l := NewMemoryLimiter()
	base := time.Now()
	now := base
	l.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		l.Check(context.Background(), "chat:c1", 10, time.Minute)
	}
	if result, _ := l.Check(context.Background(), "chat:c1", 10, time.Minute); result.Allowed {
		t.Fatal("expected denial at budget")
	}

	now = base.Add(61 * time.Second)
	if result, _ := l.Check(context.Background(), "chat:c1", 10, time.Minute); !result.Allowed {
		t.Fatal("expected allowance after window reset")
	}
}

func TestMemoryLimiter_KeysIndependent(t *testing.T) {
	l := NewMemoryLimiter()
	for i := 0; i < 10; i++ {
		l.Check(context.Background(), "chat:10.0.0.1", 10, time.Minute)
	}

	result, _ := l.Check(context.Background(), "chat:10.0.0.2", 10, time.Minute)
	if !result.Allowed {
		t.Error("another client's budget must not be affected")
	}
	result, _ = l.Check(context.Background(), "health:10.0.0.1", 60, time.Minute)
	if !result.Allowed {
		t.Error("another class's budget must not be affected")
	}
}

func TestMemoryLimiter_ResetAt(t *testing.T) {
	l := NewMemoryLimiter()
	base := time.Now()
	l.now = func() time.Time { return base }

	result, _ := l.Check(context.Background(), "k", 5, time.Minute)
	if !result.ResetAt.Equal(base.Add(time.Minute)) {
		t.Errorf("expected reset at window end, got %s", result.ResetAt)
	}
}
