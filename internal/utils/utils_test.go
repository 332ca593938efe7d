package utils

import (
	"context"
	"testing"
	"time"
)

func TestWaitForZeroDurationReturnsImmediately(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("WaitFor failed: %v", err)
	}
}

func TestWaitForHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitFor(ctx, time.Minute)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForElapses(t *testing.T) {
	start := time.Now()
	if err := WaitFor(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("WaitFor failed: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("WaitFor returned too early")
	}
}
