package sem

import (
	"context"
	"testing"
	"time"
)

func TestDownBlocksUntilUp(t *testing.T) {
	s := New("test", 0)

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.Down(ctx); err != nil {
			t.Errorf("Down: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Down returned before a matching Up")
	case <-time.After(20 * time.Millisecond):
	}

	s.Up()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Down did not unblock after Up")
	}
}

func TestInitialCountIsImmediatelyAcquirable(t *testing.T) {
	s := New("test", 2)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Down(ctx); err != nil {
		t.Fatalf("first Down: %v", err)
	}
	if err := s.Down(ctx); err != nil {
		t.Fatalf("second Down: %v", err)
	}

	short, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	if err := s.Down(short); err == nil {
		t.Fatalf("third Down succeeded with no matching Up; initial count should have been exhausted")
	}
}

func TestUpCountIsCumulative(t *testing.T) {
	s := New("test", 0)
	s.Up()
	s.Up()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Down(ctx); err != nil {
		t.Fatalf("first Down: %v", err)
	}
	if err := s.Down(ctx); err != nil {
		t.Fatalf("second Down: %v", err)
	}
}
