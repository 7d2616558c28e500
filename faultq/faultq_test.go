package faultq

import (
	"context"
	"testing"
	"time"

	"pager/defs"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New(4)
	q.Enqueue(Fault_t{Pid: 1, Cause: defs.CausePagefault})
	q.Enqueue(Fault_t{Pid: 2, Cause: defs.CausePagefault})

	f1 := q.Dequeue()
	if f1.Pid != 1 {
		t.Fatalf("first Dequeue pid = %d, want 1", f1.Pid)
	}
	f2 := q.Dequeue()
	if f2.Pid != 2 {
		t.Fatalf("second Dequeue pid = %d, want 2", f2.Pid)
	}
}

func TestEnqueuePostsFaultSemaphore(t *testing.T) {
	q := New(4)
	q.Enqueue(Fault_t{Pid: 9})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Sem.Down(ctx); err != nil {
		t.Fatalf("fault semaphore was not posted by Enqueue: %v", err)
	}
}

func TestQueueWrapsAroundCircularly(t *testing.T) {
	q := New(2)
	q.Enqueue(Fault_t{Pid: 1})
	q.Dequeue()
	q.Enqueue(Fault_t{Pid: 2})
	q.Enqueue(Fault_t{Pid: 3})

	if got := q.Dequeue().Pid; got != 2 {
		t.Fatalf("Dequeue = %d, want 2", got)
	}
	if got := q.Dequeue().Pid; got != 3 {
		t.Fatalf("Dequeue = %d, want 3", got)
	}
}

func TestEnqueueOnFullQueuePanics(t *testing.T) {
	q := New(1)
	q.Enqueue(Fault_t{Pid: 1})

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("Enqueue on a full queue did not panic")
		}
	}()
	q.Enqueue(Fault_t{Pid: 2})
}

func TestDequeueOnEmptyQueuePanics(t *testing.T) {
	q := New(1)
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("Dequeue on an empty queue did not panic")
		}
	}()
	q.Dequeue()
}
