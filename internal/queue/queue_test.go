package queue

import (
	"sync"
	"testing"
)

// sampleItem stands in for a queued telemetry row
type sampleItem struct {
	Seq      uint
	Altitude float64
}

func seqs(items []sampleItem) []uint {
	out := make([]uint, len(items))
	for i, it := range items {
		out[i] = it.Seq
	}
	return out
}

func equalSeqs(a []uint, b ...uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueue_New(t *testing.T) {
	q := New[sampleItem]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_Push(t *testing.T) {
	q := New[sampleItem]()

	if dropped := q.Push(sampleItem{Seq: 1, Altitude: 100}); dropped != 0 {
		t.Errorf("unbounded queue dropped %d items", dropped)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}

	q.Push(sampleItem{Seq: 2}, sampleItem{Seq: 3})
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
}

func TestQueue_Pop(t *testing.T) {
	q := New[sampleItem]()

	// Pop from empty queue returns zero value
	result := q.Pop()
	if result.Seq != 0 || result.Altitude != 0 {
		t.Errorf("expected zero value, got %+v", result)
	}

	q.Push(sampleItem{Seq: 1, Altitude: 100}, sampleItem{Seq: 2, Altitude: 90})
	first := q.Pop()
	if first.Seq != 1 || first.Altitude != 100 {
		t.Errorf("expected {1, 100}, got %+v", first)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_PopN(t *testing.T) {
	q := New[sampleItem]()

	if got := q.PopN(5); got != nil {
		t.Errorf("expected nil from empty queue, got %v", got)
	}

	for i := uint(1); i <= 5; i++ {
		q.Push(sampleItem{Seq: i})
	}

	if got := seqs(q.PopN(2)); !equalSeqs(got, 1, 2) {
		t.Errorf("expected [1 2], got %v", got)
	}
	if got := q.PopN(0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
	if got := seqs(q.PopN(10)); !equalSeqs(got, 3, 4, 5) {
		t.Errorf("expected [3 4 5], got %v", got)
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
}

func TestQueue_Bounded(t *testing.T) {
	q := NewBounded[sampleItem](3)

	q.Push(sampleItem{Seq: 1}, sampleItem{Seq: 2})
	if dropped := q.Push(sampleItem{Seq: 3}, sampleItem{Seq: 4}, sampleItem{Seq: 5}); dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", dropped)
	}
	if q.Dropped() != 2 {
		t.Errorf("expected total dropped 2, got %d", q.Dropped())
	}
	if got := seqs(q.GetAndEmpty()); !equalSeqs(got, 3, 4, 5) {
		t.Errorf("expected newest items [3 4 5], got %v", got)
	}
}

func TestQueue_PushFront(t *testing.T) {
	q := New[sampleItem]()
	q.Push(sampleItem{Seq: 3})

	q.PushFront(sampleItem{Seq: 1}, sampleItem{Seq: 2})

	if got := seqs(q.GetAndEmpty()); !equalSeqs(got, 1, 2, 3) {
		t.Errorf("expected [1 2 3], got %v", got)
	}
}

func TestQueue_PushFrontBounded(t *testing.T) {
	q := NewBounded[sampleItem](2)
	q.Push(sampleItem{Seq: 3})

	if dropped := q.PushFront(sampleItem{Seq: 1}, sampleItem{Seq: 2}); dropped != 1 {
		t.Errorf("expected 1 dropped, got %d", dropped)
	}
	if got := seqs(q.GetAndEmpty()); !equalSeqs(got, 2, 3) {
		t.Errorf("expected [2 3], got %v", got)
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[sampleItem]()
	q.Push(sampleItem{Seq: 1}, sampleItem{Seq: 2}, sampleItem{Seq: 3})

	q.Clear()

	if !q.Empty() {
		t.Error("expected empty queue after clear")
	}
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[sampleItem]()
	q.Push(sampleItem{Seq: 1}, sampleItem{Seq: 2}, sampleItem{Seq: 3})

	result := q.GetAndEmpty()

	if got := seqs(result); !equalSeqs(got, 1, 2, 3) {
		t.Errorf("unexpected items: %v", got)
	}
	if !q.Empty() {
		t.Error("expected empty queue after GetAndEmpty")
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[sampleItem]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(seq uint) {
			defer wg.Done()
			q.Push(sampleItem{Seq: seq})
		}(uint(i))
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected 100 items, got %d", q.Len())
	}

	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.PopN(2)
		}()
	}
	wg.Wait()

	if q.Len() != 50 {
		t.Errorf("expected 50 items after pops, got %d", q.Len())
	}
}

func TestQueue_ConcurrentGetAndEmpty(t *testing.T) {
	q := New[sampleItem]()
	for i := 0; i < 100; i++ {
		q.Push(sampleItem{Seq: uint(i)})
	}

	var wg sync.WaitGroup
	results := make(chan []sampleItem, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.GetAndEmpty()
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for r := range results {
		total += len(r)
	}
	if total != 100 {
		t.Errorf("expected total 100 items, got %d", total)
	}
}
