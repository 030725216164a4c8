package session

import (
	"sync"
	"testing"
	"time"
)

func TestRegistryReplaceDiscardsOldSession(t *testing.T) {
	reg := NewRegistry()

	first, _ := New(42, "history", "uz", makeQuestions(3))
	slot := reg.Acquire(42)
	slot.Set(first)
	slot.Release()

	second, _ := New(42, "biology", "uz", makeQuestions(3))
	slot = reg.Acquire(42)
	slot.Set(second)
	slot.Release()

	slot = reg.Acquire(42)
	got := slot.Session()
	slot.Release()

	if got != second {
		t.Error("Expected the new session to replace the old one")
	}
	if first.State != StateAbandoned {
		t.Errorf("Replaced session should be abandoned, got state %v", first.State)
	}
}

func TestRegistryClear(t *testing.T) {
	reg := NewRegistry()

	sess, _ := New(7, "law", "en", makeQuestions(2))
	slot := reg.Acquire(7)
	slot.Set(sess)
	slot.Release()

	slot = reg.Acquire(7)
	slot.Clear()
	slot.Release()

	slot = reg.Acquire(7)
	got := slot.Session()
	slot.Release()
	if got != nil {
		t.Error("Expected empty slot after Clear")
	}
}

func TestRegistrySlotsAreIndependent(t *testing.T) {
	reg := NewRegistry()

	a, _ := New(1, "history", "uz", makeQuestions(2))
	b, _ := New(2, "history", "uz", makeQuestions(2))

	slotA := reg.Acquire(1)
	slotA.Set(a)

	// Holding user 1's lock must not block user 2.
	slotB := reg.Acquire(2)
	slotB.Set(b)
	slotB.Release()
	slotA.Release()

	if reg.ActiveTests() != 2 {
		t.Errorf("Expected 2 active tests, got %d", reg.ActiveTests())
	}
}

func TestRegistryDoubleTapSubmitsOnce(t *testing.T) {
	reg := NewRegistry()

	sess, _ := New(9, "mathematics", "uz", makeQuestions(5))
	slot := reg.Acquire(9)
	slot.Set(sess)
	slot.Release()

	// Two near-simultaneous presses of the same answer button: exactly
	// one submit may land, the other must see a stale index.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sl := reg.Acquire(9)
			defer sl.Release()
			errs[i] = sl.Session().Submit("A", 0)
		}(i)
	}
	wg.Wait()

	ok, stale := 0, 0
	for _, err := range errs {
		switch err {
		case nil:
			ok++
		case ErrIndexMismatch:
			stale++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if ok != 1 || stale != 1 {
		t.Errorf("Expected exactly one accepted and one rejected submit, got %d/%d", ok, stale)
	}
	if sess.Position != 1 {
		t.Errorf("Expected position 1, got %d", sess.Position)
	}
}

func TestActiveTestsDoesNotBlockOtherUsers(t *testing.T) {
	reg := NewRegistry()

	a, _ := New(1, "history", "uz", makeQuestions(2))
	slotA := reg.Acquire(1)
	slotA.Set(a)

	b, _ := New(2, "history", "uz", makeQuestions(2))

	// User 1's slot stays held, as during a slow finish. A concurrent
	// count must not make an unrelated user's Acquire wait on it.
	counted := make(chan int)
	go func() { counted <- reg.ActiveTests() }()

	acquired := make(chan struct{})
	go func() {
		slotB := reg.Acquire(2)
		slotB.Set(b)
		slotB.Release()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire for user 2 stalled behind user 1's held slot")
	}

	slotA.Release()
	if n := <-counted; n < 1 {
		t.Errorf("Expected at least 1 active test, got %d", n)
	}
}

func TestActiveTestsCountsOnlyInProgress(t *testing.T) {
	reg := NewRegistry()

	running, _ := New(1, "history", "uz", makeQuestions(2))
	slot := reg.Acquire(1)
	slot.Set(running)
	slot.Release()

	done, _ := New(2, "biology", "uz", makeQuestions(2))
	slot = reg.Acquire(2)
	slot.Set(done)
	done.Submit("A", 0)
	done.Submit("B", 1)
	done.Finish(time.Now())
	slot.Release()

	if n := reg.ActiveTests(); n != 1 {
		t.Errorf("Expected 1 active test, got %d", n)
	}
}
