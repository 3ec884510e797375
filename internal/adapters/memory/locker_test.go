package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestKeyedLockerSerializesSameKey(t *testing.T) {
	locker := NewKeyedLocker()
	var counter, max, active int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "sale-1")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer release()
			mu.Lock()
			active++
			if active > max {
				max = active
			}
			counter++
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if counter != 16 {
		t.Fatalf("counter %d, want 16", counter)
	}
	if max != 1 {
		t.Fatalf("%d holders observed inside the critical section", max)
	}
}

func TestKeyedLockerIndependentKeys(t *testing.T) {
	locker := NewKeyedLocker()
	releaseA, err := locker.Acquire(context.Background(), "sale-a")
	if err != nil {
		t.Fatalf("Acquire sale-a: %v", err)
	}
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(context.Background(), "sale-b")
		if err == nil {
			releaseB()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked behind held lock")
	}
}

func TestKeyedLockerHonorsContextCancel(t *testing.T) {
	locker := NewKeyedLocker()
	release, err := locker.Acquire(context.Background(), "sale-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Acquire(ctx, "sale-1"); err == nil {
		t.Fatal("expected context error while the lock is held")
	}
}
