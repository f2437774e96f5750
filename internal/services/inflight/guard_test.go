package inflight

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGuard(t *testing.T) {
	t.Run("second acquire fails until release", func(t *testing.T) {
		g := NewGuard(true)

		release, ok := g.TryAcquire("c1")
		if !ok {
			t.Fatal("First acquire should succeed")
		}
		if _, ok := g.TryAcquire("c1"); ok {
			t.Error("Second acquire should fail while held")
		}
		if _, ok := g.TryAcquire("c2"); !ok {
			t.Error("Other channels should not be blocked")
		}

		release()
		release()
		if g.Active("c1") {
			t.Error("Key still active after release")
		}
		if _, ok := g.TryAcquire("c1"); !ok {
			t.Error("Acquire after release should succeed")
		}
	})

	t.Run("disabled guard admits everyone", func(t *testing.T) {
		g := NewGuard(false)

		for i := 0; i < 3; i++ {
			release, ok := g.TryAcquire("c1")
			if !ok {
				t.Fatal("Disabled guard refused an acquire")
			}
			defer release()
		}
		if g.Count() != 0 {
			t.Errorf("Disabled guard should track nothing, got %d", g.Count())
		}
	})

	t.Run("concurrent acquires admit exactly one", func(t *testing.T) {
		g := NewGuard(true)
		var wins int32
		var wg sync.WaitGroup
		start := make(chan struct{})

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, ok := g.TryAcquire("c1"); ok {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if wins != 1 {
			t.Errorf("Expected exactly one winner, got %d", wins)
		}
	})
}
