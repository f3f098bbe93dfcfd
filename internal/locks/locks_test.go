package locks

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("+15551234567")
			counter++
			km.Unlock("+15551234567")
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("a")
	// A different key must not block while "a" is held.
	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()
	<-done
	km.Unlock("a")
}

// Entries are dropped once released, so the map does not retain every
// key ever locked.
func TestKeyedMutexCleansUp(t *testing.T) {
	km := NewKeyedMutex()

	for _, key := range []string{"+15551111111", "+15552222222", "+15553333333"} {
		km.Lock(key)
		km.Unlock(key)
	}

	km.mu.Lock()
	remaining := len(km.locks)
	km.mu.Unlock()
	if remaining != 0 {
		t.Errorf("lock map holds %d entries after release, want 0", remaining)
	}
}
