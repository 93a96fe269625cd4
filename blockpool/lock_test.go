package blockpool

import (
	"sync"
	"testing"
)

func TestLockBeforeInitIsNoop(t *testing.T) {
	var l Lock
	// Before Init the caller is single-threaded; Acquire/Release must
	// be inert rather than guard anything.
	l.Acquire()
	l.Acquire()
	l.Release()
	l.Release()
}

func TestLockGuards(t *testing.T) {
	var l Lock
	l.Init(false)
	defer l.Destroy()

	n := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				l.Acquire()
				n++
				l.Release()
			}
		}()
	}
	wg.Wait()
	if n != 80000 {
		t.Fatalf("lost updates under the lock: %v", n)
	}
}

func TestLockSingleThreadedIsInert(t *testing.T) {
	var l Lock
	l.Init(true)
	l.Acquire()
	l.Acquire() // would deadlock if the mutex were armed
	l.Release()
	l.Release()
	l.Destroy()
}

func TestLockDestroyDisarms(t *testing.T) {
	var l Lock
	l.Init(false)
	l.Destroy()
	l.Acquire()
	l.Acquire()
	l.Release()
	l.Release()
}
