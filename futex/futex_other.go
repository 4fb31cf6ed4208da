//go:build !linux && !windows

package futex

import (
	"sync"
	"sync/atomic"
)

// waiter is a compare-and-block fallback: the value check and the sleep
// happen under the same mutex that notifiers take before signalling.
type waiter struct {
	once sync.Once
	mu   sync.Mutex
	cond *sync.Cond
}

func (f *Futex) init() {
	f.once.Do(func() {
		f.cond = sync.NewCond(&f.mu)
	})
}

// Wait blocks while the word equals expected.
func (f *Futex) Wait(expected uint32) {
	f.init()
	f.mu.Lock()
	if atomic.LoadUint32(&f.word) == expected {
		f.cond.Wait()
	}
	f.mu.Unlock()
}

// NotifyOne wakes at most one thread blocked in Wait.
func (f *Futex) NotifyOne() {
	f.init()
	f.mu.Lock()
	f.cond.Signal()
	f.mu.Unlock()
}

// NotifyAll wakes every thread blocked in Wait.
func (f *Futex) NotifyAll() {
	f.init()
	f.mu.Lock()
	f.cond.Broadcast()
	f.mu.Unlock()
}
