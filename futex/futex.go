// Package futex provides a wait-on-value / wake primitive over a single
// 32-bit word.
//
// Wait blocks the calling thread while the word still holds the expected
// value. NotifyOne and NotifyAll wake blocked waiters. Notifications are not
// queued: a notify that happens before anybody waits is lost, and Wait may
// also return spuriously. Callers must re-check their own state after every
// return from Wait.
//
// A common way to make wakeups reliable is to treat the word as a sequence
// number: read it with Load before checking for work, bump it with Add before
// notifying, and pass the value read earlier to Wait. A wake that lands in
// between then makes Wait return immediately.
//
// The implementation uses futex(2) on Linux, WaitOnAddress on Windows and a
// mutex/condition-variable compare-and-block everywhere else. The observable
// contract is identical on every platform.
package futex

import "sync/atomic"

// Futex is a wait/notify primitive over one uint32 word.
// The zero value is ready to use. A Futex must not be copied after first use
// since waiters block on the address of its word.
type Futex struct {
	word uint32
	waiter
}

// Load atomically reads the word.
func (f *Futex) Load() uint32 {
	return atomic.LoadUint32(&f.word)
}

// Store atomically replaces the word. It does not wake anybody.
func (f *Futex) Store(v uint32) {
	atomic.StoreUint32(&f.word, v)
}

// Add atomically adds delta to the word and returns the new value.
// It does not wake anybody.
func (f *Futex) Add(delta uint32) uint32 {
	return atomic.AddUint32(&f.word, delta)
}
