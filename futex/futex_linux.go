//go:build linux

package futex

import (
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// futex(2) operations; the private flag skips the cross-process hash lookup.
const (
	futexWait        = 0
	futexWake        = 1
	futexPrivateFlag = 128

	futexWaitPrivate = futexWait | futexPrivateFlag
	futexWakePrivate = futexWake | futexPrivateFlag
)

type waiter struct{}

// Wait blocks while the word equals expected.
// EAGAIN (value already changed) and EINTR are both treated as a normal return.
func (f *Futex) Wait(expected uint32) {
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&f.word)),
		futexWaitPrivate,
		uintptr(expected),
		0, 0, 0)
}

// NotifyOne wakes at most one thread blocked in Wait.
func (f *Futex) NotifyOne() {
	f.wake(1)
}

// NotifyAll wakes every thread blocked in Wait.
func (f *Futex) NotifyAll() {
	f.wake(math.MaxInt32)
}

func (f *Futex) wake(n int) {
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&f.word)),
		futexWakePrivate,
		uintptr(n),
		0, 0, 0)
}
