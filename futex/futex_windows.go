//go:build windows

package futex

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// WaitOnAddress and friends live in the synchronization API set (Windows 8+).
var (
	modsynch                = windows.NewLazySystemDLL("api-ms-win-core-synch-l1-2-0.dll")
	procWaitOnAddress       = modsynch.NewProc("WaitOnAddress")
	procWakeByAddressSingle = modsynch.NewProc("WakeByAddressSingle")
	procWakeByAddressAll    = modsynch.NewProc("WakeByAddressAll")
)

type waiter struct{}

// Wait blocks while the word equals expected.
func (f *Futex) Wait(expected uint32) {
	_, _, _ = procWaitOnAddress.Call(
		uintptr(unsafe.Pointer(&f.word)),
		uintptr(unsafe.Pointer(&expected)),
		unsafe.Sizeof(expected),
		uintptr(windows.INFINITE))
}

// NotifyOne wakes at most one thread blocked in Wait.
func (f *Futex) NotifyOne() {
	_, _, _ = procWakeByAddressSingle.Call(uintptr(unsafe.Pointer(&f.word)))
}

// NotifyAll wakes every thread blocked in Wait.
func (f *Futex) NotifyAll() {
	_, _, _ = procWakeByAddressAll.Call(uintptr(unsafe.Pointer(&f.word)))
}
