//go:build windows

package core

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask = modkernel32.NewProc("SetThreadAffinityMask")
	procSetThreadPriority     = modkernel32.NewProc("SetThreadPriority")
)

// Relative priorities from winbase.h.
const (
	threadPriorityBelowNormal = -1
	threadPriorityAboveNormal = 1
	threadPriorityHighest     = 2
)

func currentThreadID() int {
	return int(windows.GetCurrentThreadId())
}

// pinCurrentThread binds the calling OS thread to CPU n modulo the CPU count.
// Only the first processor group is addressable.
func pinCurrentThread(n int) (int, error) {
	cpu := n % runtime.NumCPU()
	if cpu >= int(unsafe.Sizeof(uintptr(0)))*8 {
		return cpu, errAffinityUnsupported
	}
	r1, _, err := procSetThreadAffinityMask.Call(uintptr(windows.CurrentThread()), uintptr(1)<<cpu)
	if r1 == 0 {
		return cpu, err
	}
	return cpu, nil
}

func setCurrentThreadPriority(p ThreadPriority) error {
	var level int32
	switch p {
	case ThreadPriorityLow:
		level = threadPriorityBelowNormal
	case ThreadPriorityHigh:
		level = threadPriorityAboveNormal
	case ThreadPriorityInteractive:
		level = threadPriorityHighest
	default:
		return nil
	}
	r1, _, err := procSetThreadPriority.Call(uintptr(windows.CurrentThread()), uintptr(level))
	if r1 == 0 {
		return err
	}
	return nil
}
