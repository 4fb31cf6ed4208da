//go:build linux

package core

import (
	"errors"

	"golang.org/x/sys/unix"
)

// cpuSetBits is the kernel's CPU_SETSIZE, the bit capacity of unix.CPUSet.
const cpuSetBits = 1024

func currentThreadID() int {
	return unix.Gettid()
}

// pinCurrentThread binds the calling OS thread to the n-th CPU (modulo the
// count) of the process affinity mask and returns that CPU. The caller must
// have locked its goroutine to the thread.
func pinCurrentThread(n int) (int, error) {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return -1, err
	}

	cpu := nthAllowedCPU(&allowed, n)
	if cpu < 0 {
		return -1, errors.New("affinity mask is empty")
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return cpu, err
	}
	return cpu, nil
}

func nthAllowedCPU(set *unix.CPUSet, n int) int {
	count := set.Count()
	if count == 0 {
		return -1
	}
	n %= count
	for cpu := range cpuSetBits {
		if !set.IsSet(cpu) {
			continue
		}
		if n == 0 {
			return cpu
		}
		n--
	}
	return -1
}

// niceValue maps p to a nice level. Raising above 0 needs CAP_SYS_NICE or a
// matching RLIMIT_NICE.
func niceValue(p ThreadPriority) (int, bool) {
	switch p {
	case ThreadPriorityLow:
		return 5, true
	case ThreadPriorityHigh:
		return -5, true
	case ThreadPriorityInteractive:
		return -10, true
	}
	return 0, false
}

// setCurrentThreadPriority sets the nice level of the calling thread only.
// Threads the runtime spawns later are cloned from its template thread, not
// from a locked worker, so the level does not leak.
func setCurrentThreadPriority(p ThreadPriority) error {
	nice, ok := niceValue(p)
	if !ok {
		return nil
	}
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice)
}
