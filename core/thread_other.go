//go:build !linux && !windows

package core

// currentThreadID reports 0: there is no portable thread id here, so the
// worker-thread check in Stop is skipped.
func currentThreadID() int {
	return 0
}

func pinCurrentThread(n int) (int, error) {
	return -1, errAffinityUnsupported
}

func setCurrentThreadPriority(p ThreadPriority) error {
	if p == ThreadPriorityNormal {
		return nil
	}
	return errThreadPriorityUnsupported
}
