package core

import (
	"fmt"
	"strings"
)

// ThreadPriority is the OS scheduling priority given to worker threads.
type ThreadPriority int

const (
	// ThreadPriorityNormal leaves the thread at the priority it was created with.
	ThreadPriorityNormal ThreadPriority = iota
	ThreadPriorityLow
	ThreadPriorityHigh
	// ThreadPriorityInteractive is the highest level, meant for latency
	// sensitive work.
	ThreadPriorityInteractive
)

func (p ThreadPriority) String() string {
	switch p {
	case ThreadPriorityNormal:
		return "normal"
	case ThreadPriorityLow:
		return "low"
	case ThreadPriorityHigh:
		return "high"
	case ThreadPriorityInteractive:
		return "interactive"
	}
	return fmt.Sprintf("ThreadPriority(%d)", int(p))
}

// ParseThreadPriority parses "normal", "low", "high" or "interactive".
// An empty string is normal.
func ParseThreadPriority(s string) (ThreadPriority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ThreadPriorityNormal, nil
	case "low":
		return ThreadPriorityLow, nil
	case "high":
		return ThreadPriorityHigh, nil
	case "interactive":
		return ThreadPriorityInteractive, nil
	}
	return ThreadPriorityNormal, fmt.Errorf("unknown thread priority %q", s)
}
