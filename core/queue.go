package core

import (
	"container/heap"
	"sync"
)

const defaultQueueCap = 16

// =============================================================================
// JobQueue: Max-heap of jobs owned by one worker
// =============================================================================

// jobHeap implements heap.Interface ordered by priority only.
// There is deliberately no sequence tie-break: equal priorities come out in
// whatever order the heap produces.
type jobHeap []Job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool { return h[i].Priority > h[j].Priority }

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(Job))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = Job{} // Release the action for GC
	*h = old[0 : n-1]
	return item
}

// JobQueue is a mutex-guarded priority queue. Its mutex is the only lock
// a worker and its thieves ever contend on, and it is never held while a
// job runs.
type JobQueue struct {
	mu sync.Mutex
	pq jobHeap
}

// NewJobQueue creates an empty JobQueue.
func NewJobQueue() *JobQueue {
	return &JobQueue{
		pq: make(jobHeap, 0, defaultQueueCap),
	}
}

// Push adds a job.
func (q *JobQueue) Push(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.pq, job)
}

// Pop removes and returns the highest-priority job.
func (q *JobQueue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pq) == 0 {
		return Job{}, false
	}
	return heap.Pop(&q.pq).(Job), true
}

// PeekPriority returns the priority of the job Pop would return next.
func (q *JobQueue) PeekPriority() (Priority, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pq) == 0 {
		return 0, false
	}
	return q.pq[0].Priority, true
}

func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pq)
}

func (q *JobQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear drops every queued job and returns how many were dropped.
func (q *JobQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pq)
	// Create a new heap to release all job references
	q.pq = make(jobHeap, 0, defaultQueueCap)
	return n
}
