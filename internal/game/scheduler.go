package game

import (
	"container/heap"
	"time"
)

// scheduler is a priority queue of deferred tasks (crafting completions,
// monster respawns) drained by the tick while the world lock is held.
// Keeping all deferral here, instead of on runtime timers, preserves the
// single-mutator rule: a task body never runs concurrently with a command.
type scheduler struct {
	tasks taskHeap
	seq   int64
}

type task struct {
	at  time.Time
	seq int64 // breaks ties in scheduling order
	fn  func()
}

func newScheduler() *scheduler {
	return &scheduler{}
}

// Schedule queues fn to run at the first tick at or after t.
func (s *scheduler) Schedule(t time.Time, fn func()) {
	s.seq++
	heap.Push(&s.tasks, task{at: t, seq: s.seq, fn: fn})
}

// ScheduleAfter queues fn to run after the given delay from now.
func (s *scheduler) ScheduleAfter(now time.Time, d time.Duration, fn func()) {
	s.Schedule(now.Add(d), fn)
}

// PopDue removes and returns every task due at the given time, in
// scheduling order.
func (s *scheduler) PopDue(now time.Time) []func() {
	var due []func()
	for s.tasks.Len() > 0 && !s.tasks[0].at.After(now) {
		t := heap.Pop(&s.tasks).(task)
		due = append(due, t.fn)
	}
	return due
}

// Len returns the number of pending tasks.
func (s *scheduler) Len() int {
	return s.tasks.Len()
}

type taskHeap []task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}
