package lifecycle

import (
	"fmt"
	"sort"
	"sync"
)

// entry is a registered task together with its registration metadata. The
// queue owns an entry until next pops it; from then on the phase runner
// owns it for the duration of its execution.
type entry struct {
	name     string
	fn       Func
	priority int
	seq      int
}

// taskQueue holds the tasks registered for a single phase: a bucket per
// priority plus an unsorted batch. Buckets drain lowest priority first,
// each in insertion order; the unsorted batch drains last.
//
// The queue carries its own lock: a registration may race the phase
// runner draining the same phase, which pops with no controller lock
// held.
type taskQueue struct {
	mu         sync.Mutex
	buckets    map[int][]*entry
	priorities []int // sorted keys of buckets
	unsorted   []*entry
	seq        int
}

func newTaskQueue() *taskQueue {
	return &taskQueue{buckets: make(map[int][]*entry)}
}

// add appends a task. Priority 0 means "unsorted, runs after all
// prioritized tasks of this phase".
func (q *taskQueue) add(priority int, fn Func) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e := &entry{
		name:     fmt.Sprintf("task-%d", q.seq+1),
		fn:       fn,
		priority: priority,
		seq:      q.seq,
	}
	q.seq++

	if priority == 0 {
		q.unsorted = append(q.unsorted, e)
		return
	}
	if _, ok := q.buckets[priority]; !ok {
		i := sort.SearchInts(q.priorities, priority)
		q.priorities = append(q.priorities, 0)
		copy(q.priorities[i+1:], q.priorities[i:])
		q.priorities[i] = priority
	}
	q.buckets[priority] = append(q.buckets[priority], e)
}

// next pops the head of the lowest non-empty priority bucket, falling back
// to the unsorted batch. It returns nil when the queue is empty.
func (q *taskQueue) next() *entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.priorities) > 0 {
		p := q.priorities[0]
		bucket := q.buckets[p]
		if len(bucket) == 0 {
			delete(q.buckets, p)
			q.priorities = q.priorities[1:]
			continue
		}
		e := bucket[0]
		q.buckets[p] = bucket[1:]
		return e
	}
	if len(q.unsorted) > 0 {
		e := q.unsorted[0]
		q.unsorted = q.unsorted[1:]
		return e
	}
	return nil
}

// remaining reports the total task count across all buckets plus the
// unsorted batch.
func (q *taskQueue) remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.unsorted)
	for _, bucket := range q.buckets {
		n += len(bucket)
	}
	return n
}
