package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context) error { return nil }

func TestTaskQueueEmpty(t *testing.T) {
	q := newTaskQueue()

	assert.Equal(t, 0, q.remaining())
	assert.Nil(t, q.next())
}

func TestTaskQueuePriorityOrder(t *testing.T) {
	q := newTaskQueue()

	// Insertion order deliberately scrambled relative to priority.
	q.add(3, noop)
	q.add(1, noop)
	q.add(4, noop)
	q.add(1, noop)
	q.add(0, noop)
	q.add(3, noop)

	require.Equal(t, 6, q.remaining())

	var got []int
	for e := q.next(); e != nil; e = q.next() {
		got = append(got, e.priority)
	}

	// Lowest priority first, each bucket fully drained, unsorted last.
	assert.Equal(t, []int{1, 1, 3, 3, 4, 0}, got)
	assert.Equal(t, 0, q.remaining())
}

func TestTaskQueueBucketInsertionOrder(t *testing.T) {
	q := newTaskQueue()

	q.add(2, noop)
	q.add(2, noop)
	q.add(2, noop)

	var seqs []int
	for e := q.next(); e != nil; e = q.next() {
		seqs = append(seqs, e.seq)
	}
	assert.Equal(t, []int{0, 1, 2}, seqs)
}

func TestTaskQueueUnsortedInsertionOrder(t *testing.T) {
	q := newTaskQueue()

	q.add(0, noop)
	q.add(5, noop)
	q.add(0, noop)

	first := q.next()
	require.NotNil(t, first)
	assert.Equal(t, 5, first.priority)

	second := q.next()
	require.NotNil(t, second)
	assert.Equal(t, 0, second.priority)
	assert.Equal(t, 0, second.seq)

	third := q.next()
	require.NotNil(t, third)
	assert.Equal(t, 2, third.seq)

	assert.Nil(t, q.next())
}

func TestTaskQueueRemaining(t *testing.T) {
	q := newTaskQueue()

	q.add(1, noop)
	q.add(7, noop)
	q.add(0, noop)
	assert.Equal(t, 3, q.remaining())

	q.next()
	assert.Equal(t, 2, q.remaining())
}
