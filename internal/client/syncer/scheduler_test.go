package syncer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_ReschedulingReplacesPendingCallback(t *testing.T) {
	s := NewScheduler()
	var fired atomic.Int32

	for i := 0; i < 5; i++ {
		s.Schedule("k", 20*time.Millisecond, func() { fired.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "only the last schedule fires")
}

func TestScheduler_CancelStopsPendingCallback(t *testing.T) {
	s := NewScheduler()
	var fired atomic.Int32

	s.Schedule("k", 10*time.Millisecond, func() { fired.Add(1) })
	s.Cancel("k")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.False(t, s.Pending("k"))
}

func TestScheduler_KeysAreIndependent(t *testing.T) {
	s := NewScheduler()
	var a, b atomic.Int32

	s.Schedule("a", 10*time.Millisecond, func() { a.Add(1) })
	s.Schedule("b", 10*time.Millisecond, func() { b.Add(1) })
	s.Cancel("a")

	require.Eventually(t, func() bool { return b.Load() == 1 }, time.Second, time.Millisecond)
	assert.Zero(t, a.Load())
}

func TestScheduler_CancelAll(t *testing.T) {
	s := NewScheduler()
	var fired atomic.Int32

	s.Schedule("a", 10*time.Millisecond, func() { fired.Add(1) })
	s.Schedule("b", 10*time.Millisecond, func() { fired.Add(1) })
	s.CancelAll()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
}
