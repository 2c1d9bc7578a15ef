package convstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vendebot/internal/domain"
)

func TestAcquireCreatesOnce(t *testing.T) {
	s := New(2 * time.Hour)

	conv, release, created := s.Acquire("p1", "b1")
	require.True(t, created)
	require.Equal(t, domain.StageStart, conv.Stage)
	conv.Stage = domain.StageQuoting
	release()

	again, release, created := s.Acquire("p1", "b1")
	require.False(t, created)
	require.Equal(t, domain.StageQuoting, again.Stage)
	release()

	require.Equal(t, 1, s.Len())
}

func TestAcquireSerializesPerKey(t *testing.T) {
	s := New(2 * time.Hour)

	conv, release, _ := s.Acquire("p1", "b1")
	conv.Stage = domain.StageQuoting

	done := make(chan domain.Stage)
	go func() {
		c, rel, _ := s.Acquire("p1", "b1")
		defer rel()
		done <- c.Stage
	}()

	select {
	case <-done:
		t.Fatal("second acquire proceeded while the first held the lock")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	require.Equal(t, domain.StageQuoting, <-done)
}

func TestSweepEvictsIdleOnly(t *testing.T) {
	s := New(2 * time.Hour)
	current := time.Now()
	s.now = func() time.Time { return current }

	_, release, _ := s.Acquire("stale", "b1")
	release()
	current = current.Add(3 * time.Hour)
	_, release, _ = s.Acquire("fresh", "b1")
	release()

	require.Equal(t, 1, s.Sweep())
	require.Equal(t, 1, s.Len())

	// The surviving conversation is the fresh one.
	conv, release, created := s.Acquire("fresh", "b1")
	require.False(t, created)
	require.Equal(t, "fresh", conv.Phone)
	release()
}

func TestSweepSkipsBusyConversations(t *testing.T) {
	s := New(time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	_, release, _ := s.Acquire("busy", "b1")
	current = current.Add(time.Hour)

	require.Equal(t, 0, s.Sweep())
	release()
	require.Equal(t, 1, s.Sweep())
}

func TestForEachSkipsHeldEntries(t *testing.T) {
	s := New(time.Hour)
	_, releaseA, _ := s.Acquire("a", "b1")
	releaseA()
	_, releaseB, _ := s.Acquire("b", "b1")

	var visited []string
	s.ForEach(func(conv *domain.Conversation) {
		visited = append(visited, conv.Phone)
	})
	require.Equal(t, []string{"a"}, visited)
	releaseB()
}

func TestEvictUnderHeldLockRestartsQueuedAcquire(t *testing.T) {
	s := New(time.Hour)

	conv, release, _ := s.Acquire("p1", "b1")
	conv.Stage = domain.StageCancelled

	type acquired struct {
		conv    *domain.Conversation
		created bool
	}
	got := make(chan acquired)
	go func() {
		c, rel, created := s.Acquire("p1", "b1")
		defer rel()
		got <- acquired{c, created}
	}()

	// Let the second acquire queue on the entry lock, then evict the entry
	// while the lock is still held, as a cancel mid-handling does.
	time.Sleep(20 * time.Millisecond)
	s.Evict("p1", "b1")
	release()

	select {
	case r := <-got:
		require.True(t, r.created)
		require.NotSame(t, conv, r.conv)
		require.Equal(t, domain.StageStart, r.conv.Stage)
	case <-time.After(time.Second):
		t.Fatal("queued acquire never returned")
	}
	require.Equal(t, 1, s.Len())
}

func TestEvictDropsState(t *testing.T) {
	s := New(time.Hour)
	conv, release, _ := s.Acquire("p1", "b1")
	conv.Stage = domain.StageCancelled
	release()

	s.Evict("p1", "b1")

	fresh, release, created := s.Acquire("p1", "b1")
	require.True(t, created)
	require.Equal(t, domain.StageStart, fresh.Stage)
	release()
}
