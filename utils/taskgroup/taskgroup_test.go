package taskgroup

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stevedore/stevedore/utils/testutil"
)

func TestGroupWait(t *testing.T) {
	require := require.New(t)

	g := New()

	results := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		g.Go("task", func() error {
			results <- i
			return nil
		})
	}
	g.Wait()

	require.Len(results, 3)
}

func TestGroupSweepBoundsTrackedTasks(t *testing.T) {
	require := require.New(t)

	g := New()

	block := make(chan struct{})
	g.Go("blocked", func() error {
		<-block
		return nil
	})

	// Tasks which complete immediately should be swept as new ones start.
	for i := 0; i < 100; i++ {
		done := make(chan struct{})
		g.Go("quick", func() error {
			close(done)
			return nil
		})
		<-done
	}

	// Each probe insert triggers a sweep. Eventually only the blocked task,
	// the previous probe, and the current probe can remain tracked.
	require.NoError(testutil.PollUntilTrue(5*time.Second, func() bool {
		g.Go("probe", func() error { return nil })
		return g.Size() <= 3
	}))

	close(block)
	g.Wait()
}

func TestGroupAbsorbsErrors(t *testing.T) {
	require := require.New(t)

	g := New()

	g.Go("failing", func() error {
		return errors.New("task error")
	})
	g.Wait()

	require.Equal(0, g.Size())

	// Group remains usable after a task error.
	g.Go("ok", func() error { return nil })
	g.Wait()
}
