package jobs

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegisterJobParksUntilSchedulerExists(t *testing.T) {
	require.Nil(t, GetScheduler())

	require.NoError(t, RegisterJob(JobDefinition{
		Name:    "first",
		Enabled: true,
		Handler: func(*Context) error { return nil },
	}))
	require.NoError(t, RegisterJob(JobDefinition{
		Name:    "second",
		Enabled: true,
		Handler: func(*Context) error { return nil },
	}))

	parked := pendingJobs()
	require.Len(t, parked, 2)
	require.Equal(t, "first", parked[0].Name)
	require.Equal(t, "second", parked[1].Name)

	// The queue drains exactly once
	require.Empty(t, pendingJobs())
}

func TestContextProcessedCounter(t *testing.T) {
	ctx := NewContext(context.Background(), "test-job", uuid.New())
	require.Equal(t, 0, ctx.Processed())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.AddProcessed(5)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, ctx.Processed())
}

func TestContextCarriesCancellation(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	ctx := NewContext(base, "test-job", uuid.New())

	require.NoError(t, ctx.Err())
	cancel()
	require.Error(t, ctx.Err())
}
