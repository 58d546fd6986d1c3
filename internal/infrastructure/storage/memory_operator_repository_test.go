package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"smart-spray/internal/domain/entity"
)

func TestMemoryOperatorRepository_GetCreatesOnce(t *testing.T) {
	repo := NewMemoryOperatorRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			op, err := repo.Get(ctx, 7, 70)
			require.NoError(t, err)
			require.Equal(t, int64(7), op.ID)
		}()
	}
	wg.Wait()

	op, err := repo.Get(ctx, 7, 70)
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, op.State)
}

func TestMemoryOperatorRepository_SaveAndSubscribers(t *testing.T) {
	repo := NewMemoryOperatorRepository()
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		op, err := repo.Get(ctx, id, id*10)
		require.NoError(t, err)
		op.Subscribed = id != 2
		require.NoError(t, repo.Save(ctx, op))
	}

	subs, err := repo.Subscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, int64(1), subs[0].ID)
	require.Equal(t, int64(3), subs[1].ID)
}

func TestMemoryOperatorRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryOperatorRepository()
	ctx := context.Background()

	op, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	op.SetState(entity.StateProcessing)

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, again.State)
}
