package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/DhawalShankar/vartalang-sub001/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetOrCreateChatSession(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewChatSessionRepository(setupTestDB(t))

	first, err := repo.GetOrCreate(ctx, 5, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, uint64(3), first.UserLowID)
	assert.Equal(t, uint64(5), first.UserHighID)

	// same pair, either order, resolves to the same session
	second, err := repo.GetOrCreate(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestForPair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewChatSessionRepository(setupTestDB(t))

	_, err := repo.ForPair(ctx, 1, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	created, err := repo.GetOrCreate(ctx, 1, 2)
	require.NoError(t, err)

	found, err := repo.ForPair(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

// TestGetOrCreateConcurrent: simultaneous provisioning for the same pair
// must converge on a single session; the unique pair index turns a lost
// insert into a lookup.
func TestGetOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := repository.NewChatSessionRepository(database)

	const n = 12
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := repo.GetOrCreate(ctx, 7, 8)
			errs[i] = err
			if session != nil {
				ids[i] = session.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i], "all callers must get the same session")
	}

	var count int64
	require.NoError(t, database.Table("chat_sessions").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
