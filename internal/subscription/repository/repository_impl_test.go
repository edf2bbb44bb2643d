package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/subscription/domain"
)

func newRepoFixture(t *testing.T) (*gorm.DB, domain.Repository, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return db, Provide(), node
}

func createSubscription(t *testing.T, db *gorm.DB, repo domain.Repository, node *snowflake.Node) *domain.Subscription {
	t.Helper()
	now := time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)
	sub := &domain.Subscription{
		ID:        node.Generate().Int64(),
		UserID:    node.Generate().Int64(),
		PlanID:    node.Generate().Int64(),
		StartedAt: now,
		ResetAt:   domain.NextMonthStart(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(context.Background(), db, sub))
	return sub
}

func TestIncrement_AdvancesCounterAndVersion(t *testing.T) {
	db, repo, node := newRepoFixture(t)
	sub := createSubscription(t, db, repo, node)
	now := sub.CreatedAt.Add(time.Minute)

	ok, err := repo.Increment(context.Background(), db, sub, domain.CounterResume, nil, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), sub.ResumeCount)
	assert.Equal(t, int64(1), sub.Version)

	stored, err := repo.FindByUser(context.Background(), db, sub.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ResumeCount)
	assert.Equal(t, int64(1), stored.Version)
}

func TestIncrement_StaleVersionIsRejected(t *testing.T) {
	db, repo, node := newRepoFixture(t)
	sub := createSubscription(t, db, repo, node)
	now := sub.CreatedAt.Add(time.Minute)

	// A second loader holding the same version wins first.
	stale, err := repo.FindByUser(context.Background(), db, sub.UserID)
	require.NoError(t, err)

	ok, err := repo.Increment(context.Background(), db, sub, domain.CounterResume, nil, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Increment(context.Background(), db, stale, domain.CounterJobPost, nil, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// The losing write left no trace.
	stored, err := repo.FindByUser(context.Background(), db, sub.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.JobPostCount)
	assert.Equal(t, int64(1), stored.Version)
}

func TestIncrement_VideoExpiryWrittenAtomically(t *testing.T) {
	db, repo, node := newRepoFixture(t)
	sub := createSubscription(t, db, repo, node)
	now := sub.CreatedAt.Add(time.Minute)
	expiry := now.Add(7 * 24 * time.Hour)

	ok, err := repo.Increment(context.Background(), db, sub, domain.CounterVideoRequest, &expiry, now)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := repo.FindByUser(context.Background(), db, sub.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.VideoRequestCount)
	require.NotNil(t, stored.VideoRequestExpiresAt)
	assert.True(t, stored.VideoRequestExpiresAt.Equal(expiry))
}

func TestIncrement_UnknownCounter(t *testing.T) {
	db, repo, node := newRepoFixture(t)
	sub := createSubscription(t, db, repo, node)

	_, err := repo.Increment(context.Background(), db, sub, domain.Counter("login_count"), nil, sub.CreatedAt)
	assert.Error(t, err)
}

func TestResetCounters_ZeroesLedger(t *testing.T) {
	db, repo, node := newRepoFixture(t)
	sub := createSubscription(t, db, repo, node)
	now := sub.CreatedAt.Add(time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := repo.Increment(context.Background(), db, sub, domain.CounterResume, nil, now)
		require.NoError(t, err)
		require.True(t, ok)
	}

	nextReset := domain.NextMonthStart(now)
	ok, err := repo.ResetCounters(context.Background(), db, sub, nextReset, now)
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := repo.FindByUser(context.Background(), db, sub.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.ResumeCount)
	assert.Equal(t, int64(0), stored.VideoRequestCount)
	assert.Equal(t, int64(0), stored.JobPostCount)
	assert.True(t, stored.ResetAt.Equal(nextReset))
}

func TestResetCounters_StaleVersionIsRejected(t *testing.T) {
	db, repo, node := newRepoFixture(t)
	sub := createSubscription(t, db, repo, node)
	now := sub.CreatedAt.Add(time.Minute)

	stale, err := repo.FindByUser(context.Background(), db, sub.UserID)
	require.NoError(t, err)

	ok, err := repo.Increment(context.Background(), db, sub, domain.CounterResume, nil, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ResetCounters(context.Background(), db, stale, domain.NextMonthStart(now), now)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByUser(context.Background(), db, sub.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ResumeCount)
}

func TestListDueForReset(t *testing.T) {
	db, repo, node := newRepoFixture(t)
	due := createSubscription(t, db, repo, node)
	fresh := createSubscription(t, db, repo, node)

	cutoff := due.ResetAt.Add(time.Minute)
	require.NoError(t, db.Exec(
		`UPDATE subscriptions SET reset_at = ? WHERE id = ?`,
		fresh.ResetAt.AddDate(0, 1, 0), fresh.ID,
	).Error)

	items, err := repo.ListDueForReset(context.Background(), db, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, due.ID, items[0].ID)
}

func TestFindByUser_MissingReturnsNil(t *testing.T) {
	db, repo, _ := newRepoFixture(t)

	sub, err := repo.FindByUser(context.Background(), db, 999999)
	require.NoError(t, err)
	assert.Nil(t, sub)
}
