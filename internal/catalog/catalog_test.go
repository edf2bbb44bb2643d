package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
	planrepository "github.com/hireloop/hireloop/internal/plan/repository"
)

type cacheFixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	genID *snowflake.Node
	cache *Cache
}

func newCacheFixture(t *testing.T) *cacheFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&plandomain.Plan{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC))
	cache := New(db, zap.NewNop(), fakeClock, planrepository.Provide(), nil)

	return &cacheFixture{db: db, clock: fakeClock, genID: node, cache: cache}
}

func (f *cacheFixture) createPlan(t *testing.T, name string, resumeLimit *int64) *plandomain.Plan {
	t.Helper()
	now := f.clock.Now()
	plan := &plandomain.Plan{
		ID:            f.genID.Generate().Int64(),
		Code:          "plan-" + f.genID.Generate().String(),
		Name:          name,
		ResumeAccess:  true,
		ResumeLimit:   resumeLimit,
		DurationValue: 1,
		DurationUnit:  "month",
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(plan).Error)
	return plan
}

func TestRefresh_PublishesWholeCatalog(t *testing.T) {
	f := newCacheFixture(t)
	resumeCap := int64(10)
	a := f.createPlan(t, "Starter", &resumeCap)
	b := f.createPlan(t, "Growth", nil)

	require.NoError(t, f.cache.Refresh(context.Background()))

	ent, ok := f.cache.Lookup(a.ID)
	require.True(t, ok)
	require.NotNil(t, ent.ResumeLimit)
	assert.Equal(t, int64(10), *ent.ResumeLimit)

	ent, ok = f.cache.Lookup(b.ID)
	require.True(t, ok)
	assert.Nil(t, ent.ResumeLimit)
	assert.True(t, f.cache.LastRefreshedAt().Equal(f.clock.Now()))
}

func TestRefresh_DropsRemovedPlans(t *testing.T) {
	f := newCacheFixture(t)
	plan := f.createPlan(t, "Starter", nil)

	require.NoError(t, f.cache.Refresh(context.Background()))
	_, ok := f.cache.Lookup(plan.ID)
	require.True(t, ok)

	require.NoError(t, f.db.Delete(&plandomain.Plan{}, plan.ID).Error)
	require.NoError(t, f.cache.Refresh(context.Background()))

	_, ok = f.cache.Lookup(plan.ID)
	assert.False(t, ok)
}

func TestLookup_MissWithoutStoreAccess(t *testing.T) {
	f := newCacheFixture(t)
	f.createPlan(t, "Starter", nil)

	// Never refreshed, so even persisted plans are unknown to Lookup.
	_, ok := f.cache.Lookup(12345)
	assert.False(t, ok)
}

func TestResolve_FallsBackToStoreAndPopulates(t *testing.T) {
	f := newCacheFixture(t)
	plan := f.createPlan(t, "Starter", nil)

	ent, found, err := f.cache.Resolve(context.Background(), plan.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, plan.ID, ent.PlanID)

	// The fallback load published the entry for later lookups.
	_, ok := f.cache.Lookup(plan.ID)
	assert.True(t, ok)
}

func TestResolve_UnknownPlan(t *testing.T) {
	f := newCacheFixture(t)

	_, found, err := f.cache.Resolve(context.Background(), 424242)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRefresh_SnapshotIsImmutable(t *testing.T) {
	f := newCacheFixture(t)
	plan := f.createPlan(t, "Starter", nil)
	require.NoError(t, f.cache.Refresh(context.Background()))

	before, ok := f.cache.Lookup(plan.ID)
	require.True(t, ok)

	require.NoError(t, f.db.Model(&plandomain.Plan{}).
		Where("id = ?", plan.ID).
		Update("name", "Renamed").Error)

	// Store mutations are invisible until the next refresh.
	after, ok := f.cache.Lookup(plan.ID)
	require.True(t, ok)
	assert.Equal(t, before, after)
}
