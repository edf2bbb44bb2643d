package service

import (
	"context"
	"strconv"
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
	"github.com/hireloop/hireloop/internal/subscription/domain"
	subrepository "github.com/hireloop/hireloop/internal/subscription/repository"
)

type subscriptionFixture struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	genID   *snowflake.Node
	service domain.Service
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&plandomain.Plan{}, &domain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC))
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fakeClock,
		GenID:    node,
		Repo:     subrepository.Provide(),
		PlanRepo: planrepository.Provide(),
	})

	return &subscriptionFixture{db: db, clock: fakeClock, genID: node, service: svc}
}

func (f *subscriptionFixture) createPlan(t *testing.T, active bool, durationUnit string, durationValue int) *plandomain.Plan {
	t.Helper()
	now := f.clock.Now()
	plan := &plandomain.Plan{
		ID:            f.genID.Generate().Int64(),
		Code:          "plan-" + f.genID.Generate().String(),
		Name:          "Test Plan",
		ResumeAccess:  true,
		DurationValue: durationValue,
		DurationUnit:  durationUnit,
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(plan).Error)
	return plan
}

func TestSubscribe_ComputesExpiryAndResetFromPlan(t *testing.T) {
	f := newSubscriptionFixture(t)
	plan := f.createPlan(t, true, "month", 1)
	userID := f.genID.Generate().String()

	resp, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: userID,
		PlanID: strconv.FormatInt(plan.ID, 10),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ExpiresAt)
	assert.True(t, resp.ExpiresAt.Equal(f.clock.Now().AddDate(0, 1, 0)))
	assert.True(t, resp.ResetAt.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(0), resp.ResumeCount)
}

func TestSubscribe_YearPlanExpiry(t *testing.T) {
	f := newSubscriptionFixture(t)
	plan := f.createPlan(t, true, "year", 1)

	resp, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: f.genID.Generate().String(),
		PlanID: strconv.FormatInt(plan.ID, 10),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ExpiresAt)
	assert.True(t, resp.ExpiresAt.Equal(f.clock.Now().AddDate(1, 0, 0)))
}

func TestSubscribe_UnknownOrInactivePlan(t *testing.T) {
	f := newSubscriptionFixture(t)
	inactive := f.createPlan(t, false, "month", 1)

	_, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: f.genID.Generate().String(),
		PlanID: "999999",
	})
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	_, err = f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: f.genID.Generate().String(),
		PlanID: strconv.FormatInt(inactive.ID, 10),
	})
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestSubscribe_DuplicateUser(t *testing.T) {
	f := newSubscriptionFixture(t)
	plan := f.createPlan(t, true, "month", 1)
	userID := f.genID.Generate().String()

	_, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: userID,
		PlanID: strconv.FormatInt(plan.ID, 10),
	})
	require.NoError(t, err)

	_, err = f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: userID,
		PlanID: strconv.FormatInt(plan.ID, 10),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestGetByUser(t *testing.T) {
	f := newSubscriptionFixture(t)
	plan := f.createPlan(t, true, "month", 1)
	userID := f.genID.Generate().String()

	created, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: userID,
		PlanID: strconv.FormatInt(plan.ID, 10),
	})
	require.NoError(t, err)

	resp, err := f.service.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	_, err = f.service.GetByUser(context.Background(), "424242")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.GetByUser(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestCancel(t *testing.T) {
	f := newSubscriptionFixture(t)
	plan := f.createPlan(t, true, "month", 1)
	userID := f.genID.Generate().String()

	_, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: userID,
		PlanID: strconv.FormatInt(plan.ID, 10),
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(context.Background(), userID))

	_, err = f.service.GetByUser(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Cancelling again reports the missing record.
	assert.ErrorIs(t, f.service.Cancel(context.Background(), userID), domain.ErrNotFound)
}

func TestList_PagesNewestFirstWithCursor(t *testing.T) {
	f := newSubscriptionFixture(t)
	plan := f.createPlan(t, true, "month", 1)

	created := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		resp, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
			UserID: f.genID.Generate().String(),
			PlanID: strconv.FormatInt(plan.ID, 10),
		})
		require.NoError(t, err)
		created = append(created, resp.ID)
		f.clock.Advance(time.Hour)
	}

	first, err := f.service.List(context.Background(), domain.ListRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Subscriptions, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)
	assert.Equal(t, created[4], first.Subscriptions[0].ID)
	assert.Equal(t, created[3], first.Subscriptions[1].ID)

	second, err := f.service.List(context.Background(), domain.ListRequest{
		PageSize:  2,
		PageToken: first.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, second.Subscriptions, 2)
	assert.True(t, second.HasMore)
	assert.Equal(t, created[2], second.Subscriptions[0].ID)
	assert.Equal(t, created[1], second.Subscriptions[1].ID)

	last, err := f.service.List(context.Background(), domain.ListRequest{
		PageSize:  2,
		PageToken: second.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, last.Subscriptions, 1)
	assert.False(t, last.HasMore)
	assert.Equal(t, created[0], last.Subscriptions[0].ID)
}

func TestList_FiltersByPlan(t *testing.T) {
	f := newSubscriptionFixture(t)
	planA := f.createPlan(t, true, "month", 1)
	planB := f.createPlan(t, true, "month", 1)

	for _, plan := range []*plandomain.Plan{planA, planA, planB} {
		_, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
			UserID: f.genID.Generate().String(),
			PlanID: strconv.FormatInt(plan.ID, 10),
		})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	resp, err := f.service.List(context.Background(), domain.ListRequest{
		PlanID: strconv.FormatInt(planA.ID, 10),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Subscriptions, 2)

	_, err = f.service.List(context.Background(), domain.ListRequest{PlanID: "not-an-id"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestList_IgnoresMalformedPageToken(t *testing.T) {
	f := newSubscriptionFixture(t)
	plan := f.createPlan(t, true, "month", 1)

	_, err := f.service.Subscribe(context.Background(), domain.SubscribeRequest{
		UserID: f.genID.Generate().String(),
		PlanID: strconv.FormatInt(plan.ID, 10),
	})
	require.NoError(t, err)

	resp, err := f.service.List(context.Background(), domain.ListRequest{PageToken: "%%not-base64%%"})
	require.NoError(t, err)
	assert.Len(t, resp.Subscriptions, 1)
	assert.False(t, resp.HasMore)
}
