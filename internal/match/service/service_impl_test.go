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
	"github.com/hireloop/hireloop/internal/match/domain"
	matchrepository "github.com/hireloop/hireloop/internal/match/repository"
)

// stubReferences answers existence probes from in-memory sets.
type stubReferences struct {
	candidates    map[int64]bool
	organizations map[int64]bool
	jobs          map[int64]bool
	resumes       map[int64]bool
}

func (s *stubReferences) CandidateExists(ctx context.Context, id int64) (bool, error) {
	return s.candidates[id], nil
}

func (s *stubReferences) OrganizationExists(ctx context.Context, id int64) (bool, error) {
	return s.organizations[id], nil
}

func (s *stubReferences) JobExists(ctx context.Context, id int64) (bool, error) {
	return s.jobs[id], nil
}

func (s *stubReferences) ResumeExists(ctx context.Context, id int64) (bool, error) {
	return s.resumes[id], nil
}

type matchFixture struct {
	db          *gorm.DB
	clock       *clock.FakeClock
	service     domain.Service
	references  *stubReferences
	candidate   int64
	organizatio int64
	job         int64
	resume      int64
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Application{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	candidate := node.Generate().Int64()
	organization := node.Generate().Int64()
	job := node.Generate().Int64()
	resume := node.Generate().Int64()

	refs := &stubReferences{
		candidates:    map[int64]bool{candidate: true},
		organizations: map[int64]bool{organization: true},
		jobs:          map[int64]bool{job: true},
		resumes:       map[int64]bool{resume: true},
	}

	fakeClock := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		Clock:      fakeClock,
		GenID:      node,
		Repo:       matchrepository.Provide(),
		References: refs,
	})

	return &matchFixture{
		db:          db,
		clock:       fakeClock,
		service:     svc,
		references:  refs,
		candidate:   candidate,
		organizatio: organization,
		job:         job,
		resume:      resume,
	}
}

func (f *matchFixture) signal(t *testing.T, side string, resumeID string) *domain.Response {
	t.Helper()
	resp, err := f.service.Signal(context.Background(), domain.SignalRequest{
		CandidateID:    strconv.FormatInt(f.candidate, 10),
		OrganizationID: strconv.FormatInt(f.organizatio, 10),
		JobID:          strconv.FormatInt(f.job, 10),
		Side:           side,
		ResumeID:       resumeID,
	})
	require.NoError(t, err)
	return resp
}

func TestSignal_FirstSignalCreatesPending(t *testing.T) {
	f := newMatchFixture(t)

	resp := f.signal(t, "organization", "")

	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.True(t, resp.OrganizationInterested)
	assert.False(t, resp.CandidateInterested)
	assert.True(t, resp.ExpiredAt.Equal(f.clock.Now().Add(domain.InitiationWindow)))
}

func TestSignal_BothSidesBecomeMutual(t *testing.T) {
	orders := map[string][2]string{
		"candidate_first":    {"candidate", "organization"},
		"organization_first": {"organization", "candidate"},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			f := newMatchFixture(t)

			f.signal(t, order[0], "")
			f.clock.Advance(time.Hour)
			resp := f.signal(t, order[1], "")

			assert.Equal(t, domain.StatusMatched, resp.Status)
			assert.True(t, resp.CandidateInterested)
			assert.True(t, resp.OrganizationInterested)
			assert.True(t, resp.ExpiredAt.Equal(f.clock.Now().Add(domain.MatchWindow)))
		})
	}
}

func TestSignal_ResignalIsIdempotent(t *testing.T) {
	f := newMatchFixture(t)

	first := f.signal(t, "candidate", "")
	f.clock.Advance(time.Hour)
	second := f.signal(t, "candidate", "")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusPending, second.Status)
	assert.True(t, second.UpdatedAt.Equal(first.UpdatedAt))
}

func TestSignal_CarriesResumeOnFirstWrite(t *testing.T) {
	f := newMatchFixture(t)

	f.signal(t, "organization", "")
	resp := f.signal(t, "candidate", strconv.FormatInt(f.resume, 10))

	assert.Equal(t, strconv.FormatInt(f.resume, 10), resp.ResumeID)
}

func TestSignal_UnknownReferences(t *testing.T) {
	f := newMatchFixture(t)

	cases := []struct {
		name    string
		mutate  func(*domain.SignalRequest)
		wantErr error
	}{
		{"candidate", func(r *domain.SignalRequest) { r.CandidateID = "999999" }, domain.ErrCandidateNotFound},
		{"organization", func(r *domain.SignalRequest) { r.OrganizationID = "999999" }, domain.ErrOrganizationNotFound},
		{"job", func(r *domain.SignalRequest) { r.JobID = "999999" }, domain.ErrJobNotFound},
		{"resume", func(r *domain.SignalRequest) { r.ResumeID = "999999" }, domain.ErrResumeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := domain.SignalRequest{
				CandidateID:    strconv.FormatInt(f.candidate, 10),
				OrganizationID: strconv.FormatInt(f.organizatio, 10),
				JobID:          strconv.FormatInt(f.job, 10),
				Side:           "candidate",
			}
			tc.mutate(&req)
			_, err := f.service.Signal(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSignal_InvalidInput(t *testing.T) {
	f := newMatchFixture(t)

	_, err := f.service.Signal(context.Background(), domain.SignalRequest{
		CandidateID:    "not-a-number",
		OrganizationID: strconv.FormatInt(f.organizatio, 10),
		JobID:          strconv.FormatInt(f.job, 10),
		Side:           "candidate",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = f.service.Signal(context.Background(), domain.SignalRequest{
		CandidateID:    strconv.FormatInt(f.candidate, 10),
		OrganizationID: strconv.FormatInt(f.organizatio, 10),
		JobID:          strconv.FormatInt(f.job, 10),
		Side:           "recruiter",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestReject_PendingBecomesRejected(t *testing.T) {
	f := newMatchFixture(t)

	created := f.signal(t, "organization", "")
	resp, err := f.service.Reject(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, resp.Status)

	// A rejected application ignores later interest.
	after := f.signal(t, "candidate", "")
	assert.Equal(t, domain.StatusRejected, after.Status)
	assert.False(t, after.CandidateInterested)
}

func TestReject_MutualIsNoOp(t *testing.T) {
	f := newMatchFixture(t)

	f.signal(t, "organization", "")
	matched := f.signal(t, "candidate", "")

	resp, err := f.service.Reject(context.Background(), matched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, resp.Status)
}

func TestFulfill_TransitionsAndReplacement(t *testing.T) {
	f := newMatchFixture(t)

	f.signal(t, "organization", "")
	matched := f.signal(t, "candidate", "")

	resp, err := f.service.Fulfill(context.Background(), matched.ID, "https://videos.example.com/intro-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, resp.Status)
	require.NotNil(t, resp.VideoURL)
	assert.Equal(t, "https://videos.example.com/intro-1", *resp.VideoURL)

	// Replacing the video keeps the record fulfilled.
	resp, err = f.service.Fulfill(context.Background(), matched.ID, "https://videos.example.com/intro-2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFulfilled, resp.Status)
	assert.Equal(t, "https://videos.example.com/intro-2", *resp.VideoURL)
}

func TestFulfill_RequiresMutualMatch(t *testing.T) {
	f := newMatchFixture(t)

	pending := f.signal(t, "organization", "")
	_, err := f.service.Fulfill(context.Background(), pending.ID, "https://videos.example.com/intro")
	assert.ErrorIs(t, err, domain.ErrNotMatched)

	_, err = f.service.Fulfill(context.Background(), pending.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestGet_ReportsLazyExpiry(t *testing.T) {
	f := newMatchFixture(t)

	pending := f.signal(t, "organization", "")

	resp, err := f.service.Get(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.False(t, resp.Expired)

	f.clock.Advance(domain.InitiationWindow + time.Hour)
	resp, err = f.service.Get(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.True(t, resp.Expired)
	assert.Equal(t, domain.StatusPending, resp.Status)
}

func TestGet_NotFound(t *testing.T) {
	f := newMatchFixture(t)

	_, err := f.service.Get(context.Background(), "123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestMatchedApplicationsDoNotExpire(t *testing.T) {
	f := newMatchFixture(t)

	f.signal(t, "organization", "")
	matched := f.signal(t, "candidate", "")

	f.clock.Advance(domain.MatchWindow + 24*time.Hour)
	resp, err := f.service.Get(context.Background(), matched.ID)
	require.NoError(t, err)
	assert.False(t, resp.Expired)
}
