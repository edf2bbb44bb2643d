package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	"github.com/hireloop/hireloop/internal/match/domain"
	"github.com/hireloop/hireloop/internal/notification"
	obsmetrics "github.com/hireloop/hireloop/internal/observability/metrics"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Repo       domain.Repository
	References domain.ReferenceChecker
	Dispatcher *notification.Dispatcher `optional:"true"`
	Metrics    *obsmetrics.Metrics      `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	repo       domain.Repository
	references domain.ReferenceChecker
	dispatcher *notification.Dispatcher
	metrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("match.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       p.Repo,
		references: p.References,
		dispatcher: p.Dispatcher,
		metrics:    p.Metrics,
	}
}

// Signal records one side's interest in the triple, creating the application
// on the first signal from either side. Creation is insert-if-absent plus a
// re-read inside one transaction, so two racing first signals converge on a
// single row with both flags accumulated.
func (s *Service) Signal(ctx context.Context, req domain.SignalRequest) (*domain.Response, error) {
	candidateID, err := parseID(req.CandidateID)
	if err != nil {
		return nil, domain.ErrInvalidRequest
	}
	organizationID, err := parseID(req.OrganizationID)
	if err != nil {
		return nil, domain.ErrInvalidRequest
	}
	jobID, err := parseID(req.JobID)
	if err != nil {
		return nil, domain.ErrInvalidRequest
	}
	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return nil, domain.ErrInvalidRequest
	}

	var resumeID *int64
	if strings.TrimSpace(req.ResumeID) != "" {
		id, err := parseID(req.ResumeID)
		if err != nil {
			return nil, domain.ErrInvalidRequest
		}
		resumeID = &id
	}

	if err := s.checkReferences(ctx, candidateID, organizationID, jobID, resumeID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fresh := &domain.Application{
		ID:                     s.genID.Generate().Int64(),
		CandidateID:            candidateID,
		OrganizationID:         organizationID,
		JobID:                  jobID,
		ResumeID:               resumeID,
		CandidateInterested:    side == domain.SideCandidate,
		OrganizationInterested: side == domain.SideOrganization,
		Status:                 domain.StatusPending,
		CreatedAt:              now,
		UpdatedAt:              now,
		ExpiredAt:              now.Add(domain.InitiationWindow),
	}

	var result *domain.Application
	var becameMutual bool
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateIfAbsent(ctx, tx, fresh); err != nil {
			return err
		}

		app, err := s.repo.FindByTriple(ctx, tx, candidateID, organizationID, jobID)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrNotFound
		}

		if app.ID == fresh.ID {
			// This call created the row.
			result = app
			return nil
		}

		if app.Terminal() {
			result = app
			return nil
		}

		already := (side == domain.SideCandidate && app.CandidateInterested) ||
			(side == domain.SideOrganization && app.OrganizationInterested)
		if already {
			// Idempotent re-signal, nothing to write.
			result = app
			return nil
		}

		if side == domain.SideCandidate {
			app.CandidateInterested = true
		} else {
			app.OrganizationInterested = true
		}
		if app.ResumeID == nil && resumeID != nil {
			app.ResumeID = resumeID
		}
		app.UpdatedAt = now
		if app.Mutual() {
			app.Status = domain.StatusMatched
			app.ExpiredAt = now.Add(domain.MatchWindow)
			becameMutual = true
		}

		if err := s.repo.Update(ctx, tx, app); err != nil {
			return err
		}
		result = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becameMutual {
		s.recordTransition(ctx, domain.StatusPending, domain.StatusMatched)
		s.notify(ctx, notification.EventMutualMatch, result)
	} else if result.ID == fresh.ID {
		s.notify(ctx, notification.EventInterestReceived, result)
	}

	resp := s.toResponse(result)
	return &resp, nil
}

// Reject marks a pending application declined. Rejecting an already mutual
// or terminal record is a no-op success.
func (s *Service) Reject(ctx context.Context, id string) (*domain.Response, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if app.Status == domain.StatusMatched || app.Terminal() {
		resp := s.toResponse(app)
		return &resp, nil
	}

	from := app.Status
	app.Status = domain.StatusRejected
	app.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, app); err != nil {
		return nil, err
	}

	s.recordTransition(ctx, from, domain.StatusRejected)

	resp := s.toResponse(app)
	return &resp, nil
}

// Fulfill attaches the introduction video to a mutual match and closes it
// accepted. Replacing the video on an already fulfilled record keeps the
// state at fulfilled.
func (s *Service) Fulfill(ctx context.Context, id string, videoURL string) (*domain.Response, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return nil, domain.ErrInvalidRequest
	}

	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch app.Status {
	case domain.StatusFulfilled:
		app.VideoURL = &videoURL
		app.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, app); err != nil {
			return nil, err
		}
	case domain.StatusMatched:
		app.VideoURL = &videoURL
		app.Status = domain.StatusFulfilled
		app.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, app); err != nil {
			return nil, err
		}
		s.recordTransition(ctx, domain.StatusMatched, domain.StatusFulfilled)
		s.notify(ctx, notification.EventMatchFulfilled, app)
	default:
		return nil, domain.ErrNotMatched
	}

	resp := s.toResponse(app)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(app)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Application, error) {
	appID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	app, err := s.repo.FindByID(ctx, s.db, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound
	}
	return app, nil
}

func (s *Service) checkReferences(ctx context.Context, candidateID, organizationID, jobID int64, resumeID *int64) error {
	ok, err := s.references.CandidateExists(ctx, candidateID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCandidateNotFound
	}

	ok, err = s.references.OrganizationExists(ctx, organizationID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrOrganizationNotFound
	}

	ok, err = s.references.JobExists(ctx, jobID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrJobNotFound
	}

	if resumeID != nil {
		ok, err = s.references.ResumeExists(ctx, *resumeID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrResumeNotFound
		}
	}
	return nil
}

func (s *Service) recordTransition(ctx context.Context, from, to int) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordMatchTransition(ctx, strconv.Itoa(from), strconv.Itoa(to))
}

func (s *Service) notify(ctx context.Context, eventType notification.EventType, app *domain.Application) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, notification.Event{
		Type:           eventType,
		CandidateID:    app.CandidateID,
		OrganizationID: app.OrganizationID,
		JobID:          app.JobID,
		ApplicationID:  app.ID,
	})
}

func (s *Service) toResponse(app *domain.Application) domain.Response {
	resp := domain.Response{
		ID:                     snowflake.ID(app.ID).String(),
		CandidateID:            snowflake.ID(app.CandidateID).String(),
		OrganizationID:         snowflake.ID(app.OrganizationID).String(),
		JobID:                  snowflake.ID(app.JobID).String(),
		CandidateInterested:    app.CandidateInterested,
		OrganizationInterested: app.OrganizationInterested,
		Status:                 app.Status,
		VideoURL:               app.VideoURL,
		Expired:                app.Expired(s.clock.Now()),
		CreatedAt:              app.CreatedAt,
		UpdatedAt:              app.UpdatedAt,
		ExpiredAt:              app.ExpiredAt,
	}
	if app.ResumeID != nil {
		resp.ResumeID = snowflake.ID(*app.ResumeID).String()
	}
	return resp
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id.Int64() == 0 {
		return 0, domain.ErrInvalidRequest
	}
	return id.Int64(), nil
}
