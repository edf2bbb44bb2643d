package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	plandomain "github.com/hireloop/hireloop/internal/plan/domain"
	"github.com/hireloop/hireloop/internal/subscription/domain"
	pkgdb "github.com/hireloop/hireloop/pkg/db"
	"github.com/hireloop/hireloop/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	PlanRepo plandomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	planRepo plandomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("subscription.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     p.Repo,
		planRepo: p.PlanRepo,
	}
}

func (s *Service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.Response, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	planID, err := snowflake.ParseString(strings.TrimSpace(req.PlanID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	plan, err := s.planRepo.FindByID(ctx, s.db, planID.Int64())
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.Active {
		return nil, domain.ErrPlanNotFound
	}

	now := s.clock.Now()
	expiresAt := plan.Expiry(now)
	sub := &domain.Subscription{
		ID:        s.genID.Generate().Int64(),
		UserID:    userID.Int64(),
		PlanID:    planID.Int64(),
		StartedAt: now,
		ExpiresAt: &expiresAt,
		ResetAt:   domain.NextMonthStart(now),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, s.db, sub); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, err
	}

	s.log.Info("subscription created",
		zap.Int64("user_id", sub.UserID),
		zap.Int64("plan_id", sub.PlanID),
	)

	resp := toResponse(sub)
	return &resp, nil
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*domain.Response, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	sub, err := s.repo.FindByUser(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(sub)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	var filter domain.ListFilter
	if raw := strings.TrimSpace(req.PlanID); raw != "" {
		planID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidID
		}
		filter.PlanID = planID.Int64()
	}

	page := pagination.Pagination{
		PageToken: strings.TrimSpace(req.PageToken),
		PageSize:  req.PageSize,
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, page.Limit(), func(item *domain.Subscription) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        snowflake.ID(item.ID).String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	subs := make([]domain.Response, 0, len(items))
	for _, item := range items {
		subs = append(subs, toResponse(item))
	}

	resp := domain.ListResponse{Subscriptions: subs}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Cancel(ctx context.Context, userID string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil {
		return domain.ErrInvalidID
	}

	deleted, err := s.repo.DeleteByUser(ctx, s.db, id.Int64())
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.log.Info("subscription cancelled", zap.Int64("user_id", id.Int64()))
	return nil
}

func toResponse(sub *domain.Subscription) domain.Response {
	return domain.Response{
		ID:                    snowflake.ID(sub.ID).String(),
		UserID:                snowflake.ID(sub.UserID).String(),
		PlanID:                snowflake.ID(sub.PlanID).String(),
		StartedAt:             sub.StartedAt,
		ExpiresAt:             sub.ExpiresAt,
		ResumeCount:           sub.ResumeCount,
		VideoRequestCount:     sub.VideoRequestCount,
		JobPostCount:          sub.JobPostCount,
		ResetAt:               sub.ResetAt,
		VideoRequestExpiresAt: sub.VideoRequestExpiresAt,
		CreatedAt:             sub.CreatedAt,
		UpdatedAt:             sub.UpdatedAt,
	}
}
