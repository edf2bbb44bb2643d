package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/clock"
	"github.com/hireloop/hireloop/internal/plan/domain"
	pkgdb "github.com/hireloop/hireloop/pkg/db"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    domain.Repository
	Catalog domain.CatalogRefresher
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	repo    domain.Repository
	catalog domain.CatalogRefresher
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("plan.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		repo:    p.Repo,
		catalog: p.Catalog,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = name
	}
	code = slug.Make(code)

	if err := validateLimits(req.ResumeLimit, req.ProfileVideoLimit, req.JobPostLimit); err != nil {
		return nil, err
	}

	durationValue := req.DurationValue
	if durationValue == 0 {
		durationValue = 1
	}
	durationUnit, err := normalizeDurationUnit(req.DurationUnit)
	if err != nil {
		return nil, err
	}
	if durationValue < 0 {
		return nil, domain.ErrInvalidDuration
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	p := &domain.Plan{
		ID:                      s.genID.Generate().Int64(),
		Code:                    code,
		Name:                    name,
		ResumeAccess:            req.ResumeAccess,
		ProfileVideoRequest:     req.ProfileVideoRequest,
		JobPosting:              req.JobPosting,
		SkillLocationFilters:    req.SkillLocationFilters,
		MatchCandidatesEmailing: req.MatchCandidatesEmailing,
		ResumeLimit:             req.ResumeLimit,
		ProfileVideoLimit:       req.ProfileVideoLimit,
		JobPostLimit:            req.JobPostLimit,
		DurationValue:           durationValue,
		DurationUnit:            durationUnit,
		Active:                  active,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}

	s.refreshCatalog(ctx)

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		Active:  req.Active,
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, planID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, planID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.ResumeAccess != nil {
		item.ResumeAccess = *req.ResumeAccess
	}
	if req.ProfileVideoRequest != nil {
		item.ProfileVideoRequest = *req.ProfileVideoRequest
	}
	if req.JobPosting != nil {
		item.JobPosting = *req.JobPosting
	}
	if req.SkillLocationFilters != nil {
		item.SkillLocationFilters = *req.SkillLocationFilters
	}
	if req.MatchCandidatesEmailing != nil {
		item.MatchCandidatesEmailing = *req.MatchCandidatesEmailing
	}
	if req.ResumeLimit != nil {
		item.ResumeLimit = req.ResumeLimit
	}
	if req.ClearResumeLimit {
		item.ResumeLimit = nil
	}
	if req.ProfileVideoLimit != nil {
		item.ProfileVideoLimit = req.ProfileVideoLimit
	}
	if req.ClearProfileVideoLimit {
		item.ProfileVideoLimit = nil
	}
	if req.JobPostLimit != nil {
		item.JobPostLimit = req.JobPostLimit
	}
	if req.ClearJobPostLimit {
		item.JobPostLimit = nil
	}
	if err := validateLimits(item.ResumeLimit, item.ProfileVideoLimit, item.JobPostLimit); err != nil {
		return nil, err
	}
	if req.DurationValue != nil {
		if *req.DurationValue <= 0 {
			return nil, domain.ErrInvalidDuration
		}
		item.DurationValue = *req.DurationValue
	}
	if req.DurationUnit != nil {
		unit, err := normalizeDurationUnit(*req.DurationUnit)
		if err != nil {
			return nil, err
		}
		item.DurationUnit = unit
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.refreshCatalog(ctx)

	resp := s.toResponse(item)
	return &resp, nil
}

// refreshCatalog republishes the cache after a mutation. The write already
// succeeded, so a refresh failure is logged and the stale map keeps serving.
func (s *Service) refreshCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Refresh(ctx); err != nil {
		s.log.Warn("catalog refresh after plan mutation failed", zap.Error(err))
	}
}

func (s *Service) toResponse(p *domain.Plan) domain.Response {
	resp := domain.Response{
		ID:                      snowflake.ID(p.ID).String(),
		Code:                    p.Code,
		Name:                    p.Name,
		ResumeAccess:            p.ResumeAccess,
		ProfileVideoRequest:     p.ProfileVideoRequest,
		JobPosting:              p.JobPosting,
		SkillLocationFilters:    p.SkillLocationFilters,
		MatchCandidatesEmailing: p.MatchCandidatesEmailing,
		ResumeLimit:             p.ResumeLimit,
		ProfileVideoLimit:       p.ProfileVideoLimit,
		JobPostLimit:            p.JobPostLimit,
		DurationValue:           p.DurationValue,
		DurationUnit:            p.DurationUnit,
		Active:                  p.Active,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}
	return resp
}

func validateLimits(limits ...*int64) error {
	for _, limit := range limits {
		if limit != nil && *limit < 0 {
			return domain.ErrInvalidLimit
		}
	}
	return nil
}

func normalizeDurationUnit(unit string) (string, error) {
	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "":
		return "month", nil
	case "day", "month", "year":
		return unit, nil
	default:
		return "", domain.ErrInvalidDuration
	}
}
