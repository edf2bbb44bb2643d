package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/plan/domain"
	"github.com/hireloop/hireloop/pkg/db/option"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans
		   (id, code, name,
		    resume_access, profile_video_request, job_posting, skill_location_filters, match_candidates_emailing,
		    resume_limit, profile_video_limit, job_post_limit,
		    duration_value, duration_unit, active, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.Code,
		plan.Name,
		plan.ResumeAccess,
		plan.ProfileVideoRequest,
		plan.JobPosting,
		plan.SkillLocationFilters,
		plan.MatchCandidatesEmailing,
		plan.ResumeLimit,
		plan.ProfileVideoLimit,
		plan.JobPostLimit,
		plan.DurationValue,
		plan.DurationUnit,
		plan.Active,
		plan.Metadata,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	if plan == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE plans
		 SET name = ?,
		     resume_access = ?, profile_video_request = ?, job_posting = ?,
		     skill_location_filters = ?, match_candidates_emailing = ?,
		     resume_limit = ?, profile_video_limit = ?, job_post_limit = ?,
		     duration_value = ?, duration_unit = ?, active = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		plan.Name,
		plan.ResumeAccess,
		plan.ProfileVideoRequest,
		plan.JobPosting,
		plan.SkillLocationFilters,
		plan.MatchCandidatesEmailing,
		plan.ResumeLimit,
		plan.ProfileVideoLimit,
		plan.JobPostLimit,
		plan.DurationValue,
		plan.DurationUnit,
		plan.Active,
		plan.Metadata,
		plan.UpdatedAt,
		plan.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Plan, error) {
	var p domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM plans WHERE id = ?`, id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Plan, error) {
	var p domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM plans WHERE code = ?`, code,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Plan, error) {
	var items []domain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM plans ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// List applies optional filters through the query-option helpers.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Plan, error) {
	var items []domain.Plan
	stmt := db.WithContext(ctx).Model(&domain.Plan{})

	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	stmt = option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"code":       true,
	}).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
