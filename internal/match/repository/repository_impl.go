package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hireloop/hireloop/internal/match/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateIfAbsent(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "candidate_id"},
				{Name: "organization_id"},
				{Name: "job_id"},
			},
			DoNothing: true,
		}).
		Create(app).Error
}

func (r *repo) FindByTriple(ctx context.Context, db *gorm.DB, candidateID, organizationID, jobID int64) (*domain.Application, error) {
	var a domain.Application
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM applications
		 WHERE candidate_id = ? AND organization_id = ? AND job_id = ?`,
		candidateID,
		organizationID,
		jobID,
	).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, nil
	}
	return &a, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Application, error) {
	var a domain.Application
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM applications WHERE id = ?`, id,
	).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, nil
	}
	return &a, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	if app == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE applications
		 SET resume_id = ?, candidate_interested = ?, organization_interested = ?,
		     status = ?, video_url = ?, updated_at = ?, expired_at = ?
		 WHERE id = ?`,
		app.ResumeID,
		app.CandidateInterested,
		app.OrganizationInterested,
		app.Status,
		app.VideoURL,
		app.UpdatedAt,
		app.ExpiredAt,
		app.ID,
	).Error
}
