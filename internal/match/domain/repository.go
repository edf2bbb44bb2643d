package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// CreateIfAbsent inserts the record unless the triple already exists.
	// On conflict nothing is written and no error is returned.
	CreateIfAbsent(ctx context.Context, db *gorm.DB, app *Application) error
	FindByTriple(ctx context.Context, db *gorm.DB, candidateID, organizationID, jobID int64) (*Application, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Application, error)
	Update(ctx context.Context, db *gorm.DB, app *Application) error
}

// ReferenceChecker verifies that the entities a signal points at exist.
// The CRUD surface owning those tables lives outside this service.
type ReferenceChecker interface {
	CandidateExists(ctx context.Context, id int64) (bool, error)
	OrganizationExists(ctx context.Context, id int64) (bool, error)
	JobExists(ctx context.Context, id int64) (bool, error)
	ResumeExists(ctx context.Context, id int64) (bool, error)
}
