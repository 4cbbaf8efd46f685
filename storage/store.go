package storage

import (
	"context"
	"errors"

	"travel-planner-server/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the active backend, selected by STORE_DRIVER at startup.
var Store Repository

// PlanQuery selects one page of a user's plans, newest update first.
type PlanQuery struct {
	Page   int
	Limit  int
	Search string
}

func (q PlanQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Repository is implemented by the gorm and mongo stores. Every plan lookup is
// scoped to its owner; a plan owned by someone else is reported as ErrNotFound.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	ListPlans(ctx context.Context, userID string, q PlanQuery) ([]models.TravelPlan, int64, error)
	FindPlan(ctx context.Context, id, userID string) (*models.TravelPlan, error)
	CreatePlan(ctx context.Context, plan *models.TravelPlan) error
	SavePlan(ctx context.Context, plan *models.TravelPlan) error
	DeletePlan(ctx context.Context, id, userID string) error

	RecordAudit(ctx context.Context, entry *models.AuditLog) error
	ListAudit(ctx context.Context, userID string, limit int) ([]models.AuditLog, error)

	Close() error
}
