package repository

import (
	"context"
	"errors"
	"time"

	"terrascore/internal/models"

	"gorm.io/gorm"
)

// AccountRequestRepository defines persistence operations for account
// requests backed by an affiliation proof document.
type AccountRequestRepository interface {
	Create(ctx context.Context, req *models.AccountRequest) error
	GetByID(ctx context.Context, id uint) (*models.AccountRequest, error)
	List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]models.AccountRequest, error)
	HasPendingByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	MarkRejected(ctx context.Context, id, reviewerID uint, notes string, at time.Time) error
}

type accountRequestRepository struct {
	db *gorm.DB
}

// NewAccountRequestRepository returns a new AccountRequestRepository implementation.
func NewAccountRequestRepository(db *gorm.DB) AccountRequestRepository {
	return &accountRequestRepository{db: db}
}

func (r *accountRequestRepository) Create(ctx context.Context, req *models.AccountRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *accountRequestRepository) GetByID(ctx context.Context, id uint) (*models.AccountRequest, error) {
	var req models.AccountRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *accountRequestRepository) List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]models.AccountRequest, error) {
	var reqs []models.AccountRequest
	q := r.db.WithContext(ctx).Model(&models.AccountRequest{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order(statusPriorityOrder).Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *accountRequestRepository) HasPendingByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccountRequest{}).
		Where("status = ?", models.RequestStatusPending).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *accountRequestRepository) MarkRejected(ctx context.Context, id, reviewerID uint, notes string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.AccountRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Updates(map[string]any{
			"status":      models.RequestStatusRejected,
			"admin_notes": notes,
			"reviewed_at": at,
			"reviewed_by": reviewerID,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Pending account request", id)
	}
	return nil
}
