package repository

import (
	"context"
	"errors"
	"time"

	"terrascore/internal/cache"
	"terrascore/internal/models"

	"gorm.io/gorm"
)

// Requests are listed pending-first so reviewers see actionable work at the
// top, newest submissions first within each status.
const statusPriorityOrder = "CASE status WHEN 'pending' THEN 1 WHEN 'approved' THEN 2 ELSE 3 END, requested_at DESC"

// RegistrationRequestRepository defines persistence operations for the
// registration request ledger.
type RegistrationRequestRepository interface {
	Create(ctx context.Context, req *models.RegistrationRequest) error
	GetByID(ctx context.Context, id uint) (*models.RegistrationRequest, error)
	List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]models.RegistrationRequest, error)
	LatestByEmail(ctx context.Context, email string) (*models.RegistrationRequest, error)
	HasPendingByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	MarkRejected(ctx context.Context, id, reviewerID uint, reason string, at time.Time) error
	Stats(ctx context.Context) (*models.RequestStats, error)
}

type registrationRequestRepository struct {
	db *gorm.DB
}

// NewRegistrationRequestRepository returns a new RegistrationRequestRepository implementation.
func NewRegistrationRequestRepository(db *gorm.DB) RegistrationRequestRepository {
	return &registrationRequestRepository{db: db}
}

func (r *registrationRequestRepository) Create(ctx context.Context, req *models.RegistrationRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRegistrationStats(ctx)
	return nil
}

func (r *registrationRequestRepository) GetByID(ctx context.Context, id uint) (*models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Registration request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *registrationRequestRepository) List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]models.RegistrationRequest, error) {
	var reqs []models.RegistrationRequest
	q := r.db.WithContext(ctx).Model(&models.RegistrationRequest{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order(statusPriorityOrder).Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

// LatestByEmail returns the most recently submitted request for the email,
// regardless of status, or nil when the email has never applied.
func (r *registrationRequestRepository) LatestByEmail(ctx context.Context, email string) (*models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("requested_at DESC, id DESC").
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *registrationRequestRepository) HasPendingByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RegistrationRequest{}).
		Where("status = ?", models.RequestStatusPending).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// MarkRejected transitions a pending request to rejected. The status predicate
// makes the update a no-op when the request was already decided, which is
// reported as not found.
func (r *registrationRequestRepository) MarkRejected(ctx context.Context, id, reviewerID uint, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.RegistrationRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Updates(map[string]any{
			"status":           models.RequestStatusRejected,
			"rejection_reason": reason,
			"reviewed_at":      at,
			"reviewed_by":      reviewerID,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Pending registration request", id)
	}
	cache.InvalidateRegistrationStats(ctx)
	return nil
}

// Stats is served through the cache with a short TTL; writes invalidate it so
// the dashboard counts stay close to live.
func (r *registrationRequestRepository) Stats(ctx context.Context) (*models.RequestStats, error) {
	stats := &models.RequestStats{}

	err := cache.Aside(ctx, cache.RegistrationStatsKey, stats, cache.StatsTTL, func() error {
		counts := []struct {
			status models.RequestStatus
			dest   *int64
		}{
			{models.RequestStatusPending, &stats.Pending},
			{models.RequestStatusApproved, &stats.Approved},
			{models.RequestStatusRejected, &stats.Rejected},
		}
		for _, c := range counts {
			if err := r.db.WithContext(ctx).Model(&models.RegistrationRequest{}).
				Where("status = ?", c.status).
				Count(c.dest).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		stats.Total = stats.Pending + stats.Approved + stats.Rejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
