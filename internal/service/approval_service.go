// Package service implements the business logic layer for the application.
package service

import (
	"context"
	"log/slog"
	"time"

	"terrascore/internal/cache"
	"terrascore/internal/middleware"
	"terrascore/internal/models"
	"terrascore/internal/repository"
	"terrascore/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovalService implements the registration request lifecycle: submission,
// status lookup, and the admin approve/reject decisions. Approval is the only
// path that creates user accounts from self-service signups.
type ApprovalService struct {
	db          *gorm.DB
	requestRepo repository.RegistrationRequestRepository
	userRepo    repository.UserRepository
}

// NewApprovalService returns a new ApprovalService.
func NewApprovalService(db *gorm.DB, requestRepo repository.RegistrationRequestRepository, userRepo repository.UserRepository) *ApprovalService {
	return &ApprovalService{
		db:          db,
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// SubmitRegistrationInput carries a self-service signup submission.
type SubmitRegistrationInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
}

// ApprovedAccount is the summary returned once an account has been created.
type ApprovedAccount struct {
	UserID   uint        `json:"userId"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// RegistrationStatus is the applicant-facing view of their latest request.
type RegistrationStatus struct {
	Status          models.RequestStatus `json:"status"`
	RequestedAt     time.Time            `json:"requested_at"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
}

// Submit validates a signup and records it as a pending registration request.
// The password is hashed immediately; plaintext never reaches the ledger.
func (s *ApprovalService) Submit(ctx context.Context, in SubmitRegistrationInput) (*models.RegistrationRequest, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		return nil, models.NewValidationError("admin accounts cannot be requested through registration")
	}
	if role == models.RoleUser && in.CompanyName == "" {
		return nil, models.NewValidationError("company_name is required for company accounts")
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("Username or email already in use")
	}

	hasPending, err := s.requestRepo.HasPendingByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, models.NewConflictError("A registration request for this username or email is already pending")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	req := &models.RegistrationRequest{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		CompanyName:  in.CompanyName,
		Address:      in.Address,
		Status:       models.RequestStatusPending,
		RequestedAt:  time.Now().UTC(),
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "registration request submitted",
		slog.Any("request_id", req.ID),
		slog.String("username", req.Username),
		slog.String("role", string(req.Role)),
	)
	return req, nil
}

// StatusByEmail returns the applicant-facing status of the most recent
// request for the email.
func (s *ApprovalService) StatusByEmail(ctx context.Context, email string) (*RegistrationStatus, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	req, err := s.requestRepo.LatestByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, models.NewNotFoundError("Registration request", 0)
	}

	status := &RegistrationStatus{
		Status:      req.Status,
		RequestedAt: req.RequestedAt,
	}
	if req.Status == models.RequestStatusRejected {
		status.RejectionReason = req.RejectionReason
	}
	return status, nil
}

// List returns requests pending-first, newest submissions on top within each status.
func (s *ApprovalService) List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]models.RegistrationRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.requestRepo.List(ctx, status, limit, offset)
}

// Stats returns the per-status request counts for the admin dashboard.
func (s *ApprovalService) Stats(ctx context.Context) (*models.RequestStats, error) {
	return s.requestRepo.Stats(ctx)
}

// Approve turns a pending request into a live account in one transaction:
// lock the request row, re-check uniqueness against users, create the user
// with the stored hash, create the company for company-role requests, and
// mark the request approved. Any failure rolls back the whole decision.
func (s *ApprovalService) Approve(ctx context.Context, requestID, reviewerID uint) (*ApprovedAccount, error) {
	var account *ApprovedAccount

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.RegistrationRequest
		if err := lockForUpdate(tx).First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return models.NewNotFoundError("Registration request", requestID)
			}
			return models.NewInternalError(err)
		}
		if req.Status != models.RequestStatusPending {
			return models.NewNotFoundError("Pending registration request", requestID)
		}

		// The username or email may have been claimed since submission,
		// by another approval or by the bootstrap.
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", req.Username, req.Email).
			Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count > 0 {
			return models.NewConflictError("Username or email was claimed while the request was pending")
		}

		user := models.User{
			Username: req.Username,
			Email:    req.Email,
			Password: req.PasswordHash,
			Role:     req.Role,
		}
		if err := tx.Create(&user).Error; err != nil {
			if repository.IsUniqueConstraintError(err) {
				return models.NewConflictError("Username or email was claimed while the request was pending")
			}
			return models.NewInternalError(err)
		}

		if req.Role == models.RoleUser {
			company := models.Company{
				CompanyName:      req.CompanyName,
				Address:          req.Address,
				RegistrationDate: time.Now().UTC(),
				UserID:           user.ID,
			}
			if err := tx.Create(&company).Error; err != nil {
				return models.NewInternalError(err)
			}
		}

		now := time.Now().UTC()
		res := tx.Model(&models.RegistrationRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
			Updates(map[string]any{
				"status":      models.RequestStatusApproved,
				"reviewed_at": now,
				"reviewed_by": reviewerID,
			})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Pending registration request", requestID)
		}

		account = &ApprovedAccount{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		}
		return nil
	})
	if err != nil {
		middleware.ApprovalDecisions.WithLabelValues("registration", "approve_failed").Inc()
		return nil, err
	}

	cache.InvalidateRegistrationStats(ctx)
	middleware.ApprovalDecisions.WithLabelValues("registration", "approved").Inc()
	middleware.Logger.InfoContext(ctx, "registration request approved",
		slog.Any("request_id", requestID),
		slog.Any("user_id", account.UserID),
		slog.Any("reviewer_id", reviewerID),
	)
	return account, nil
}

// Reject marks a pending request rejected with the given reason.
func (s *ApprovalService) Reject(ctx context.Context, requestID, reviewerID uint, reason string) error {
	if err := validation.ValidateRejectionReason(reason); err != nil {
		return err
	}
	if err := s.requestRepo.MarkRejected(ctx, requestID, reviewerID, reason, time.Now().UTC()); err != nil {
		return err
	}

	middleware.ApprovalDecisions.WithLabelValues("registration", "rejected").Inc()
	middleware.Logger.InfoContext(ctx, "registration request rejected",
		slog.Any("request_id", requestID),
		slog.Any("reviewer_id", reviewerID),
	)
	return nil
}

// lockForUpdate takes a row lock on backends that support it. SQLite
// serializes writers on its own and rejects the FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
