package service

import (
	"context"
	"log/slog"
	"time"

	"terrascore/internal/middleware"
	"terrascore/internal/models"
	"terrascore/internal/repository"
	"terrascore/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountService implements the affiliation-proof variant of signup: the
// requester uploads a document instead of choosing a password, and the admin
// sets the initial credentials when approving.
type AccountService struct {
	db          *gorm.DB
	requestRepo repository.AccountRequestRepository
	userRepo    repository.UserRepository
}

// NewAccountService returns a new AccountService.
func NewAccountService(db *gorm.DB, requestRepo repository.AccountRequestRepository, userRepo repository.UserRepository) *AccountService {
	return &AccountService{
		db:          db,
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// SubmitAccountInput carries an account request with its stored proof document.
type SubmitAccountInput struct {
	Username      string
	Email         string
	CompanyName   string
	ProofFileName string
	ProofPath     string
	ProofType     string
}

// ApproveAccountInput carries the credentials the admin assigns on approval.
type ApproveAccountInput struct {
	Password string `json:"password"`
	Role     string `json:"role"`
	Notes    string `json:"notes"`
}

// Submit validates and records a pending account request. The proof document
// has already been persisted by the transport layer.
func (s *AccountService) Submit(ctx context.Context, in SubmitAccountInput) (*models.AccountRequest, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if in.CompanyName == "" {
		return nil, models.NewValidationError("company_name is required")
	}
	if in.ProofFileName == "" || in.ProofPath == "" {
		return nil, models.NewValidationError("affiliation proof document is required")
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
		return nil, models.NewConflictError("An account request for this username or email is already pending")
	}

	req := &models.AccountRequest{
		Username:                 in.Username,
		Email:                    in.Email,
		CompanyName:              in.CompanyName,
		AffiliationProofFileName: in.ProofFileName,
		AffiliationProofPath:     in.ProofPath,
		AffiliationProofType:     in.ProofType,
		Status:                   models.RequestStatusPending,
		RequestedAt:              time.Now().UTC(),
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "account request submitted",
		slog.Any("request_id", req.ID),
		slog.String("username", req.Username),
	)
	return req, nil
}

// GetByID returns a single account request for admin review.
func (s *AccountService) GetByID(ctx context.Context, id uint) (*models.AccountRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

// List returns account requests pending-first.
func (s *AccountService) List(ctx context.Context, status *models.RequestStatus, limit, offset int) ([]models.AccountRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.requestRepo.List(ctx, status, limit, offset)
}

// Approve creates the account with admin-assigned credentials in one
// transaction mirroring the registration approval path.
func (s *AccountService) Approve(ctx context.Context, requestID, reviewerID uint, in ApproveAccountInput) (*ApprovedAccount, error) {
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = string(models.RoleUser)
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		return nil, models.NewValidationError("admin accounts cannot be created from account requests")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var account *ApprovedAccount

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.AccountRequest
		if err := lockForUpdate(tx).First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return models.NewNotFoundError("Account request", requestID)
			}
			return models.NewInternalError(err)
		}
		if req.Status != models.RequestStatusPending {
			return models.NewNotFoundError("Pending account request", requestID)
		}

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
			Password: string(hash),
			Role:     role,
		}
		if err := tx.Create(&user).Error; err != nil {
			if repository.IsUniqueConstraintError(err) {
				return models.NewConflictError("Username or email was claimed while the request was pending")
			}
			return models.NewInternalError(err)
		}

		if role == models.RoleUser {
			company := models.Company{
				CompanyName:      req.CompanyName,
				RegistrationDate: time.Now().UTC(),
				UserID:           user.ID,
			}
			if err := tx.Create(&company).Error; err != nil {
				return models.NewInternalError(err)
			}
		}

		now := time.Now().UTC()
		res := tx.Model(&models.AccountRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestStatusPending).
			Updates(map[string]any{
				"status":      models.RequestStatusApproved,
				"admin_notes": in.Notes,
				"reviewed_at": now,
				"reviewed_by": reviewerID,
			})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Pending account request", requestID)
		}

		account = &ApprovedAccount{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		}
		return nil
	})
	if txErr != nil {
		middleware.ApprovalDecisions.WithLabelValues("account", "approve_failed").Inc()
		return nil, txErr
	}

	middleware.ApprovalDecisions.WithLabelValues("account", "approved").Inc()
	middleware.Logger.InfoContext(ctx, "account request approved",
		slog.Any("request_id", requestID),
		slog.Any("user_id", account.UserID),
		slog.Any("reviewer_id", reviewerID),
	)
	return account, nil
}

// Reject marks a pending account request rejected with admin notes.
func (s *AccountService) Reject(ctx context.Context, requestID, reviewerID uint, notes string) error {
	if err := validation.ValidateRejectionReason(notes); err != nil {
		return err
	}
	if err := s.requestRepo.MarkRejected(ctx, requestID, reviewerID, notes, time.Now().UTC()); err != nil {
		return err
	}

	middleware.ApprovalDecisions.WithLabelValues("account", "rejected").Inc()
	return nil
}
