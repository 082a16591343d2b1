package service

import (
	"context"
	"testing"

	"terrascore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func companySignup(username, email string) SubmitRegistrationInput {
	return SubmitRegistrationInput{
		Username:    username,
		Email:       email,
		Password:    "secret123",
		Role:        "user",
		CompanyName: "Iron Ridge Mining Ltd",
		Address:     "14 Quarry Rd, Kalgoorlie",
	}
}

func TestApprovalService_Submit(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()

	req, err := svc.Submit(ctx, companySignup("iron_ridge", "contact@ironridge.com"))
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.False(t, req.RequestedAt.IsZero())

	// The ledger stores a bcrypt hash, never the plaintext.
	var stored models.RegistrationRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))

	// No user account exists until an admin approves.
	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Zero(t, userCount)
}

func TestApprovalService_SubmitValidation(t *testing.T) {
	svc, _ := newApprovalService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SubmitRegistrationInput)
	}{
		{"Bad username", func(in *SubmitRegistrationInput) { in.Username = "x" }},
		{"Bad email", func(in *SubmitRegistrationInput) { in.Email = "not-an-email" }},
		{"Short password", func(in *SubmitRegistrationInput) { in.Password = "short" }},
		{"Unknown role", func(in *SubmitRegistrationInput) { in.Role = "superuser" }},
		{"Admin role refused", func(in *SubmitRegistrationInput) { in.Role = "admin" }},
		{"Company role needs company name", func(in *SubmitRegistrationInput) { in.CompanyName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := companySignup("valid_user", "valid@example.com")
			tt.mutate(&in)
			_, err := svc.Submit(ctx, in)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestApprovalService_SubmitAuditorWithoutCompany(t *testing.T) {
	svc, _ := newApprovalService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitRegistrationInput{
		Username: "esg_auditor",
		Email:    "auditor@esgfirm.com",
		Password: "secret123",
		Role:     "auditor",
	})
	require.NoError(t, err)
}

func TestApprovalService_SubmitConflicts(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()

	seedAdmin(t, db)

	// Existing account blocks reuse of its username or email.
	_, err := svc.Submit(ctx, companySignup("root_admin", "fresh@example.com"))
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	_, err = svc.Submit(ctx, companySignup("fresh_user", "root@terrascore.io"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// A pending request blocks duplicates, but a decided one does not.
	_, err = svc.Submit(ctx, companySignup("pending_user", "pending@example.com"))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, companySignup("pending_user", "other@example.com"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestApprovalService_ApproveCompanyAccount(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)

	req, err := svc.Submit(ctx, companySignup("iron_ridge", "contact@ironridge.com"))
	require.NoError(t, err)

	account, err := svc.Approve(ctx, req.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "iron_ridge", account.Username)
	assert.Equal(t, models.RoleUser, account.Role)

	// The credential hash is copied verbatim from the ledger.
	var user models.User
	require.NoError(t, db.First(&user, account.UserID).Error)
	var stored models.RegistrationRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, stored.PasswordHash, user.Password)

	// Company profile is created and linked.
	var company models.Company
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&company).Error)
	assert.Equal(t, "Iron Ridge Mining Ltd", company.CompanyName)

	// Audit trail is written.
	assert.Equal(t, models.RequestStatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, admin.ID, *stored.ReviewedBy)
	require.NotNil(t, stored.ReviewedAt)
}

func TestApprovalService_ApproveAuditorSkipsCompany(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)

	req, err := svc.Submit(ctx, SubmitRegistrationInput{
		Username: "esg_auditor",
		Email:    "auditor@esgfirm.com",
		Password: "secret123",
		Role:     "auditor",
	})
	require.NoError(t, err)

	account, err := svc.Approve(ctx, req.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuditor, account.Role)

	var companyCount int64
	require.NoError(t, db.Model(&models.Company{}).Count(&companyCount).Error)
	assert.Zero(t, companyCount)
}

func TestApprovalService_ApproveIsTerminal(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)

	req, err := svc.Submit(ctx, companySignup("iron_ridge", "contact@ironridge.com"))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, req.ID, admin.ID)
	require.NoError(t, err)

	// Approving or rejecting a decided request reports not found.
	var appErr *models.AppError
	_, err = svc.Approve(ctx, req.ID, admin.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	err = svc.Reject(ctx, req.ID, admin.ID, "changed my mind")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// Exactly one account was created.
	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Where("role <> ?", models.RoleAdmin).Count(&userCount).Error)
	assert.Equal(t, int64(1), userCount)
}

func TestApprovalService_ApproveRollsBackOnFailure(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)

	req, err := svc.Submit(ctx, companySignup("iron_ridge", "contact@ironridge.com"))
	require.NoError(t, err)

	// Sabotage the company insert so the transaction fails midway.
	require.NoError(t, db.Migrator().DropTable(&models.Company{}))

	_, err = svc.Approve(ctx, req.ID, admin.ID)
	require.Error(t, err)

	// Nothing from the failed decision may persist.
	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "iron_ridge").Count(&userCount).Error)
	assert.Zero(t, userCount)

	var stored models.RegistrationRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.RequestStatusPending, stored.Status)
}

func TestApprovalService_ApproveDetectsClaimedIdentity(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)

	// Two pending requests sharing an email can coexist in the ledger, but
	// only the first approval may create the account.
	first, err := svc.Submit(ctx, companySignup("miner_one", "shared@example.com"))
	require.NoError(t, err)
	second := &models.RegistrationRequest{
		Username:     "miner_two",
		Email:        "shared@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         models.RoleUser,
		CompanyName:  "Second Mine Pty",
		Status:       models.RequestStatusPending,
		RequestedAt:  first.RequestedAt,
	}
	require.NoError(t, db.Create(second).Error)

	_, err = svc.Approve(ctx, first.ID, admin.ID)
	require.NoError(t, err)

	var appErr *models.AppError
	_, err = svc.Approve(ctx, second.ID, admin.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// The losing request stays pending for the admin to reject explicitly.
	var stored models.RegistrationRequest
	require.NoError(t, db.First(&stored, second.ID).Error)
	assert.Equal(t, models.RequestStatusPending, stored.Status)
}

func TestApprovalService_Reject(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)

	req, err := svc.Submit(ctx, companySignup("iron_ridge", "contact@ironridge.com"))
	require.NoError(t, err)

	// A reason is mandatory.
	var appErr *models.AppError
	err = svc.Reject(ctx, req.ID, admin.ID, "   ")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	require.NoError(t, svc.Reject(ctx, req.ID, admin.ID, "company registry lookup failed"))

	var stored models.RegistrationRequest
	require.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.RequestStatusRejected, stored.Status)
	assert.Equal(t, "company registry lookup failed", stored.RejectionReason)

	// Rejection never creates an account.
	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "iron_ridge").Count(&userCount).Error)
	assert.Zero(t, userCount)
}

func TestApprovalService_StatusByEmail(t *testing.T) {
	svc, db := newApprovalService(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)

	req, err := svc.Submit(ctx, companySignup("iron_ridge", "contact@ironridge.com"))
	require.NoError(t, err)

	status, err := svc.StatusByEmail(ctx, "contact@ironridge.com")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, status.Status)
	assert.Empty(t, status.RejectionReason)

	require.NoError(t, svc.Reject(ctx, req.ID, admin.ID, "unverifiable address"))

	status, err = svc.StatusByEmail(ctx, "contact@ironridge.com")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, status.Status)
	assert.Equal(t, "unverifiable address", status.RejectionReason)

	// After a rejection the applicant can submit again; the newest request wins.
	_, err = svc.Submit(ctx, companySignup("iron_ridge", "contact@ironridge.com"))
	require.NoError(t, err)
	status, err = svc.StatusByEmail(ctx, "contact@ironridge.com")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, status.Status)

	var appErr *models.AppError
	_, err = svc.StatusByEmail(ctx, "unknown@example.com")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
