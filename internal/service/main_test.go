package service

import (
	"testing"

	"terrascore/internal/database"
	"terrascore/internal/models"
	"terrascore/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func newApprovalService(t *testing.T) (*ApprovalService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewApprovalService(db,
		repository.NewRegistrationRequestRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db
}

func newAccountService(t *testing.T) (*AccountService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewAccountService(db,
		repository.NewAccountRequestRepository(db),
		repository.NewUserRepository(db),
	)
	return svc, db
}

func seedAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	admin := &models.User{
		Username: "root_admin",
		Email:    "root@terrascore.io",
		Password: "$2a$10$abcdefghijklmnopqrstuv",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}
