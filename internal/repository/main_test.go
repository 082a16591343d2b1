package repository

import (
	"testing"
	"time"

	"terrascore/internal/database"
	"terrascore/internal/models"

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

func seedUser(t *testing.T, db *gorm.DB, username, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    email,
		Password: "$2a$10$abcdefghijklmnopqrstuv",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedRegistrationRequest(t *testing.T, db *gorm.DB, username, email string, status models.RequestStatus, requestedAt time.Time) *models.RegistrationRequest {
	t.Helper()
	req := &models.RegistrationRequest{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         models.RoleUser,
		CompanyName:  "Andes Copper SA",
		Address:      "Antofagasta, Chile",
		Status:       status,
		RequestedAt:  requestedAt,
	}
	require.NoError(t, db.Create(req).Error)
	return req
}
