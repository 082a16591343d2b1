package seed

import (
	"testing"

	"terrascore/internal/database"
	"terrascore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func TestQuestionnairesIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Questionnaires(db))
	require.NoError(t, Questionnaires(db))

	var count int64
	require.NoError(t, db.Model(&models.Questionnaire{}).Count(&count).Error)
	assert.Equal(t, int64(len(builtInQuestionnaires)), count)

	var gri models.Questionnaire
	require.NoError(t, db.Preload("Questions").Where("standard = ?", "GRI").First(&gri).Error)
	assert.NotEmpty(t, gri.Questions)
	for _, q := range gri.Questions {
		assert.True(t, q.Type.Valid())
		assert.Greater(t, q.Weight, 0.0)
		if q.Type == models.QuestionTypeMultipleChoice {
			assert.GreaterOrEqual(t, len(q.Options), 2)
		}
	}
}

func TestDemoNeedsAdmin(t *testing.T) {
	db := setupTestDB(t)

	require.Error(t, Demo(db, 1, 1))

	admin := models.User{
		Username: "root_admin",
		Email:    "root@terrascore.io",
		Password: demoPasswordHash,
		Role:     models.RoleAdmin,
	}
	require.NoError(t, db.Create(&admin).Error)

	require.NoError(t, Demo(db, 3, 4))

	var pending, reviewed int64
	require.NoError(t, db.Model(&models.RegistrationRequest{}).
		Where("status = ?", models.RequestStatusPending).Count(&pending).Error)
	require.NoError(t, db.Model(&models.RegistrationRequest{}).
		Where("status <> ?", models.RequestStatusPending).Count(&reviewed).Error)
	assert.Equal(t, int64(3), pending)
	assert.Equal(t, int64(4), reviewed)

	// Approved requests get a matching account row.
	var approved []models.RegistrationRequest
	require.NoError(t, db.Where("status = ?", models.RequestStatusApproved).Find(&approved).Error)
	for _, req := range approved {
		var user models.User
		require.NoError(t, db.Where("email = ?", req.Email).First(&user).Error)
		assert.Equal(t, req.Role, user.Role)
	}
}
