package seed

import (
	"fmt"
	"log"
	"time"

	"terrascore/internal/models"

	"gorm.io/gorm"
)

// Demo fills the database with randomized registration requests in various
// lifecycle states, for local development and front-end work.
func Demo(db *gorm.DB, pending, decided int) error {
	var admin models.User
	if err := db.Where("role = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return fmt.Errorf("demo seed needs an admin account (enable DEV_BOOTSTRAP_ROOT): %w", err)
	}

	for i := 0; i < pending; i++ {
		if err := db.Create(FakeRegistrationRequest()).Error; err != nil {
			return fmt.Errorf("seeding pending request: %w", err)
		}
	}

	for i := 0; i < decided; i++ {
		req := FakeRegistrationRequest()
		now := time.Now().UTC()
		req.ReviewedAt = &now
		req.ReviewedBy = &admin.ID

		if i%2 == 0 {
			req.Status = models.RequestStatusRejected
			req.RejectionReason = "demo: rejected during seeding"
			if err := db.Create(req).Error; err != nil {
				return fmt.Errorf("seeding rejected request: %w", err)
			}
			continue
		}

		req.Status = models.RequestStatusApproved
		if err := db.Create(req).Error; err != nil {
			return fmt.Errorf("seeding approved request: %w", err)
		}
		user := models.User{
			Username: req.Username,
			Email:    req.Email,
			Password: req.PasswordHash,
			Role:     req.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seeding approved account: %w", err)
		}
		if req.Role == models.RoleUser {
			company := models.Company{
				CompanyName:      req.CompanyName,
				Address:          req.Address,
				RegistrationDate: now,
				UserID:           user.ID,
			}
			if err := db.Create(&company).Error; err != nil {
				return fmt.Errorf("seeding company profile: %w", err)
			}
		}
	}

	log.Printf("seeded %d pending and %d decided registration requests", pending, decided)
	return nil
}
