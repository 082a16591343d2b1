// Package bootstrap wires runtime dependencies for the application commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"terrascore/internal/cache"
	"terrascore/internal/config"
	"terrascore/internal/database"
	"terrascore/internal/models"
	"terrascore/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedQuestionnaires bool
}

// InitRuntime connects to DB and Redis and optionally seeds the built-in
// questionnaire library.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// May leave the client nil if Redis is unreachable.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedQuestionnaires {
		if err := seed.Questionnaires(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in questionnaires: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevRootAdmin creates the development admin account so that the
// approval workflow can be exercised on a fresh database. Accounts are
// otherwise only created by admin approval, which needs an admin to exist.
func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "terrascore_root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@terrascore.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
				Role:     models.RoleAdmin,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			if err := tx.Model(&models.User{}).Where("id = ?", root.ID).
				Update("role", models.RoleAdmin).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	log.Printf("development root admin bootstrap ensured (%s)", email)
	return nil
}
