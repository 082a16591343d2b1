// Package database manages the GORM connection and schema migration.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"terrascore/internal/config"
	"terrascore/internal/middleware"
	"terrascore/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CustomGormLogger bridges GORM's logger onto the application's slog logger.
type CustomGormLogger struct {
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
}

func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		middleware.Logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		middleware.Logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		middleware.Logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && err != gorm.ErrRecordNotFound && l.LogLevel >= logger.Error:
		fields = append(fields, slog.String("error", err.Error()))
		middleware.Logger.ErrorContext(ctx, "database query failed", fields...)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		middleware.Logger.WarnContext(ctx, "slow database query", fields...)
	case l.LogLevel >= logger.Info:
		middleware.Logger.DebugContext(ctx, "database query", fields...)
	}
}

// Connect opens the Postgres connection, configures pooling and runs schema
// migration outside production.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	gormLogger := &CustomGormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      logger.Warn,
	}
	if !cfg.IsProduction() {
		gormLogger.LogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("acquiring database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Schema is owned by migrations in production deployments.
	if !cfg.IsProduction() {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	middleware.Logger.Info("database connection established",
		slog.String("host", cfg.DBHost),
		slog.String("database", cfg.DBName),
	)

	return db, nil
}

// Migrate applies the GORM schema for all application models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.RegistrationRequest{},
		&models.AccountRequest{},
		&models.Questionnaire{},
		&models.Question{},
	); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
