package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"merchquote/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the SQL objects GORM cannot express
// (the quote number sequence).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates / updates all tables. Also used by integration tests
// against a disposable database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Operator{},
		&model.QuoteRecord{},
		&model.QuoteLineRecord{},
		&model.QuoteLineAddonRecord{},
		&model.Letterhead{},
		&model.Setting{},
		&model.ExportRecord{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := db.Exec(`CREATE SEQUENCE IF NOT EXISTS quote_number_seq`).Error; err != nil {
		return fmt.Errorf("quote_number_seq: %w", err)
	}
	return nil
}
