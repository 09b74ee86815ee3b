package infra

import (
	"fmt"

	"supplieriq/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx.
// Schema changes are applied separately through RunMigrations.
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

	return db, nil
}

// RunMigrations creates or updates every table with AutoMigrate, then applies
// the PostgreSQL-only constraints and indexes GORM tags cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// schemaPatch is one idempotent DDL statement guarded by an existence check.
type schemaPatch struct{ descr, sql string }

var schemaPatches = []schemaPatch{
	{"check purchase_requests quantity/budget", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_purchase_requests_quantity_budget') THEN
    ALTER TABLE purchase_requests
      ADD CONSTRAINT chk_purchase_requests_quantity_budget CHECK (quantity > 0 AND budget >= 0);
  END IF;
END $$`},
	{"check supplier_ratings range", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_supplier_ratings_rating') THEN
    ALTER TABLE supplier_ratings
      ADD CONSTRAINT chk_supplier_ratings_rating CHECK (rating >= 0 AND rating <= 5);
  END IF;
END $$`},
	{"check supplier_suggestions score ranges", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_supplier_suggestions_scores') THEN
    ALTER TABLE supplier_suggestions
      ADD CONSTRAINT chk_supplier_suggestions_scores
      CHECK (match_score BETWEEN 0 AND 1 AND risk_score BETWEEN 0 AND 100 AND rank >= 1);
  END IF;
END $$`},
	// The pipeline's candidate query only ever touches active suppliers.
	{"partial index on active suppliers", `
CREATE INDEX IF NOT EXISTS idx_suppliers_active_category
    ON suppliers (category, name)
    WHERE is_active`},
	{"index purchase_requests by status", `
CREATE INDEX IF NOT EXISTS idx_purchase_requests_status
    ON purchase_requests (status, created_at)`},
}

func applySchemaPatches(db *gorm.DB) error {
	for _, p := range schemaPatches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
