package infra

import (
	"fmt"

	"klikpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches GORM
// cannot express (check constraints, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

// RunMigrations creates the schema. Shared by the server and integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL. Each statement is guarded so
// re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open session per user. AutoMigrate creates it from the model tag;
		// kept here so a schema created before the tag existed is fixed too.
		{"open session per user", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_cash_sessions_open_user
    ON cash_sessions (user_id) WHERE status = 'open'`},
		{"cash_sessions status check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_cash_sessions_status') THEN
    ALTER TABLE cash_sessions
      ADD CONSTRAINT chk_cash_sessions_status CHECK (status IN ('open', 'closed'));
  END IF;
END $$`},
		{"sales_invoices status check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_invoices_status') THEN
    ALTER TABLE sales_invoices
      ADD CONSTRAINT chk_sales_invoices_status CHECK (status IN ('draft', 'submitted'));
  END IF;
END $$`},
		// partial index for the retry cron query
		{"notification retry index", `
CREATE INDEX IF NOT EXISTS idx_notification_logs_pending_retry
    ON notification_logs (next_retry_at)
    WHERE status = 'failed' AND next_retry_at IS NOT NULL`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
