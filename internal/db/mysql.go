package db

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"glaminator/internal/logger"
	"glaminator/internal/model"
)

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Migrate brings the schema up to date. When reset is set every table is
// dropped first, children before parents.
func Migrate(ctx context.Context, db *gorm.DB, log *logger.Logger, reset bool) error {
	tables := model.All()
	m := db.WithContext(ctx).Migrator()

	if reset {
		log.Warn("RESET_DB set, dropping all tables")
		for i := len(tables) - 1; i >= 0; i-- {
			if err := m.DropTable(tables[i]); err != nil {
				log.Warn("drop table failed", "error", err)
			}
		}
	}

	if err := db.WithContext(ctx).AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
