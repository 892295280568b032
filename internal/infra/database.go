package infra

import (
	"fmt"

	"novapos/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the SQLite file backing the local store and creates the
// key/value table if needed. ":memory:" gives a throwaway database.
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection also keeps ":memory:"
	// pointing at one database.
	sqlDB.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		return nil, fmt.Errorf("pragmas: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}
	return db, nil
}

func applyPragmas(db *gorm.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if err := db.Exec(p).Error; err != nil {
			return fmt.Errorf("%q: %w", p, err)
		}
	}
	return nil
}

// RunMigrations creates the local store schema.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(&model.RegistroKV{})
}
