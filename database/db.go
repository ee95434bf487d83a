package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"media-intel/models"
)

// Open connects to a named in-memory SQLite database and migrates the dataset
// tables. The database lives as long as the process; nothing is written to disk.
func Open(name string, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	// a single connection keeps the shared in-memory database alive and serialises writes
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Dataset{}, &models.MentionRow{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if log != nil {
		log.Info("database ready", zap.String("name", name))
	}
	return db, nil
}

// Close releases the underlying connection, which drops the in-memory data.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
