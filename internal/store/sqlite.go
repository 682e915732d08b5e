package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Resource is a single row of the SQLite store.
type Resource struct {
	Name  string `gorm:"primaryKey"`
	Value []byte
}

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (creating if needed) the SQLite store at path.
func NewSQLite(path string, verbose bool) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory '%s': %w", filepath.Dir(path), err)
	}

	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite store at '%s': %w", path, err)
	}
	if verbose {
		gormDB.Logger = logger.Default.LogMode(logger.Info)
	}

	if err := gormDB.AutoMigrate(&Resource{}); err != nil {
		sqlDB, closeErr := gormDB.DB()
		if closeErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to auto-migrate store schema: %w", err)
	}

	return &SQLite{db: gormDB}, nil
}

// GetItem returns the value stored under key.
func (s *SQLite) GetItem(ctx context.Context, key string) ([]byte, error) {
	var r Resource
	if err := s.db.WithContext(ctx).Where("name = ?", key).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get resource %q: %w", key, err)
	}
	return r.Value, nil
}

// SetItem inserts or replaces the value stored under key.
func (s *SQLite) SetItem(ctx context.Context, key string, value []byte) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Resource{Name: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to set resource %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("name = ?", key).Delete(&Resource{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete resource %q: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("resource %q: %w", key, ErrNotFound)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&Resource{}).Order("name").Pluck("name", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return keys, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB instance: %w", err)
	}
	return sqlDB.Close()
}
