// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/ruangustavo/workspace-launcher/internal/workspace"
)

const documentID = "workspaces"

// DocumentRecord is the persistence model for the workspace document.
// Table name: documents
type DocumentRecord struct {
	ID        string    `gorm:"primaryKey;type:text;not null"`
	Body      []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (DocumentRecord) TableName() string { return "documents" }

// SQLiteStore keeps the workspace document as a single row in SQLite.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the database at dsn.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&DocumentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite %s: %w", dsn, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Format() workspace.Format { return workspace.FormatJSON }

// Load returns the stored document, or an empty one if no row exists.
func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	var rec DocumentRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyDocument(workspace.FormatJSON), nil
		}
		return nil, err
	}
	return rec.Body, nil
}

// Save upserts the document row.
func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	rec := &DocumentRecord{ID: documentID, Body: data, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(rec).Error
}

// Close closes the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
