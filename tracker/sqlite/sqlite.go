//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package sqlite provides a SQLite-backed tracker store.
// SQLite gives the tracker its durable, atomic-per-record contract without an
// external database: every Store call is one implicit transaction.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/ragware/kbcore/tracker"
)

// Verify that Store implements the tracker.Store interface.
var _ tracker.Store = (*Store)(nil)

// Store implements tracker.Store over a SQLite database file.
type Store struct {
	db *gorm.DB
}

// Option configures Store.
type Option func(*options)

type options struct {
	gormConfig *gorm.Config
}

// WithGormConfig replaces the default gorm configuration.
func WithGormConfig(cfg *gorm.Config) Option {
	return func(o *options) {
		o.gormConfig = cfg
	}
}

// Open opens (creating if needed) the database at path and migrates the
// processed_files schema.
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{
		gormConfig: &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	db, err := gorm.Open(sqlite.Open(path), o.gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&tracker.Record{}); err != nil {
		return nil, fmt.Errorf("migrate processed_files schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert implements the tracker.Store interface.
func (s *Store) Upsert(ctx context.Context, record *tracker.Record) error {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record)
	if result.Error != nil {
		return fmt.Errorf("upsert record %s: %w", record.FilePath, result.Error)
	}
	return nil
}

// Get implements the tracker.Store interface.
func (s *Store) Get(ctx context.Context, path string) (*tracker.Record, error) {
	var record tracker.Record
	result := s.db.WithContext(ctx).
		Where("file_path = ?", path).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, tracker.ErrNotFound
		}
		return nil, fmt.Errorf("get record %s: %w", path, result.Error)
	}
	return &record, nil
}

// Delete implements the tracker.Store interface.
func (s *Store) Delete(ctx context.Context, path string) error {
	result := s.db.WithContext(ctx).
		Where("file_path = ?", path).
		Delete(&tracker.Record{})
	if result.Error != nil {
		return fmt.Errorf("delete record %s: %w", path, result.Error)
	}
	return nil
}

// List implements the tracker.Store interface.
func (s *Store) List(ctx context.Context, filter tracker.ListFilter) ([]*tracker.Record, error) {
	query := s.db.WithContext(ctx).Order("processed_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Client != "" {
		query = query.Where("client_name = ?", filter.Client)
	}

	var records []*tracker.Record
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// DeleteAll implements the tracker.Store interface.
func (s *Store) DeleteAll(ctx context.Context) error {
	result := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&tracker.Record{})
	if result.Error != nil {
		return fmt.Errorf("delete all records: %w", result.Error)
	}
	return nil
}
