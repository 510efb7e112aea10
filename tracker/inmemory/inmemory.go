//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory tracker store for tests and
// ephemeral runs. State does not survive a restart.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/ragware/kbcore/tracker"
)

// Verify that Store implements the tracker.Store interface.
var _ tracker.Store = (*Store)(nil)

// Store implements tracker.Store with a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	records map[string]tracker.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]tracker.Record),
	}
}

// Upsert implements the tracker.Store interface.
func (s *Store) Upsert(_ context.Context, record *tracker.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.FilePath] = *record
	return nil
}

// Get implements the tracker.Store interface.
func (s *Store) Get(_ context.Context, path string) (*tracker.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[path]
	if !ok {
		return nil, tracker.ErrNotFound
	}
	return &record, nil
}

// Delete implements the tracker.Store interface.
func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, path)
	return nil
}

// List implements the tracker.Store interface.
func (s *Store) List(_ context.Context, filter tracker.ListFilter) ([]*tracker.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*tracker.Record
	for _, record := range s.records {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.Client != "" && record.Client() != filter.Client {
			continue
		}
		rec := record
		records = append(records, &rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProcessedAt.After(records[j].ProcessedAt)
	})
	return records, nil
}

// DeleteAll implements the tracker.Store interface.
func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]tracker.Record)
	return nil
}
