//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package tracker

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when no record exists for a path.
var ErrNotFound = errors.New("tracker: record not found")

// ListFilter narrows a Store.List call. Zero values mean no filtering.
type ListFilter struct {
	// Status keeps only records with this status.
	Status Status
	// Client keeps only records with this client name.
	Client string
}

// Store is the durable record repository behind the Tracker.
// Every call is one atomic transaction scoped to a single record, so a crash
// mid-operation can leave at most one record stale and never corrupts others.
// Implementations must be safe for concurrent use.
type Store interface {
	// Upsert creates or replaces the record keyed by its file path.
	Upsert(ctx context.Context, record *Record) error

	// Get returns the record for the given path, or ErrNotFound.
	Get(ctx context.Context, path string) (*Record, error)

	// Delete removes the record for the given path. Missing records are not
	// an error.
	Delete(ctx context.Context, path string) error

	// List returns records matching the filter, most recently processed first.
	List(ctx context.Context, filter ListFilter) ([]*Record, error)

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error
}
