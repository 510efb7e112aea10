//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package tracker records per-file processing state so the ingestion pipeline
// can skip unchanged files and keep an audit trail of processed and failed
// ones.
package tracker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ragware/kbcore/log"
)

const (
	// hashBlockSize is the read block size for streamed hashing.
	hashBlockSize = 4096

	// defaultHashConcurrency bounds parallel hashing so a directory scan does
	// not saturate disk bandwidth.
	defaultHashConcurrency = 4

	exportFilePermission = 0o644
)

// Tracker decides which files need (re)processing, backed by a durable Store.
// Safe for concurrent use from a bounded worker pool.
type Tracker struct {
	store           Store
	hashConcurrency int
}

// Option represents a functional option for configuring the Tracker.
type Option func(*Tracker)

// WithHashConcurrency bounds how many files are hashed in parallel during a
// directory scan. A value <= 0 keeps the default of 4.
func WithHashConcurrency(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.hashConcurrency = n
		}
	}
}

// New creates a Tracker over the given store.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:           store,
		hashConcurrency: defaultHashConcurrency,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FileHash computes the hex SHA-256 of a file, streamed in fixed-size blocks
// so large files never load into memory whole.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, hashBlockSize)); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsProcessed reports whether the file at path has already been processed and
// is unchanged since. Any read or hash failure degrades to false, forcing a
// safe reprocess instead of a silent skip.
func (t *Tracker) IsProcessed(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	rec, err := t.store.Get(ctx, path)
	if err != nil {
		if err != ErrNotFound {
			log.Errorf("tracker: read record for %s: %v", path, err)
		}
		return false
	}
	if rec.Status != StatusProcessed {
		return false
	}

	// Unchanged mtime and size short-circuit the hash: rehashing every file on
	// every scan is what incremental ingest is meant to avoid.
	mtime := epochSeconds(info.ModTime())
	if rec.LastModified == mtime && rec.FileSize == info.Size() {
		return true
	}

	// The metadata moved, so the content hash decides. A touch without an edit
	// still counts as processed.
	hash, err := FileHash(path)
	if err != nil {
		log.Errorf("tracker: hash %s: %v", path, err)
		return false
	}
	return rec.FileHash == hash
}

// MarkProcessed upserts the record for path with a freshly computed hash,
// size and modification time. An empty clientName leaves the record
// unpartitioned.
func (t *Tracker) MarkProcessed(ctx context.Context, path string, chunkCount int, clientName string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	hash, err := FileHash(path)
	if err != nil {
		return err
	}

	rec := &Record{
		FilePath:     path,
		FileHash:     hash,
		FileSize:     info.Size(),
		LastModified: epochSeconds(info.ModTime()),
		ProcessedAt:  time.Now(),
		ChunkCount:   chunkCount,
		Status:       StatusProcessed,
	}
	if clientName != "" {
		rec.ClientName = &clientName
	}
	if err := t.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert record for %s: %w", path, err)
	}
	log.Infof("tracker: marked processed: %s (%d chunks)", path, chunkCount)
	return nil
}

// MarkFailed upserts a failed record with zeroed hash and size, so poison
// files are not retried forever but stay visible in listings and stats.
func (t *Tracker) MarkFailed(ctx context.Context, path, errorMessage string) error {
	rec := &Record{
		FilePath:    path,
		ProcessedAt: time.Now(),
		Status:      StatusFailed,
	}
	if err := t.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert failed record for %s: %w", path, err)
	}
	log.Warnf("tracker: marked failed: %s: %s", path, errorMessage)
	return nil
}

// UnprocessedFiles walks rootDir recursively and returns the files with one
// of the allowed extensions that still need processing. Hashing runs on a
// bounded worker pool; results keep walk order.
func (t *Tracker) UnprocessedFiles(ctx context.Context, rootDir string, allowedExtensions []string) ([]string, error) {
	extSet := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[ext] = struct{}{}
	}

	var candidates []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := extSet[strings.ToLower(filepath.Ext(path))]; ok {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", rootDir, err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(t.hashConcurrency)
	if err != nil {
		return nil, fmt.Errorf("create hash worker pool: %w", err)
	}
	defer pool.Release()

	processed := make([]bool, len(candidates))
	var wg sync.WaitGroup
	for i, path := range candidates {
		wg.Add(1)
		idx, p := i, path
		if err := pool.Submit(func() {
			defer wg.Done()
			processed[idx] = t.IsProcessed(ctx, p)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit hash task: %w", err)
		}
	}
	wg.Wait()

	var unprocessed []string
	for i, path := range candidates {
		if !processed[i] {
			unprocessed = append(unprocessed, path)
		}
	}
	return unprocessed, nil
}

// ProcessedFiles returns processed records, most recent first, optionally
// filtered by client.
func (t *Tracker) ProcessedFiles(ctx context.Context, clientName string) ([]*Record, error) {
	return t.store.List(ctx, ListFilter{Status: StatusProcessed, Client: clientName})
}

// FailedFiles returns failed records, most recent first.
func (t *Tracker) FailedFiles(ctx context.Context) ([]*Record, error) {
	return t.store.List(ctx, ListFilter{Status: StatusFailed})
}

// Remove deletes the record for path.
func (t *Tracker) Remove(ctx context.Context, path string) error {
	if err := t.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete record for %s: %w", path, err)
	}
	log.Infof("tracker: removed record: %s", path)
	return nil
}

// CleanupOrphaned deletes the records whose file no longer exists and returns
// how many were removed. A second run right after is a no-op.
func (t *Tracker) CleanupOrphaned(ctx context.Context) (int, error) {
	records, err := t.store.List(ctx, ListFilter{})
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	removed := 0
	for _, rec := range records {
		if _, err := os.Stat(rec.FilePath); !os.IsNotExist(err) {
			continue
		}
		if err := t.store.Delete(ctx, rec.FilePath); err != nil {
			return removed, fmt.Errorf("delete orphaned record for %s: %w", rec.FilePath, err)
		}
		removed++
	}
	log.Infof("tracker: removed %d orphaned records", removed)
	return removed, nil
}

// ResetAll wipes every record. Destructive; callers must opt in explicitly.
func (t *Tracker) ResetAll(ctx context.Context) error {
	if err := t.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete all records: %w", err)
	}
	log.Warn("tracker: all records reset")
	return nil
}

// StatusStats aggregates records sharing a status.
type StatusStats struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"total_size"`
}

// ClientStats aggregates processed records sharing a client.
type ClientStats struct {
	Count       int `json:"count"`
	TotalChunks int `json:"chunks"`
}

// Stats summarizes the tracked corpus.
type Stats struct {
	ByStatus       map[Status]StatusStats `json:"status_stats"`
	ByClient       map[string]ClientStats `json:"client_stats"`
	TotalProcessed int                    `json:"total_processed"`
	TotalFailed    int                    `json:"total_failed"`
}

// GetStats returns counts and byte totals by status, and counts and chunk
// totals by client over processed records.
func (t *Tracker) GetStats(ctx context.Context) (*Stats, error) {
	records, err := t.store.List(ctx, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	stats := &Stats{
		ByStatus: make(map[Status]StatusStats),
		ByClient: make(map[string]ClientStats),
	}
	for _, rec := range records {
		s := stats.ByStatus[rec.Status]
		s.Count++
		s.TotalSize += rec.FileSize
		stats.ByStatus[rec.Status] = s

		if rec.Status == StatusProcessed && rec.ClientName != nil {
			c := stats.ByClient[*rec.ClientName]
			c.Count++
			c.TotalChunks += rec.ChunkCount
			stats.ByClient[*rec.ClientName] = c
		}
	}
	stats.TotalProcessed = stats.ByStatus[StatusProcessed].Count
	stats.TotalFailed = stats.ByStatus[StatusFailed].Count
	return stats, nil
}

// ExportJSON writes all records to path as indented JSON, most recent first,
// overwriting any existing file.
func (t *Tracker) ExportJSON(ctx context.Context, path string) error {
	records, err := t.store.List(ctx, ListFilter{})
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, exportFilePermission); err != nil {
		return fmt.Errorf("write export %s: %w", path, err)
	}
	log.Infof("tracker: exported %d records to %s", len(records), path)
	return nil
}

// epochSeconds converts a time to floating-point epoch seconds, the format
// the persisted schema uses for modification times.
func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
