//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragware/kbcore/tracker"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, err := store.Get(ctx, "/kb/a.md")
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	client := "Fis"
	rec := &tracker.Record{
		FilePath:    "/kb/a.md",
		FileHash:    "aaa",
		ProcessedAt: time.Now(),
		ClientName:  &client,
		Status:      tracker.StatusProcessed,
	}
	require.NoError(t, store.Upsert(ctx, rec))

	got, err := store.Get(ctx, "/kb/a.md")
	require.NoError(t, err)
	assert.Equal(t, "aaa", got.FileHash)

	// The store hands out copies; mutating them must not leak back.
	got.FileHash = "mutated"
	again, err := store.Get(ctx, "/kb/a.md")
	require.NoError(t, err)
	assert.Equal(t, "aaa", again.FileHash)
}

func TestListOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	store := New()
	base := time.Now()

	client := "Maspe"
	require.NoError(t, store.Upsert(ctx, &tracker.Record{
		FilePath: "/kb/old.md", ProcessedAt: base.Add(-time.Hour), Status: tracker.StatusProcessed,
	}))
	require.NoError(t, store.Upsert(ctx, &tracker.Record{
		FilePath: "/kb/new.md", ProcessedAt: base, Status: tracker.StatusProcessed, ClientName: &client,
	}))
	require.NoError(t, store.Upsert(ctx, &tracker.Record{
		FilePath: "/kb/bad.md", ProcessedAt: base.Add(-time.Minute), Status: tracker.StatusFailed,
	}))

	all, err := store.List(ctx, tracker.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/kb/new.md", all[0].FilePath)
	assert.Equal(t, "/kb/old.md", all[2].FilePath)

	failed, err := store.List(ctx, tracker.ListFilter{Status: tracker.StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)

	maspe, err := store.List(ctx, tracker.ListFilter{Client: "Maspe"})
	require.NoError(t, err)
	require.Len(t, maspe, 1)
	assert.Equal(t, "/kb/new.md", maspe[0].FilePath)
}
