//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package document defines the document model shared by retrieval, reranking
// and evaluation.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Metadata keys attached to documents by the ingestion pipeline.
// These are the raw keys used by the external index, so they are not
// namespaced: `cliente` and `filename` must round-trip unchanged.
const (
	MetaClient     = "cliente"
	MetaFileName   = "filename"
	MetaFilePath   = "file_path"
	MetaFileExt    = "file_ext"
	MetaModifiedAt = "modified_at"
)

// unknownField substitutes missing client or filename metadata when building
// the identity key, matching what labelers use for unattributed documents.
const unknownField = "unknown"

// Document represents a chunk of text with associated metadata.
type Document struct {
	// ID is the unique identifier of the document.
	ID string `json:"id"`

	// Name is the human-readable name of the document.
	Name string `json:"name,omitempty"`

	// Content is the text content of the document.
	Content string `json:"content"`

	// Metadata carries additional information about the document.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CreatedAt is when the document was created.
	CreatedAt time.Time `json:"created_at,omitempty"`

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// New creates a document with the given content and name.
func New(content, name string) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        GenerateID(name, content),
		Name:      name,
		Content:   content,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GenerateID derives a document ID from its name and content.
// Identical content under the same name yields the same ID, which lets the
// ingestion pipeline dedup re-read files.
func GenerateID(name, content string) string {
	hash := sha256.Sum256([]byte(content))
	contentHash := hex.EncodeToString(hash[:8])
	return strings.ReplaceAll(name, " ", "_") + "_" + contentHash
}

// MetaString returns the string value stored under key, or fallback when the
// key is absent or not a string.
func (d *Document) MetaString(key, fallback string) string {
	if d == nil || d.Metadata == nil {
		return fallback
	}
	if v, ok := d.Metadata[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// RelPath builds the `client/filename` identity key for a document.
// This is the exact comparison key used against ground-truth labels, so both
// sides must normalize the same way: missing metadata maps to "unknown".
func (d *Document) RelPath() string {
	client := d.MetaString(MetaClient, unknownField)
	filename := d.MetaString(MetaFileName, unknownField)
	return fmt.Sprintf("%s/%s", client, filename)
}
