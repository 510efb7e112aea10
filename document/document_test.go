//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelPath(t *testing.T) {
	doc := &Document{
		Content: "FIS Group è un'azienda leader nel settore chimico",
		Metadata: map[string]any{
			MetaClient:   "Fis",
			MetaFileName: "corpus.md",
		},
	}
	assert.Equal(t, "Fis/corpus.md", doc.RelPath())
}

func TestRelPathMissingMetadata(t *testing.T) {
	assert.Equal(t, "unknown/unknown", (&Document{}).RelPath())

	doc := &Document{Metadata: map[string]any{MetaFileName: "dati.md"}}
	assert.Equal(t, "unknown/dati.md", doc.RelPath())

	// Non-string metadata values fall back too.
	doc = &Document{Metadata: map[string]any{MetaClient: 42, MetaFileName: "x.md"}}
	assert.Equal(t, "unknown/x.md", doc.RelPath())
}

func TestGenerateID(t *testing.T) {
	a := GenerateID("corpus doc", "same content")
	b := GenerateID("corpus doc", "same content")
	c := GenerateID("corpus doc", "other content")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, " ")
}

func TestNew(t *testing.T) {
	doc := New("body", "name")
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "body", doc.Content)
	assert.NotNil(t, doc.Metadata)
	assert.False(t, doc.CreatedAt.IsZero())
}
