//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package tracker

import "time"

// Status of a tracked file.
type Status string

// File statuses.
const (
	// StatusProcessed marks a file whose chunks made it into the index.
	StatusProcessed Status = "processed"
	// StatusFailed marks a poison file that must not be retried blindly.
	StatusFailed Status = "failed"
)

// Record is the durable processing state of one file. The file path is the
// primary key; one record per path, last write wins.
type Record struct {
	// FilePath is the absolute path of the tracked file.
	FilePath string `gorm:"column:file_path;primaryKey" json:"file_path"`
	// FileHash is the hex SHA-256 of the file content. Empty for failed files.
	FileHash string `gorm:"column:file_hash;not null" json:"file_hash"`
	// FileSize is the file size in bytes at processing time.
	FileSize int64 `gorm:"column:file_size;not null" json:"file_size"`
	// LastModified is the file modification time as epoch seconds.
	LastModified float64 `gorm:"column:last_modified;not null" json:"last_modified"`
	// ProcessedAt is when the record was written.
	ProcessedAt time.Time `gorm:"column:processed_at;index" json:"processed_at"`
	// ChunkCount is the number of chunks produced from the file.
	ChunkCount int `gorm:"column:chunk_count;default:0" json:"chunk_count"`
	// ClientName partitions the corpus by owning client. Nil for shared files.
	ClientName *string `gorm:"column:client_name;index" json:"client_name"`
	// Status is the processing outcome.
	Status Status `gorm:"column:status;default:processed;index" json:"status"`
}

// TableName implements the gorm table-name convention.
func (Record) TableName() string {
	return "processed_files"
}

// Client returns the client name, or empty for shared files.
func (r *Record) Client() string {
	if r.ClientName == nil {
		return ""
	}
	return *r.ClientName
}
