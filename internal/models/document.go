package models

import "time"

// Document is the metadata record for an uploaded and indexed PDF.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	FileSize   int64     `json:"file_size"`
	ChunkCount int       `json:"chunk_count"`
}

// Passage is one retrieved chunk of an indexed document, produced per query
// and discarded after the turn.
type Passage struct {
	Content    string  `json:"content"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Score      float64 `json:"score"`
}
