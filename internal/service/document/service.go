package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"ragchat/internal/models"
	"ragchat/internal/worker"
)

var (
	// ErrInvalidFileType rejects uploads that are not PDF documents.
	ErrInvalidFileType = errors.New("only PDF files are allowed")
	// ErrFileTooLarge rejects uploads above the configured byte ceiling.
	ErrFileTooLarge = errors.New("file size exceeds the configured limit")
)

// Service owns document ingestion and retrieval access: it validates uploads,
// converts PDFs into embedded chunks, and ranks in-scope chunks against a
// query vector. Chunk vectors live next to the chunk text in the relational
// store and similarity is computed in process.
type Service struct {
	db       *sql.DB
	embedder embedding.Embedder
	pool     *worker.Pool

	splitLength  int
	splitOverlap int
	maxFileSize  int64
	batchSize    int
}

// Config carries the indexing parameters for the service.
type Config struct {
	SplitLength  int
	SplitOverlap int
	MaxFileSize  int64
	BatchSize    int
}

// NewService builds a document service over the given database and embedder.
func NewService(db *sql.DB, embedder embedding.Embedder, pool *worker.Pool, cfg Config) *Service {
	if cfg.SplitLength <= 0 {
		cfg.SplitLength = 800
	}
	if cfg.SplitOverlap < 0 {
		cfg.SplitOverlap = 0
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 50 << 20
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	return &Service{
		db:           db,
		embedder:     embedder,
		pool:         pool,
		splitLength:  cfg.SplitLength,
		splitOverlap: cfg.SplitOverlap,
		maxFileSize:  cfg.MaxFileSize,
		batchSize:    cfg.BatchSize,
	}
}

// Upload validates, indexes, and records a PDF: extract text, split into
// word-window chunks, embed each chunk, and persist the document row together
// with its chunks. Nothing is written until embedding has succeeded, and the
// row and chunks commit in one transaction, so a failed upload leaves no
// record behind.
func (s *Service) Upload(ctx context.Context, filename string, content []byte) (*models.Document, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, ErrInvalidFileType
	}
	if int64(len(content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(content))
	}

	text, err := extractText(content)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	chunks := splitWords(text, s.splitLength, s.splitOverlap)

	var vectors [][]float64
	if len(chunks) > 0 {
		if vectors, err = s.embedChunks(ctx, chunks); err != nil {
			return nil, err
		}
	}

	doc := &models.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		UploadDate: time.Now().UTC(),
		FileSize:   int64(len(content)),
		ChunkCount: len(chunks),
	}
	if err := s.persist(ctx, doc, chunks, vectors); err != nil {
		return nil, err
	}
	return doc, nil
}

// embedChunks runs batched embedding calls through the worker pool, keeping
// chunk order intact.
func (s *Service) embedChunks(ctx context.Context, chunks []string) ([][]float64, error) {
	vectors := make([][]float64, len(chunks))
	var jobs []worker.Job
	for start := 0; start < len(chunks); start += s.batchSize {
		start := start
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		jobs = append(jobs, func(ctx context.Context) error {
			embedded, err := s.embedder.EmbedStrings(ctx, batch)
			if err != nil {
				return fmt.Errorf("embed chunk batch: %w", err)
			}
			if len(embedded) != len(batch) {
				return fmt.Errorf("embedding count mismatch: want %d got %d", len(batch), len(embedded))
			}
			copy(vectors[start:end], embedded)
			return nil
		})
	}
	if err := s.pool.RunAll(ctx, jobs); err != nil {
		return nil, err
	}
	return vectors, nil
}

// persist writes the document row and every chunk in a single transaction.
func (s *Service) persist(ctx context.Context, doc *models.Document, chunks []string, vectors [][]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, upload_date, file_size, chunk_count) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.UploadDate, doc.FileSize, doc.ChunkCount,
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	for i, chunk := range chunks {
		var encoded []byte
		encoded, err = json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO document_chunks (document_id, filename, content, embedding) VALUES (?, ?, ?, ?)`,
			doc.ID, doc.Filename, chunk, string(encoded),
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upload: %w", err)
	}
	return nil
}

// ListDocuments returns all uploaded document records.
func (s *Service) ListDocuments(ctx context.Context) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, upload_date, file_size, chunk_count FROM documents ORDER BY upload_date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.UploadDate, &d.FileSize, &d.ChunkCount); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SearchChunks ranks chunks belonging to the scoped documents against the
// query vector and returns the topK best passages. Scope is strict set
// membership: documents outside documentIDs are never considered, and an
// empty scope retrieves nothing.
func (s *Service) SearchChunks(ctx context.Context, queryVec []float64, documentIDs []string, topK int) ([]models.Passage, error) {
	if len(documentIDs) == 0 || topK <= 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(documentIDs)), ",")
	args := make([]interface{}, len(documentIDs))
	for i, id := range documentIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, filename, content, embedding FROM document_chunks WHERE document_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var passages []models.Passage
	for rows.Next() {
		var p models.Passage
		var encoded string
		if err := rows.Scan(&p.DocumentID, &p.Filename, &p.Content, &encoded); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		var vec []float64
		if err := json.Unmarshal([]byte(encoded), &vec); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		p.Score = cosineSimilarity(queryVec, vec)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
