// Package descindex is a write-mostly-at-ingest, read-mostly-at-serve
// nearest-neighbor store of descriptive records about ingested data sources.
package descindex

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// RecordKind is one of the four descriptive record kinds.
type RecordKind string

const (
	KindTableDescription RecordKind = "table_description"
	KindColumnInsight    RecordKind = "column_insight"
	KindBusinessContext  RecordKind = "business_context"
	KindQuerySuggestions RecordKind = "query_suggestions"
)

// DefaultDistanceThreshold separates "relevant" from "irrelevant" matches:
// a threshold, default 0.7.
const DefaultDistanceThreshold = 0.7

// Record is one descriptive document ingested about a source.
type Record struct {
	DocID    string
	FileName string
	Kind     RecordKind
	Text     string
}

// Match pairs a Record with its distance from a query vector.
type Match struct {
	Record   Record
	Distance float64
}

// Embedder produces a fixed-dimension vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Index is the descriptive index.
type Index struct {
	db       *sql.DB
	embedder Embedder
	ttl      time.Duration
}

// Config controls TTL sweeping of stale sidecar entries.
type Config struct {
	// TTL is how long a record may sit unqueried before it's eligible for
	// sweeping. Zero disables sweeping.
	TTL time.Duration
}

// Open creates/opens the sqlite-backed sidecar at path ("" for in-memory)
// and ensures its schema exists.
func Open(path string, embedder Embedder, cfg Config) (*Index, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("descindex: open: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers

	idx := &Index{db: db, embedder: embedder, ttl: cfg.TTL}
	if err := idx.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		doc_id     TEXT PRIMARY KEY,
		file_name  TEXT NOT NULL,
		kind       TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_read_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);

	CREATE TABLE IF NOT EXISTS vectors (
		doc_id    TEXT PRIMARY KEY REFERENCES documents(doc_id) ON DELETE CASCADE,
		embedding BLOB NOT NULL
	);
	`
	_, err := idx.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("descindex: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// ContentHash derives the content-keyed doc_id for a record, so re-ingesting
// identical text is a no-op rather than a duplicate.
func ContentHash(fileName string, kind RecordKind, text string) string {
	sum := sha256.Sum256([]byte(fileName + "\x00" + string(kind) + "\x00" + text))
	return hex.EncodeToString(sum[:])[:32]
}

// Ingest stores (or refreshes) one descriptive record and its embedding.
// Idempotent on content: ingesting an identical {file_name, kind, text}
// triple a second time overwrites the same row rather than duplicating it.
func (idx *Index) Ingest(ctx context.Context, fileName string, kind RecordKind, text string) (string, error) {
	docID := ContentHash(fileName, kind, text)

	vec, err := idx.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("descindex: embed: %w", err)
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("descindex: begin ingest: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (doc_id, file_name, kind, text)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET text = excluded.text, last_read_at = CURRENT_TIMESTAMP`,
		docID, fileName, string(kind), text)
	if err != nil {
		return "", fmt.Errorf("descindex: upsert document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vectors (doc_id, embedding) VALUES (?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET embedding = excluded.embedding`,
		docID, encodeVector(vec))
	if err != nil {
		return "", fmt.Errorf("descindex: upsert vector: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("descindex: commit ingest: %w", err)
	}
	return docID, nil
}

// Query embeds queryText and returns the top-k closest records, ordered by
// increasing distance, filtered to those at or below threshold (<=0 uses
// DefaultDistanceThreshold).
func (idx *Index) Query(ctx context.Context, queryText string, k int, threshold float64) ([]Match, error) {
	if threshold <= 0 {
		threshold = DefaultDistanceThreshold
	}
	qvec, err := idx.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("descindex: embed query: %w", err)
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT d.doc_id, d.file_name, d.kind, d.text, v.embedding
		FROM documents d JOIN vectors v ON v.doc_id = d.doc_id`)
	if err != nil {
		return nil, fmt.Errorf("descindex: scan candidates: %w", err)
	}
	defer rows.Close()

	var candidates []Match
	var touched []string
	for rows.Next() {
		var r Record
		var blob []byte
		if err := rows.Scan(&r.DocID, &r.FileName, &r.Kind, &r.Text, &blob); err != nil {
			return nil, fmt.Errorf("descindex: scan row: %w", err)
		}
		vec := decodeVector(blob)
		dist := cosineDistance(qvec, vec)
		if dist <= threshold {
			candidates = append(candidates, Match{Record: r, Distance: dist})
			touched = append(touched, r.DocID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Distance < candidates[j].Distance })
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}

	idx.touchLastRead(ctx, touched)
	return candidates, nil
}

// GetDocument returns the full record for doc_id, for full-retrieval queries
// against the sidecar keyed by doc_id.
func (idx *Index) GetDocument(ctx context.Context, docID string) (Record, bool, error) {
	var r Record
	err := idx.db.QueryRowContext(ctx, `
		SELECT doc_id, file_name, kind, text FROM documents WHERE doc_id = ?`, docID).
		Scan(&r.DocID, &r.FileName, &r.Kind, &r.Text)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("descindex: get document: %w", err)
	}
	idx.touchLastRead(ctx, []string{docID})
	return r, true, nil
}

func (idx *Index) touchLastRead(ctx context.Context, docIDs []string) {
	for _, id := range docIDs {
		// Best-effort; a failed touch only delays eventual sweeping.
		_, _ = idx.db.ExecContext(ctx,
			`UPDATE documents SET last_read_at = CURRENT_TIMESTAMP WHERE doc_id = ?`, id)
	}
}

// Sweep deletes documents (and their vectors, via ON DELETE CASCADE) whose
// last_read_at is older than now-TTL. Returns the number of rows removed.
// No-op when TTL is zero.
func (idx *Index) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if idx.ttl <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-idx.ttl)
	res, err := idx.db.ExecContext(ctx,
		`DELETE FROM documents WHERE last_read_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("descindex: sweep: %w", err)
	}
	return res.RowsAffected()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(blob []byte) []float32 {
	n := len(blob) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}

// cosineDistance is 1 - cosine_similarity (DESIGN.md Open Question 3), so
// identical vectors have distance 0 and orthogonal vectors have distance 1.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return 1 - similarity
}

