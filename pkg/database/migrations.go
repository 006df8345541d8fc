package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// FileMetadata mirrors one row of the file_metadata sidecar: a
// file_metadata(file_name UNIQUE, file_path, table_name, loaded_at,
// row_count, column_count, description) table tracking source origins.
type FileMetadata struct {
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	TableName   string    `json:"table_name"`
	LoadedAt    time.Time `json:"loaded_at"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
	Description string    `json:"description"`
}

// UpsertFileMetadata records or updates the ingest-time metadata for a
// source file, keyed on file_name. The actual file-ingestion path is an
// external collaborator; this is the write side it calls into once a
// table has been loaded.
func (c *Client) UpsertFileMetadata(ctx context.Context, m FileMetadata) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO file_metadata (file_name, file_path, table_name, loaded_at, row_count, column_count, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (file_name) DO UPDATE SET
			file_path = EXCLUDED.file_path,
			table_name = EXCLUDED.table_name,
			loaded_at = EXCLUDED.loaded_at,
			row_count = EXCLUDED.row_count,
			column_count = EXCLUDED.column_count,
			description = EXCLUDED.description`,
		m.FileName, m.FilePath, m.TableName, m.LoadedAt, m.RowCount, m.ColumnCount, m.Description)
	if err != nil {
		return fmt.Errorf("upsert file_metadata %q: %w", m.FileName, err)
	}
	return nil
}

// ListFileMetadata returns every ingested source file on record, ordered by
// table name — what GET /database-status joins against.
func (c *Client) ListFileMetadata(ctx context.Context) ([]FileMetadata, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT file_name, file_path, table_name, loaded_at, row_count, column_count, description
		FROM file_metadata
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list file_metadata: %w", err)
	}
	defer rows.Close()

	var out []FileMetadata
	for rows.Next() {
		var m FileMetadata
		if err := rows.Scan(&m.FileName, &m.FilePath, &m.TableName, &m.LoadedAt, &m.RowCount, &m.ColumnCount, &m.Description); err != nil {
			return nil, fmt.Errorf("scan file_metadata: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FileMetadataForTable looks up the sidecar row for a single table, used to
// attribute a catalog table back to its source file and description.
func (c *Client) FileMetadataForTable(ctx context.Context, tableName string) (FileMetadata, bool, error) {
	var m FileMetadata
	err := c.pool.QueryRow(ctx, `
		SELECT file_name, file_path, table_name, loaded_at, row_count, column_count, description
		FROM file_metadata
		WHERE table_name = $1`, tableName).
		Scan(&m.FileName, &m.FilePath, &m.TableName, &m.LoadedAt, &m.RowCount, &m.ColumnCount, &m.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FileMetadata{}, false, nil
		}
		return FileMetadata{}, false, fmt.Errorf("file_metadata for table %q: %w", tableName, err)
	}
	return m, true, nil
}
