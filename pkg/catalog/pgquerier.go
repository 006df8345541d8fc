package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

// PgQuerier implements Querier against a live Postgres information_schema,
// using numeric/nullable column stats gathered via a single aggregate query
// per table rather than a PRAGMA (Postgres has no PRAGMA equivalent, so
// distinct/non-null counts come from a COUNT(DISTINCT col)/COUNT(col)
// projection instead).
type PgQuerier struct {
	pool   *pgxpool.Pool
	schema string // defaults to "public"
}

// NewPgQuerier wraps a pgx pool. schema defaults to "public" when empty.
func NewPgQuerier(pool *pgxpool.Pool, schema string) *PgQuerier {
	if schema == "" {
		schema = "public"
	}
	return &PgQuerier{pool: pool, schema: schema}
}

func (q *PgQuerier) ListTables(ctx context.Context) ([]string, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, q.schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (q *PgQuerier) TableColumns(ctx context.Context, table string) ([]models.ColumnSchema, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' AS nullable,
			COALESCE(pk.is_pk, false) AS is_pk
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name, true AS is_pk
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
			WHERE tc.table_schema = $1 AND tc.table_name = $2
				AND tc.constraint_type = 'PRIMARY KEY'
		) pk ON pk.column_name = c.column_name
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`, q.schema, table)
	if err != nil {
		return nil, fmt.Errorf("columns for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []models.ColumnSchema
	for rows.Next() {
		var c models.ColumnSchema
		if err := rows.Scan(&c.Name, &c.DeclaredType, &c.Nullable, &c.PrimaryKey); err != nil {
			return nil, fmt.Errorf("scan column for %s: %w", table, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := q.fillDistinctAndNonNull(ctx, table, cols); err != nil {
		// Stats are an enrichment, not a correctness requirement for the
		// catalog shape itself; a failure here shouldn't drop the columns.
		return cols, nil //nolint:nilerr
	}
	return cols, nil
}

// fillDistinctAndNonNull runs one aggregate query computing
// COUNT(DISTINCT col)/COUNT(col) for every column in a single round trip,
// mutating cols in place.
func (q *PgQuerier) fillDistinctAndNonNull(ctx context.Context, table string, cols []models.ColumnSchema) error {
	if len(cols) == 0 {
		return nil
	}
	var exprs string
	for i, c := range cols {
		if i > 0 {
			exprs += ", "
		}
		quoted := pgQuoteIdent(c.Name)
		exprs += fmt.Sprintf("COUNT(DISTINCT %s), COUNT(%s)", quoted, quoted)
	}
	sql := fmt.Sprintf("SELECT %s FROM %s", exprs, pgQuoteIdent(table))

	dest := make([]any, 0, len(cols)*2)
	values := make([]int64, len(cols)*2)
	for i := range values {
		dest = append(dest, &values[i])
	}

	row := q.pool.QueryRow(ctx, sql)
	if err := row.Scan(dest...); err != nil {
		return fmt.Errorf("stats for %s: %w", table, err)
	}
	for i := range cols {
		cols[i].DistinctCount = values[i*2]
		cols[i].NonNullCount = values[i*2+1]
	}
	return nil
}

func (q *PgQuerier) TableForeignKeys(ctx context.Context, table string) ([]models.ForeignKeyEdge, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT
			kcu.column_name,
			ccu.table_name AS target_table,
			ccu.column_name AS target_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2
			AND tc.constraint_type = 'FOREIGN KEY'`, q.schema, table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys for %s: %w", table, err)
	}
	defer rows.Close()

	var edges []models.ForeignKeyEdge
	for rows.Next() {
		var e models.ForeignKeyEdge
		if err := rows.Scan(&e.LocalColumn, &e.TargetTable, &e.TargetColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key for %s: %w", table, err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// pgQuoteIdent double-quotes an identifier and escapes embedded quotes.
// Table/column names come from information_schema, not user input, but we
// quote defensively since identifiers may contain mixed case or reserved
// words.
func pgQuoteIdent(ident string) string {
	escaped := ""
	for _, r := range ident {
		if r == '"' {
			escaped += `""`
		} else {
			escaped += string(r)
		}
	}
	return `"` + escaped + `"`
}
