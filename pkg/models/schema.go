package models

import "time"

// ColumnSchema describes one column of an introspected table.
type ColumnSchema struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declared_type"`
	Nullable     bool   `json:"nullable"`
	PrimaryKey   bool   `json:"primary_key"`
	DistinctCount int64 `json:"distinct_count"`
	NonNullCount  int64 `json:"non_null_count"`
}

// ForeignKeyEdge is an outgoing foreign-key edge from a local column to a
// target table+column. Target resolves to a known table+column or is the
// zero value (absent edge), per the TableSchema invariant.
type ForeignKeyEdge struct {
	LocalColumn  string `json:"local_column"`
	TargetTable  string `json:"target_table"`
	TargetColumn string `json:"target_column"`
}

// TableSchema is the introspected shape of a single table.
//
// Invariants: column Names are unique within a table; every ForeignKeys
// entry resolves to a known table+column, or is omitted.
type TableSchema struct {
	TableName   string           `json:"table_name"`
	Columns     []ColumnSchema   `json:"columns"`
	ForeignKeys []ForeignKeyEdge `json:"foreign_keys"`
	LoadedAt    time.Time        `json:"loaded_at"`
}

// Column looks up a column by case-sensitive name.
func (t *TableSchema) Column(name string) (ColumnSchema, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSchema{}, false
}

// NumericColumns returns the columns whose declared type looks numeric.
func (t *TableSchema) NumericColumns() []ColumnSchema {
	var out []ColumnSchema
	for _, c := range t.Columns {
		if IsNumericType(c.DeclaredType) {
			out = append(out, c)
		}
	}
	return out
}

// IsNumericType reports whether a declared SQL type should be treated as
// numeric for metric inference purposes.
func IsNumericType(declared string) bool {
	switch declared {
	case "integer", "int", "int4", "int8", "bigint", "smallint",
		"numeric", "decimal", "real", "double precision", "float4", "float8",
		"serial", "bigserial":
		return true
	default:
		return false
	}
}

// Catalog maps table name to its introspected schema. Built lazily, TTL
// refreshed, and swapped as a whole snapshot — see pkg/catalog.
type Catalog struct {
	Tables    map[string]*TableSchema `json:"tables"`
	LoadedAt  time.Time               `json:"loaded_at"`
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*TableSchema, bool) {
	if c == nil || c.Tables == nil {
		return nil, false
	}
	t, ok := c.Tables[name]
	return t, ok
}
