package api

import (
	"net/http"
	"sort"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/chartpilot/pkg/database"
)

// databaseStatusHandler handles GET /database-status: the introspected
// catalog joined against the file_metadata sidecar for each table's
// source file and ingest-time row/column counts.
func (s *Server) databaseStatusHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "failed to load catalog: "+err.Error())
	}

	files, err := s.dbClient.ListFileMetadata(ctx)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "failed to load file metadata: "+err.Error())
	}
	fileByTable := make(map[string]database.FileMetadata, len(files))
	for _, f := range files {
		fileByTable[f.TableName] = f
	}

	resp := &DatabaseStatusResponse{
		DatabasePath: s.dbClient.DatabasePath(),
	}
	for name, table := range catalog.Tables {
		cols := make([]ColumnStatus, 0, len(table.Columns))
		for _, col := range table.Columns {
			cols = append(cols, ColumnStatus{
				Name:         col.Name,
				DeclaredType: col.DeclaredType,
				Nullable:     col.Nullable,
				PrimaryKey:   col.PrimaryKey,
			})
		}

		meta, known := fileByTable[name]
		status := TableStatus{
			TableName:   name,
			ColumnCount: len(table.Columns),
			Columns:     cols,
			LoadedAt:    table.LoadedAt,
		}
		if known {
			status.FileName = meta.FileName
			status.RowCount = meta.RowCount
		}
		resp.Tables = append(resp.Tables, status)
	}
	resp.TotalTables = len(resp.Tables)

	sort.Slice(resp.Tables, func(i, j int) bool {
		return resp.Tables[i].TableName < resp.Tables[j].TableName
	})

	return c.JSON(http.StatusOK, resp)
}
