package parser

import "github.com/tarsy-labs/chartpilot/pkg/models"

// testCatalog mirrors the sales/customers/products schema the rest of
// this package's tests use.
func testCatalog() *models.Catalog {
	sales := &models.TableSchema{
		TableName: "sales",
		Columns: []models.ColumnSchema{
			{Name: "sale_id", DeclaredType: "integer", PrimaryKey: true},
			{Name: "total_amount", DeclaredType: "numeric"},
			{Name: "quantity", DeclaredType: "integer"},
			{Name: "sale_date", DeclaredType: "date"},
			{Name: "customer_id", DeclaredType: "integer"},
			{Name: "product_id", DeclaredType: "integer"},
		},
		ForeignKeys: []models.ForeignKeyEdge{
			{LocalColumn: "customer_id", TargetTable: "customers", TargetColumn: "customer_id"},
			{LocalColumn: "product_id", TargetTable: "products", TargetColumn: "product_id"},
		},
	}
	customers := &models.TableSchema{
		TableName: "customers",
		Columns: []models.ColumnSchema{
			{Name: "customer_id", DeclaredType: "integer", PrimaryKey: true},
			{Name: "region", DeclaredType: "text"},
			{Name: "name", DeclaredType: "text"},
		},
	}
	products := &models.TableSchema{
		TableName: "products",
		Columns: []models.ColumnSchema{
			{Name: "product_id", DeclaredType: "integer", PrimaryKey: true},
			{Name: "category", DeclaredType: "text"},
		},
	}

	return &models.Catalog{Tables: map[string]*models.TableSchema{
		"sales": sales, "customers": customers, "products": products,
	}}
}
