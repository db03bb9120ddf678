package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/mysql-catalog-go/mysqltype"
	"github.com/hugr-lab/mysql-catalog-go/quote"
)

// columnQuery lists every column of a schema in table order, with the type
// metadata the mapper needs.
const columnQuery = `
SELECT table_name, column_name, data_type, column_type, is_nullable,
       COALESCE(numeric_precision, 0), COALESCE(numeric_scale, 0)
FROM information_schema.columns
WHERE table_schema = ?
ORDER BY table_name, ordinal_position`

// loadTables discovers the tables of a schema, mapping each column type
// through the type mapper. One round trip covers all tables.
func (c *Catalog) loadTables(ctx context.Context, schemaName string) ([]Entry, error) {
	rows, err := c.db.QueryxContext(ctx, columnQuery, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of schema %q: %w", schemaName, err)
	}
	defer rows.Close()

	var entries []Entry
	var tableName string
	var fields []arrow.Field
	flush := func() {
		if tableName == "" {
			return
		}
		entries = append(entries, &TableEntry{
			name:       tableName,
			schemaName: schemaName,
			schema:     arrow.NewSchema(fields, nil),
		})
	}

	for rows.Next() {
		var table, column, dataType, columnType, nullable string
		var precision, scale int64
		if err := rows.Scan(&table, &column, &dataType, &columnType, &nullable, &precision, &scale); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		if table != tableName {
			flush()
			tableName = table
			fields = nil
		}
		desc := mysqltype.Descriptor{
			Name:       strings.ToLower(dataType),
			ColumnType: strings.ToLower(columnType),
			Precision:  precision,
			Scale:      scale,
		}
		fields = append(fields, arrow.Field{
			Name:     column,
			Type:     mysqltype.ToArrow(desc, c.types),
			Nullable: strings.EqualFold(nullable, "YES"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of schema %q: %w", schemaName, err)
	}
	flush()

	c.logger.Debug("tables discovered", "schema", schemaName, "count", len(entries))
	return entries, nil
}

// CreateTable creates a table on the remote server and registers it locally.
// Column types are validated through the outbound type mapping first: a
// composite-typed field fails the whole statement before any DDL is issued.
func (e *SchemaEntry) CreateTable(ctx context.Context, name string, schema *arrow.Schema) (*TableEntry, error) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(quote.Identifier(e.name))
	sb.WriteString(".")
	sb.WriteString(quote.Identifier(name))
	sb.WriteString(" (")
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		mapped, err := mysqltype.FromArrow(field.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", field.Name, err)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote.Identifier(field.Name))
		sb.WriteString(" ")
		sb.WriteString(mysqltype.TypeString(mapped))
		if !field.Nullable {
			sb.WriteString(" NOT NULL")
		}
	}
	sb.WriteString(")")

	if _, err := e.catalog.db.ExecContext(ctx, sb.String()); err != nil {
		return nil, fmt.Errorf("failed to create table %q: %w", name, err)
	}
	entry, err := e.tables.CreateEntry(&TableEntry{
		name:       name,
		schemaName: e.name,
		schema:     schema,
	})
	if err != nil {
		return nil, err
	}
	return entry.(*TableEntry), nil
}
