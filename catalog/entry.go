// Package catalog mirrors the schema objects of a remote MySQL server.
//
// Discovery is expensive (a round trip to the remote server) and catalogs
// are read far more often than modified, so each Set amortizes discovery
// across its lifetime: entries are loaded lazily on first access and only an
// explicit clear forces re-discovery.
package catalog

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/hugr-lab/mysql-catalog-go/pushdown"
	"github.com/hugr-lab/mysql-catalog-go/quote"
)

// Kind identifies the kind of object a catalog entry represents.
type Kind int

const (
	KindSchema Kind = iota
	KindTable
	KindView
)

// String returns the SQL spelling of the kind, as used in DROP statements.
func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "SCHEMA"
	case KindTable:
		return "TABLE"
	case KindView:
		return "VIEW"
	default:
		return "UNKNOWN"
	}
}

// Entry is a named catalog object. Entries are immutable once inserted into
// a Set and are owned by the Set that stores them; callers receive
// non-owning references.
type Entry interface {
	// Name returns the object name. MUST return non-empty string.
	Name() string

	// Kind returns the object kind.
	Kind() Kind
}

// SchemaEntry represents a remote database schema.
// Implementations of all methods are goroutine-safe.
type SchemaEntry struct {
	name    string
	catalog *Catalog
	tables  *Set
}

// Name implements Entry.
func (e *SchemaEntry) Name() string {
	return e.name
}

// Kind implements Entry.
func (e *SchemaEntry) Kind() Kind {
	return KindSchema
}

// Table returns a table by name, triggering table discovery on first access.
// Returns (nil, nil) if the table doesn't exist (not an error).
func (e *SchemaEntry) Table(ctx context.Context, name string) (*TableEntry, error) {
	entry, err := e.tables.GetEntry(ctx, name)
	if err != nil || entry == nil {
		return nil, err
	}
	return entry.(*TableEntry), nil
}

// ScanTables invokes callback once per table in the schema.
// The callback must not re-enter the schema's table set.
func (e *SchemaEntry) ScanTables(ctx context.Context, callback func(*TableEntry)) error {
	return e.tables.Scan(ctx, func(entry Entry) {
		callback(entry.(*TableEntry))
	})
}

// DropTable drops a table on the remote server and removes it locally.
// The local entry is kept when the remote statement fails.
func (e *SchemaEntry) DropTable(ctx context.Context, name string, opts DropOptions) error {
	return e.tables.DropEntry(ctx, name, opts)
}

// TableEntry represents a remote table with its Arrow schema.
type TableEntry struct {
	name       string
	schemaName string
	schema     *arrow.Schema
}

// Name implements Entry.
func (e *TableEntry) Name() string {
	return e.name
}

// Kind implements Entry.
func (e *TableEntry) Kind() Kind {
	return KindTable
}

// SchemaName returns the name of the schema the table belongs to.
func (e *TableEntry) SchemaName() string {
	return e.schemaName
}

// ArrowSchema returns the logical schema describing the table columns.
func (e *TableEntry) ArrowSchema() *arrow.Schema {
	return e.schema
}

// RowID is the column id addressing the engine's synthetic row identifier.
// MySQL has no rowid; the projection emits NULL for it.
const RowID = -1

// ScanQuery builds the SELECT statement reading the projected columns.
//
// columnIDs index the fields of ArrowSchema (or RowID); filters are keyed by
// position within columnIDs. Supported filters become a pushed-down WHERE
// clause; unsupported ones are omitted and stay with the engine.
func (e *TableEntry) ScanQuery(columnIDs []int, filters map[int]pushdown.Filter) string {
	names := make([]string, e.schema.NumFields())
	for i := range names {
		names[i] = e.schema.Field(i).Name
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(columnIDs) == 0 {
		sb.WriteString("*")
	}
	for i, id := range columnIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		if id == RowID {
			sb.WriteString("NULL")
		} else {
			sb.WriteString(quote.Identifier(names[id]))
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(quote.Identifier(e.schemaName))
	sb.WriteString(".")
	sb.WriteString(quote.Identifier(e.name))
	if where := pushdown.TransformFilters(columnIDs, filters, names); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	return sb.String()
}
