package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hugr-lab/mysql-catalog-go/mysqltype"
	"github.com/hugr-lab/mysql-catalog-go/quote"
)

// ErrNoDefaultSchema is returned when the default schema is requested but no
// database was provided in the connection string.
var ErrNoDefaultSchema = errors.New("no database was provided in the connection string")

// Session is the query/transaction channel used to reach the remote server.
// *sqlx.DB and *sqlx.Tx both satisfy it.
type Session interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// OnConflict specifies behavior when a created object already exists.
type OnConflict string

const (
	// OnConflictError returns an error if the object exists.
	OnConflictError OnConflict = "error"

	// OnConflictIgnore silently returns the existing object.
	OnConflictIgnore OnConflict = "ignore"

	// OnConflictReplace drops and recreates the object.
	OnConflictReplace OnConflict = "replace"
)

// Options configures a Catalog.
type Options struct {
	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// Types holds the session-level type mapping switches.
	Types mysqltype.Settings

	// Snapshots is the schema snapshot store consulted before discovery.
	// OPTIONAL: Uses a process-wide shared store if nil.
	Snapshots *SnapshotStore
}

// Catalog mirrors the schemas of one remote MySQL server.
// All methods are goroutine-safe.
type Catalog struct {
	key           string // snapshot store key, the connection string
	defaultSchema string
	db            Session
	logger        *slog.Logger
	types         mysqltype.Settings
	snapshots     *SnapshotStore
	schemas       *Set
}

// New creates a catalog over an established session.
//
// key identifies the remote server in the snapshot store (the connection
// string); defaultSchema is the database named in the connection string, and
// may be empty.
func New(db Session, key, defaultSchema string, opts Options) *Catalog {
	c := &Catalog{
		key:           key,
		defaultSchema: defaultSchema,
		db:            db,
		logger:        opts.Logger,
		types:         opts.Types,
		snapshots:     opts.Snapshots,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.snapshots == nil {
		c.snapshots = defaultSnapshots
	}
	c.schemas = NewSet(KindSchema, db, c.loadSchemas, c.logger)
	return c
}

// DefaultSchema returns the schema named in the connection string, or "".
func (c *Catalog) DefaultSchema() string {
	return c.defaultSchema
}

// Schema returns a schema by name, triggering discovery on first access.
// An empty name selects the default schema from the connection string.
// Returns (nil, nil) if the schema doesn't exist (not an error).
func (c *Catalog) Schema(ctx context.Context, name string) (*SchemaEntry, error) {
	if name == "" {
		if c.defaultSchema == "" {
			return nil, fmt.Errorf("attempting to fetch the default schema: %w", ErrNoDefaultSchema)
		}
		name = c.defaultSchema
	}
	entry, err := c.schemas.GetEntry(ctx, name)
	if err != nil || entry == nil {
		return nil, err
	}
	return entry.(*SchemaEntry), nil
}

// ScanSchemas invokes callback once per schema.
// The callback must not re-enter the catalog.
func (c *Catalog) ScanSchemas(ctx context.Context, callback func(*SchemaEntry)) error {
	return c.schemas.Scan(ctx, func(entry Entry) {
		callback(entry.(*SchemaEntry))
	})
}

// CreateSchema creates a schema on the remote server and registers it
// locally. With OnConflictReplace an existing schema is dropped first; with
// OnConflictIgnore an existing entry is returned unchanged.
func (c *Catalog) CreateSchema(ctx context.Context, name string, onConflict OnConflict) (*SchemaEntry, error) {
	switch onConflict {
	case OnConflictReplace:
		if err := c.schemas.DropEntry(ctx, name, DropOptions{IfExists: true}); err != nil {
			return nil, err
		}
	case OnConflictIgnore:
		existing, err := c.Schema(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	if _, err := c.db.ExecContext(ctx, "CREATE SCHEMA "+quote.Identifier(name)); err != nil {
		return nil, fmt.Errorf("failed to create schema %q: %w", name, err)
	}
	entry, err := c.schemas.CreateEntry(c.newSchemaEntry(name))
	if err != nil {
		return nil, err
	}
	return entry.(*SchemaEntry), nil
}

// DropSchema drops a schema on the remote server and removes it locally.
func (c *Catalog) DropSchema(ctx context.Context, name string, opts DropOptions) error {
	return c.schemas.DropEntry(ctx, name, opts)
}

// ClearCache empties the schema mirror, forcing re-discovery on next
// access, and invalidates the stored snapshot.
func (c *Catalog) ClearCache() {
	c.schemas.ClearEntries()
	c.snapshots.Delete(c.key)
}

// CacheSchemas loads the schema list if needed and stores a snapshot of it,
// so other catalogs for the same server skip the discovery round trip.
func (c *Catalog) CacheSchemas(ctx context.Context) error {
	var names []string
	err := c.schemas.Scan(ctx, func(entry Entry) {
		names = append(names, entry.Name())
	})
	if err != nil {
		return err
	}
	return c.snapshots.Put(c.key, Snapshot{Names: names, ReadTime: time.Now()})
}

// DatabaseSize returns the total size in bytes of the default schema.
func (c *Catalog) DatabaseSize(ctx context.Context) (int64, error) {
	if c.defaultSchema == "" {
		return 0, fmt.Errorf("attempting to fetch the database size: %w", ErrNoDefaultSchema)
	}
	query := `
SELECT COALESCE(SUM(data_length + index_length), 0)
FROM information_schema.tables
WHERE table_schema = ` + quote.Literal(c.defaultSchema)

	var size int64
	row := c.db.QueryRowxContext(ctx, query)
	if err := row.Scan(&size); err != nil {
		return 0, fmt.Errorf("failed to fetch database size: %w", err)
	}
	return size, nil
}
