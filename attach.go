package mysqlcatalog

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/hugr-lab/mysql-catalog-go/catalog"
	"github.com/hugr-lab/mysql-catalog-go/dsn"
	"github.com/hugr-lab/mysql-catalog-go/pushdown"
)

// Connection is an attached remote MySQL database: an established session
// plus the catalog mirroring its schemas.
// All methods are goroutine-safe.
type Connection struct {
	db       *sqlx.DB
	params   dsn.Parameters
	catalog  *catalog.Catalog
	pushdown bool
}

// Attach connects to the MySQL server described by the connection string and
// mirrors its catalog.
//
// The connection string is a space-separated list of key=value pairs
// (host, user, passwd, db, port, socket, workload); fields it leaves unset
// are filled from the MYSQL_* environment variables. The caller owns the
// returned connection and must Close it.
func Attach(ctx context.Context, connection string, cfg Config) (*Connection, error) {
	params, err := dsn.Parse(connection)
	if err != nil {
		return nil, err
	}
	db, err := dsn.Connect(ctx, connection)
	if err != nil {
		return nil, err
	}
	store, err := cfg.snapshotStore()
	if err != nil {
		db.Close()
		return nil, err
	}
	cat := catalog.New(db, connection, params.Database, catalog.Options{
		Logger:    cfg.logger(),
		Types:     cfg.typeSettings(),
		Snapshots: store,
	})
	return &Connection{
		db:       db,
		params:   params,
		catalog:  cat,
		pushdown: boolOr(cfg.FilterPushdown, true),
	}, nil
}

// Catalog returns the catalog mirroring the attached server.
func (c *Connection) Catalog() *catalog.Catalog {
	return c.catalog
}

// Params returns the parsed connection parameters, with environment
// fallbacks applied.
func (c *Connection) Params() dsn.Parameters {
	return c.params
}

// DB returns the underlying session for direct queries.
func (c *Connection) DB() *sqlx.DB {
	return c.db
}

// ScanQuery builds the SELECT statement reading the projected columns of a
// table. Filters are pushed down to the remote server unless pushdown is
// disabled in the configuration; either way the engine must re-check
// residual filters against the returned rows.
func (c *Connection) ScanQuery(table *catalog.TableEntry, columnIDs []int, filters map[int]pushdown.Filter) string {
	if !c.pushdown {
		filters = nil
	}
	return table.ScanQuery(columnIDs, filters)
}

// Exec runs a statement on the remote server. The session is opened with
// multi-statement support, so query may hold several statements separated by
// semicolons.
func (c *Connection) Exec(ctx context.Context, query string) error {
	_, err := c.db.ExecContext(ctx, query)
	return err
}

// Ping verifies the session is still usable.
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the session. The catalog must not be used afterwards.
func (c *Connection) Close() error {
	return c.db.Close()
}
