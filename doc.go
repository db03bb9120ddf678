// Package mysqlcatalog attaches remote MySQL databases to an Arrow-based
// query engine.
//
// The package connects to a MySQL server from a libmysql-style connection
// string, mirrors its schemas and tables into a lazily-populated catalog,
// maps MySQL column types onto Arrow types, and translates engine filter
// predicates into WHERE clauses executed by the remote server.
//
// # Quick Start
//
// Attach a database and build a scan query in a few lines:
//
//	conn, err := mysqlcatalog.Attach(ctx, "host=localhost user=root db=mydb", mysqlcatalog.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	schema, err := conn.Catalog().Schema(ctx, "") // default schema from the DSN
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table, err := schema.Table(ctx, "users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// SELECT `id`, `name` FROM `mydb`.`users` WHERE (`id` > 10)
//	query := conn.ScanQuery(table, []int{0, 1}, map[int]pushdown.Filter{
//	    0: pushdown.ConstantFilter{Op: pushdown.OpGreaterThan, Value: int64(10)},
//	})
//
// # Architecture
//
// The package splits into focused layers:
//
//   - dsn: connection string parsing and connection establishment
//   - mysqltype: MySQL <-> Arrow type mapping
//   - catalog: lazy, goroutine-safe mirror of remote schemas and tables
//   - pushdown: predicate translation into MySQL WHERE fragments
//   - quote: identifier and literal quoting shared by all SQL generation
//
// Attach ties them together behind the Connection facade; each layer is also
// usable on its own against an existing *sqlx.DB session.
//
// # Catalog Consistency
//
// The catalog is a cache of the remote server's state at discovery time.
// Remote changes made outside this process are not observed until
// Catalog().ClearCache() forces re-discovery. Schema lists are additionally
// shared between connections to the same server through a TTL snapshot
// store, so attaching twice does not pay for discovery twice.
//
// # Filter Pushdown
//
// Pushdown is best-effort: predicates the translator cannot express remain
// with the engine, which must re-check residual filters against returned
// rows. Disabling pushdown via Config only widens the rows the server
// returns; it never changes query results.
//
// # Logging
//
// The package logs through log/slog. Provide a configured logger via
// Config.Logger, a level via Config.LogLevel, or neither to use
// slog.Default().
package mysqlcatalog
