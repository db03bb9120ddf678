package mysqlcatalog

import (
	"log/slog"
	"os"
	"time"

	"github.com/hugr-lab/mysql-catalog-go/catalog"
	"github.com/hugr-lab/mysql-catalog-go/mysqltype"
)

// Config contains configuration for an attached MySQL database.
// The zero value is a valid configuration with all defaults applied.
type Config struct {
	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// Valid values: slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// TinyInt1AsBoolean maps tinyint(1) columns to boolean instead of int8.
	// OPTIONAL: Defaults to true if nil.
	TinyInt1AsBoolean *bool

	// Bit1AsBoolean maps bit(1) columns to boolean instead of binary.
	// OPTIONAL: Defaults to true if nil.
	Bit1AsBoolean *bool

	// FilterPushdown translates scan filters into WHERE clauses executed by
	// the remote server. Disabling it only widens the rows the server
	// returns; the engine re-checks filters either way.
	// OPTIONAL: Defaults to true if nil.
	FilterPushdown *bool

	// SnapshotTTL is how long cached schema snapshots stay valid.
	// OPTIONAL: Uses catalog.DefaultSnapshotTTL if 0. Ignored when
	// Snapshots is set.
	SnapshotTTL time.Duration

	// Snapshots is the schema snapshot store shared between connections.
	// OPTIONAL: Uses a process-wide shared store if nil.
	Snapshots *catalog.SnapshotStore
}

// boolOr resolves an optional boolean against its default.
func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// logger resolves the configured logger.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *c.LogLevel}))
	}
	return slog.Default()
}

// typeSettings resolves the type mapping switches.
func (c Config) typeSettings() mysqltype.Settings {
	return mysqltype.Settings{
		TinyInt1AsBoolean: boolOr(c.TinyInt1AsBoolean, true),
		Bit1AsBoolean:     boolOr(c.Bit1AsBoolean, true),
	}
}

// snapshotStore resolves the snapshot store. Returns nil when the catalog
// should fall back to the process-wide shared store.
func (c Config) snapshotStore() (*catalog.SnapshotStore, error) {
	if c.Snapshots != nil {
		return c.Snapshots, nil
	}
	if c.SnapshotTTL > 0 {
		return catalog.NewSnapshotStore(c.SnapshotTTL)
	}
	return nil, nil
}
