package mysqlcatalog

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/hugr-lab/mysql-catalog-go/catalog"
	"github.com/hugr-lab/mysql-catalog-go/pushdown"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config

	settings := cfg.typeSettings()
	if !settings.TinyInt1AsBoolean || !settings.Bit1AsBoolean {
		t.Errorf("default type settings = %+v, want both switches on", settings)
	}
	if !boolOr(cfg.FilterPushdown, true) {
		t.Error("filter pushdown disabled by default")
	}
	if cfg.logger() != slog.Default() {
		t.Error("default logger is not slog.Default()")
	}
	store, err := cfg.snapshotStore()
	if err != nil {
		t.Fatalf("snapshotStore() failed: %v", err)
	}
	if store != nil {
		t.Error("zero config built a private snapshot store, want shared default")
	}
}

func TestConfigOverrides(t *testing.T) {
	off := false
	level := slog.LevelDebug
	cfg := Config{
		LogLevel:          &level,
		TinyInt1AsBoolean: &off,
		Bit1AsBoolean:     &off,
		FilterPushdown:    &off,
		SnapshotTTL:       time.Second,
	}

	settings := cfg.typeSettings()
	if settings.TinyInt1AsBoolean || settings.Bit1AsBoolean {
		t.Errorf("type settings = %+v, want both switches off", settings)
	}
	if boolOr(cfg.FilterPushdown, true) {
		t.Error("filter pushdown still on")
	}
	logger := cfg.logger()
	if logger == slog.Default() {
		t.Error("LogLevel did not build a dedicated logger")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("configured logger does not pass debug records")
	}
	store, err := cfg.snapshotStore()
	if err != nil {
		t.Fatalf("snapshotStore() failed: %v", err)
	}
	if store == nil {
		t.Error("SnapshotTTL did not build a private snapshot store")
	}
}

func TestConfigExplicitSnapshotStore(t *testing.T) {
	own, err := catalog.NewSnapshotStore(time.Minute)
	if err != nil {
		t.Fatalf("NewSnapshotStore() failed: %v", err)
	}
	cfg := Config{Snapshots: own, SnapshotTTL: time.Hour}
	store, err := cfg.snapshotStore()
	if err != nil {
		t.Fatalf("snapshotStore() failed: %v", err)
	}
	if store != own {
		t.Error("explicit snapshot store not used")
	}
}

// TestConnectionScanQueryPushdownToggle verifies disabled pushdown drops the
// WHERE clause but keeps the projection.
func TestConnectionScanQueryPushdownToggle(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := catalog.NewSnapshotStore(time.Minute)
	if err != nil {
		t.Fatalf("NewSnapshotStore() failed: %v", err)
	}
	cat := catalog.New(sqlx.NewDb(db, "sqlmock"), "mysql://"+t.Name(), "mydb", catalog.Options{
		Snapshots: store,
	})

	mock.ExpectQuery("schemata").WillReturnRows(
		sqlmock.NewRows([]string{"schema_name"}).AddRow("mydb"),
	)
	mock.ExpectQuery("information_schema.columns").WithArgs("mydb").WillReturnRows(
		sqlmock.NewRows([]string{"t", "c", "dt", "ct", "n", "p", "s"}).
			AddRow("users", "id", "bigint", "bigint", "NO", 20, 0),
	)

	ctx := context.Background()
	schema, err := cat.Schema(ctx, "mydb")
	if err != nil {
		t.Fatalf("Schema() failed: %v", err)
	}
	table, err := schema.Table(ctx, "users")
	if err != nil || table == nil {
		t.Fatalf("Table() = %v, %v", table, err)
	}

	filters := map[int]pushdown.Filter{
		0: pushdown.ConstantFilter{Op: pushdown.OpEqual, Value: int64(1)},
	}

	conn := &Connection{catalog: cat, pushdown: true}
	want := "SELECT `id` FROM `mydb`.`users` WHERE (`id` = 1)"
	if got := conn.ScanQuery(table, []int{0}, filters); got != want {
		t.Errorf("ScanQuery() = %q, want %q", got, want)
	}

	conn.pushdown = false
	want = "SELECT `id` FROM `mydb`.`users`"
	if got := conn.ScanQuery(table, []int{0}, filters); got != want {
		t.Errorf("ScanQuery() with pushdown off = %q, want %q", got, want)
	}
}
