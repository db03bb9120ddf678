package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testEntry is a minimal entry for set tests.
type testEntry struct {
	name string
}

func (e *testEntry) Name() string { return e.name }
func (e *testEntry) Kind() Kind   { return KindTable }

// fakeResult implements sql.Result.
type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 0, nil }

// fakeExec records executed statements and can be set to fail.
type fakeExec struct {
	mu         sync.Mutex
	statements []string
	err        error
}

func (f *fakeExec) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statements = append(f.statements, query)
	return fakeResult{}, nil
}

// countingLoader returns fixed entries and counts invocations.
func countingLoader(count *atomic.Int32, names ...string) LoadFunc {
	return func(ctx context.Context) ([]Entry, error) {
		count.Add(1)
		entries := make([]Entry, 0, len(names))
		for _, name := range names {
			entries = append(entries, &testEntry{name: name})
		}
		return entries, nil
	}
}

func TestSetLazyLoad(t *testing.T) {
	var loads atomic.Int32
	set := NewSet(KindTable, &fakeExec{}, countingLoader(&loads, "users", "orders"), nil)

	ctx := context.Background()
	if loads.Load() != 0 {
		t.Fatal("loader invoked before first access")
	}

	entry, err := set.GetEntry(ctx, "users")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if entry == nil || entry.Name() != "users" {
		t.Fatalf("GetEntry() = %v, want users", entry)
	}

	// Further lookups reuse the populated index.
	if _, err := set.GetEntry(ctx, "orders"); err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loader invoked %d times, want 1", got)
	}

	// A miss after load does not re-trigger discovery.
	entry, err = set.GetEntry(ctx, "absent")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("GetEntry(absent) = %v, want nil", entry)
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loader invoked %d times, want 1", got)
	}
}

func TestSetCaseInsensitiveLookup(t *testing.T) {
	var loads atomic.Int32
	set := NewSet(KindTable, &fakeExec{}, countingLoader(&loads, "foo"), nil)
	ctx := context.Background()

	exact, err := set.GetEntry(ctx, "foo")
	if err != nil || exact == nil {
		t.Fatalf("GetEntry(foo) = %v, %v", exact, err)
	}
	folded, err := set.GetEntry(ctx, "Foo")
	if err != nil {
		t.Fatalf("GetEntry(Foo) failed: %v", err)
	}
	if folded != exact {
		t.Errorf("case-insensitive lookup returned a different entry: %v != %v", folded, exact)
	}
	if upper, _ := set.GetEntry(ctx, "FOO"); upper != exact {
		t.Errorf("GetEntry(FOO) = %v, want %v", upper, exact)
	}
}

// TestSetConcurrentFirstAccess verifies discovery executes exactly once when
// many goroutines race on the first lookup.
func TestSetConcurrentFirstAccess(t *testing.T) {
	var loads atomic.Int32
	slowLoader := func(ctx context.Context) ([]Entry, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond)
		return []Entry{&testEntry{name: "t"}}, nil
	}
	set := NewSet(KindTable, &fakeExec{}, slowLoader, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := set.GetEntry(context.Background(), "t")
			if err != nil {
				errs <- err
				return
			}
			if entry == nil {
				errs <- errors.New("entry not found")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loader invoked %d times under concurrency, want 1", got)
	}
}

func TestSetClearRetriggersDiscovery(t *testing.T) {
	var loads atomic.Int32
	set := NewSet(KindTable, &fakeExec{}, countingLoader(&loads, "t"), nil)
	ctx := context.Background()

	if _, err := set.GetEntry(ctx, "t"); err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	set.ClearEntries()
	if _, err := set.GetEntry(ctx, "t"); err != nil {
		t.Fatalf("GetEntry() after clear failed: %v", err)
	}
	if got := loads.Load(); got != 2 {
		t.Errorf("loader invoked %d times, want 2 (once per load cycle)", got)
	}
}

func TestSetLoadFailure(t *testing.T) {
	var loads atomic.Int32
	loadErr := errors.New("connection lost")
	set := NewSet(KindTable, &fakeExec{}, func(ctx context.Context) ([]Entry, error) {
		loads.Add(1)
		return nil, loadErr
	}, nil)
	ctx := context.Background()

	if _, err := set.GetEntry(ctx, "t"); !errors.Is(err, loadErr) {
		t.Fatalf("GetEntry() = %v, want wrapped load error", err)
	}
	// A failed load leaves the set unloaded; the next access retries.
	if _, err := set.GetEntry(ctx, "t"); !errors.Is(err, loadErr) {
		t.Fatalf("GetEntry() = %v, want wrapped load error", err)
	}
	if got := loads.Load(); got != 2 {
		t.Errorf("loader invoked %d times, want 2", got)
	}
}

func TestSetCreateEntry(t *testing.T) {
	var loads atomic.Int32
	set := NewSet(KindTable, &fakeExec{}, countingLoader(&loads), nil)
	ctx := context.Background()

	// CreateEntry does not require the set to be loaded.
	stored, err := set.CreateEntry(&testEntry{name: "fresh"})
	if err != nil {
		t.Fatalf("CreateEntry() failed: %v", err)
	}
	if loads.Load() != 0 {
		t.Error("CreateEntry triggered discovery")
	}

	got, err := set.GetEntry(ctx, "FRESH")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if got != stored {
		t.Errorf("GetEntry() = %v, want the created entry", got)
	}
}

func TestSetCreateEntryEmptyName(t *testing.T) {
	set := NewSet(KindTable, &fakeExec{}, countingLoader(new(atomic.Int32)), nil)
	if _, err := set.CreateEntry(&testEntry{}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("CreateEntry(empty name) = %v, want ErrInvalidEntry", err)
	}
}

func TestSetDropEntryStatements(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		qualifier string
		opts      DropOptions
		want      string
	}{
		{
			name: "plain table",
			kind: KindTable,
			want: "DROP TABLE `t`",
		},
		{
			name:      "qualified table with options",
			kind:      KindTable,
			qualifier: "mydb",
			opts:      DropOptions{IfExists: true, Cascade: true},
			want:      "DROP TABLE IF EXISTS `mydb`.`t` CASCADE",
		},
		{
			name: "schema never cascades",
			kind: KindSchema,
			opts: DropOptions{IfExists: true, Cascade: true},
			want: "DROP SCHEMA IF EXISTS `t`",
		},
		{
			name: "view",
			kind: KindView,
			opts: DropOptions{Cascade: true},
			want: "DROP VIEW `t` CASCADE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExec{}
			var loads atomic.Int32
			set := NewSet(tt.kind, exec, countingLoader(&loads, "t"), nil)
			set.qualifier = tt.qualifier

			if err := set.DropEntry(context.Background(), "t", tt.opts); err != nil {
				t.Fatalf("DropEntry() failed: %v", err)
			}
			if len(exec.statements) != 1 || exec.statements[0] != tt.want {
				t.Errorf("executed %q, want %q", exec.statements, tt.want)
			}
		})
	}
}

func TestSetDropEntryRemovesLocal(t *testing.T) {
	exec := &fakeExec{}
	var loads atomic.Int32
	set := NewSet(KindTable, exec, countingLoader(&loads, "t"), nil)
	ctx := context.Background()

	if _, err := set.GetEntry(ctx, "t"); err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if err := set.DropEntry(ctx, "t", DropOptions{}); err != nil {
		t.Fatalf("DropEntry() failed: %v", err)
	}
	entry, err := set.GetEntry(ctx, "t")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("entry still present after drop: %v", entry)
	}
	if entry, _ := set.GetEntry(ctx, "T"); entry != nil {
		t.Errorf("case-insensitive index still resolves dropped entry: %v", entry)
	}
}

// TestSetDropEntryRemoteFailure verifies a failed remote statement leaves the
// local entry in place.
func TestSetDropEntryRemoteFailure(t *testing.T) {
	exec := &fakeExec{err: errors.New("access denied")}
	var loads atomic.Int32
	set := NewSet(KindTable, exec, countingLoader(&loads, "t"), nil)
	ctx := context.Background()

	if _, err := set.GetEntry(ctx, "t"); err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if err := set.DropEntry(ctx, "t", DropOptions{}); err == nil {
		t.Fatal("DropEntry() succeeded, want remote error")
	}
	entry, err := set.GetEntry(ctx, "t")
	if err != nil {
		t.Fatalf("GetEntry() failed: %v", err)
	}
	if entry == nil {
		t.Error("entry removed although the remote statement failed")
	}
}

func TestSetScan(t *testing.T) {
	var loads atomic.Int32
	set := NewSet(KindTable, &fakeExec{}, countingLoader(&loads, "a", "b", "c"), nil)

	seen := make(map[string]bool)
	err := set.Scan(context.Background(), func(entry Entry) {
		seen[entry.Name()] = true
	})
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if len(seen) != 3 || !seen["a"] || !seen["b"] || !seen["c"] {
		t.Errorf("Scan() visited %v, want a, b, c", seen)
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loader invoked %d times, want 1", got)
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindSchema: "SCHEMA",
		KindTable:  "TABLE",
		KindView:   "VIEW",
		Kind(99):   "UNKNOWN",
	} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestSetReloadAfterClearSeesNewEntries(t *testing.T) {
	var generation atomic.Int32
	set := NewSet(KindTable, &fakeExec{}, func(ctx context.Context) ([]Entry, error) {
		gen := generation.Add(1)
		return []Entry{&testEntry{name: fmt.Sprintf("t%d", gen)}}, nil
	}, nil)
	ctx := context.Background()

	if entry, _ := set.GetEntry(ctx, "t1"); entry == nil {
		t.Fatal("t1 not found after first load")
	}
	set.ClearEntries()
	if entry, _ := set.GetEntry(ctx, "t2"); entry == nil {
		t.Fatal("t2 not found after re-discovery")
	}
	if entry, _ := set.GetEntry(ctx, "t1"); entry != nil {
		t.Error("stale entry survived ClearEntries")
	}
}
