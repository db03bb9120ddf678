package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/hugr-lab/mysql-catalog-go/quote"
)

// ErrInvalidEntry indicates an entry that cannot be stored, such as one with
// an empty name. This is a programming error in the calling layer.
var ErrInvalidEntry = errors.New("invalid catalog entry")

// LoadFunc discovers the entries of a Set from the remote server.
// It is invoked at most once per load cycle, without any Set lock held, and
// may block on network I/O.
type LoadFunc func(ctx context.Context) ([]Entry, error)

// DropOptions configures DropEntry behavior.
type DropOptions struct {
	// IfExists tolerates a missing target (DROP ... IF EXISTS).
	IfExists bool

	// Cascade drops dependent objects as well. Ignored for schema sets.
	Cascade bool
}

// Set is a lazily-populated, goroutine-safe index of catalog entries of one
// kind, with case-insensitive secondary lookup.
//
// The first lookup or scan triggers the injected LoadFunc exactly once; the
// load gate is separate from the map lock so a long discovery round trip
// never runs while holding it. Entries are immutable once inserted, so
// concurrent readers only contend on the index structures.
type Set struct {
	kind   Kind
	exec   sqlx.ExecerContext
	load   LoadFunc
	logger *slog.Logger

	// qualifier, when set, prefixes names in generated DROP statements
	// (tables are dropped as `schema`.`table`).
	qualifier string

	// loadMu serializes the whole check-and-load sequence so concurrent
	// first accesses trigger discovery exactly once.
	loadMu sync.Mutex

	// mu guards entries, nameIndex and loaded.
	mu        sync.Mutex
	loaded    bool
	entries   map[string]Entry
	nameIndex map[string]string // lowercase(name) -> stored name
}

// NewSet creates an empty set of the given kind.
// exec is the channel DROP statements are issued through; load discovers the
// entries on first access.
func NewSet(kind Kind, exec sqlx.ExecerContext, load LoadFunc, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{
		kind:      kind,
		exec:      exec,
		load:      load,
		logger:    logger,
		entries:   make(map[string]Entry),
		nameIndex: make(map[string]string),
	}
}

// ensureLoaded runs discovery if the set has not been populated yet.
// The loaded flag is checked and set under loadMu so two callers can never
// both enter the loader; the discovery call itself runs without mu held.
func (s *Set) ensureLoaded(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}

	entries, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s entries: %w", strings.ToLower(s.kind.String()), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.insertLocked(entry)
	}
	s.loaded = true
	return nil
}

// insertLocked stores an entry in both indexes. Caller holds mu.
func (s *Set) insertLocked(entry Entry) {
	name := entry.Name()
	s.entries[name] = entry
	s.nameIndex[strings.ToLower(name)] = name
}

// GetEntry returns the entry with the given name, triggering discovery on
// first access. Lookup falls back to the case-insensitive index when the
// exact name is absent. Returns (nil, nil) if no entry exists.
func (s *Set) GetEntry(ctx context.Context, name string) (Entry, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[name]; ok {
		return entry, nil
	}
	canonical, ok := s.nameIndex[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	entry, ok := s.entries[canonical]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// Scan invokes callback once per entry, triggering discovery on first
// access. The map lock is held for the full iteration: callbacks must not
// re-enter the set.
func (s *Set) Scan(ctx context.Context, callback func(Entry)) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		callback(entry)
	}
	return nil
}

// CreateEntry inserts an entry into the set and returns a non-owning
// reference to it. The set does not need to be loaded. Fails with
// ErrInvalidEntry when the entry name is empty.
func (s *Set) CreateEntry(entry Entry) (Entry, error) {
	if entry.Name() == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidEntry)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(entry)
	return entry, nil
}

// DropEntry issues a DROP statement for the named object and, only when the
// remote statement succeeds, removes the entry from the local index. A
// remote failure leaves the local entry in place so the cache stays
// consistent with the server.
func (s *Set) DropEntry(ctx context.Context, name string, opts DropOptions) error {
	var sb strings.Builder
	sb.WriteString("DROP ")
	sb.WriteString(s.kind.String())
	sb.WriteString(" ")
	if opts.IfExists {
		sb.WriteString("IF EXISTS ")
	}
	if s.qualifier != "" {
		sb.WriteString(quote.Identifier(s.qualifier))
		sb.WriteString(".")
	}
	sb.WriteString(quote.Identifier(name))
	if s.kind != KindSchema && opts.Cascade {
		sb.WriteString(" CASCADE")
	}

	if _, err := s.exec.ExecContext(ctx, sb.String()); err != nil {
		return fmt.Errorf("failed to drop %s %q: %w", strings.ToLower(s.kind.String()), name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, name)
	lower := strings.ToLower(name)
	if canonical, ok := s.nameIndex[lower]; ok && canonical == name {
		delete(s.nameIndex, lower)
	}
	return nil
}

// ClearEntries atomically empties the set and marks it unloaded, forcing
// re-discovery on the next access.
func (s *Set) ClearEntries() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	s.nameIndex = make(map[string]string)
	s.loaded = false
}
