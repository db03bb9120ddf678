package catalog

import (
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	gocache "github.com/patrickmn/go-cache"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultSnapshotTTL is how long a cached schema snapshot stays valid.
const DefaultSnapshotTTL = 5 * time.Minute

// Snapshot is a point-in-time list of discovered schema names.
// Snapshots let a catalog skip the discovery round trip when another catalog
// for the same server already performed it recently.
type Snapshot struct {
	Names    []string  `msgpack:"names"`
	ReadTime time.Time `msgpack:"read_time"`
}

// SnapshotStore is a process-wide TTL cache of schema snapshots, keyed by
// connection string. Stored snapshots are msgpack-encoded and
// zstd-compressed. Safe for concurrent use.
type SnapshotStore struct {
	cache   *gocache.Cache
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewSnapshotStore creates a snapshot store with the given TTL.
func NewSnapshotStore(ttl time.Duration) (*SnapshotStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &SnapshotStore{
		cache:   gocache.New(ttl, 2*ttl),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// defaultSnapshots is shared by all catalogs that do not bring their own
// store, mirroring a database-wide object cache.
var defaultSnapshots = func() *SnapshotStore {
	s, err := NewSnapshotStore(DefaultSnapshotTTL)
	if err != nil {
		panic(err)
	}
	return s
}()

// Put stores a snapshot under the given key.
func (s *SnapshotStore) Put(key string, snap Snapshot) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	// EncodeAll is goroutine-safe.
	compressed := s.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	s.cache.Set(key, compressed, gocache.DefaultExpiration)
	return nil
}

// Get returns the snapshot stored under key, if present and not expired.
func (s *SnapshotStore) Get(key string) (Snapshot, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return Snapshot{}, false
	}
	compressed, ok := v.([]byte)
	if !ok {
		return Snapshot{}, false
	}
	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

// Delete removes the snapshot stored under key.
func (s *SnapshotStore) Delete(key string) {
	s.cache.Delete(key)
}
