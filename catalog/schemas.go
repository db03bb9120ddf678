package catalog

import (
	"context"
	"fmt"
	"time"
)

// schemaQuery lists all schemas visible to the session.
const schemaQuery = `
SELECT schema_name
FROM information_schema.schemata`

// newSchemaEntry builds a schema entry with its lazily-discovered table set.
func (c *Catalog) newSchemaEntry(name string) *SchemaEntry {
	entry := &SchemaEntry{name: name, catalog: c}
	entry.tables = NewSet(KindTable, c.db, func(ctx context.Context) ([]Entry, error) {
		return c.loadTables(ctx, name)
	}, c.logger)
	entry.tables.qualifier = name
	return entry
}

// loadSchemas discovers the schemas of the remote server. A fresh snapshot
// from a previous discovery is used instead of the round trip when present.
func (c *Catalog) loadSchemas(ctx context.Context) ([]Entry, error) {
	if snap, ok := c.snapshots.Get(c.key); ok {
		c.logger.Debug("schemas loaded from snapshot",
			"count", len(snap.Names),
			"read_time", snap.ReadTime,
		)
		entries := make([]Entry, 0, len(snap.Names))
		for _, name := range snap.Names {
			entries = append(entries, c.newSchemaEntry(name))
		}
		return entries, nil
	}

	rows, err := c.db.QueryxContext(ctx, schemaQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemata: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schemata: %w", err)
	}

	if err := c.snapshots.Put(c.key, Snapshot{Names: names, ReadTime: time.Now()}); err != nil {
		c.logger.Warn("failed to store schema snapshot", "error", err)
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, c.newSchemaEntry(name))
	}
	return entries, nil
}
