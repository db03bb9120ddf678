package mysqlcatalog

import (
	"github.com/hugr-lab/mysql-catalog-go/catalog"
	"github.com/hugr-lab/mysql-catalog-go/dsn"
	"github.com/hugr-lab/mysql-catalog-go/mysqltype"
)

// Sentinel errors of the subpackages, re-exported so callers can classify
// failures with errors.Is without importing each layer.
var (
	// ErrMalformedDSN indicates a syntactically invalid connection string.
	ErrMalformedDSN = dsn.ErrMalformedDSN

	// ErrUnsupportedType indicates an Arrow type with no MySQL equivalent.
	ErrUnsupportedType = mysqltype.ErrUnsupportedType

	// ErrNoDefaultSchema indicates the default schema was requested but the
	// connection string named no database.
	ErrNoDefaultSchema = catalog.ErrNoDefaultSchema

	// ErrInvalidEntry indicates a catalog entry that cannot be stored.
	ErrInvalidEntry = catalog.ErrInvalidEntry
)
