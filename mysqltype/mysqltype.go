// Package mysqltype translates between the MySQL type system and Arrow.
//
// The inbound direction (ToArrow) is total: every MySQL column type maps to
// some Arrow type, with documented lossy approximations (json, enum and set
// become text; time becomes text because a MySQL TIME is an interval-like
// range, not a clock time). The outbound direction (FromArrow) fails hard on
// composite types — MySQL has no equivalent and a silent downgrade would
// corrupt data.
package mysqltype

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// ErrUnsupportedType indicates an Arrow type with no MySQL equivalent.
var ErrUnsupportedType = errors.New("unsupported type")

// Descriptor describes a remote column type as reported by MySQL.
type Descriptor struct {
	// Name is the canonical lower-cased type name, e.g. "decimal", "varchar".
	Name string

	// ColumnType is the raw column type string, which may carry modifiers
	// such as a display width or unsignedness, e.g. "tinyint(1)",
	// "int unsigned".
	ColumnType string

	// Precision and Scale are meaningful for numeric types only.
	Precision int64
	Scale     int64
}

// Settings holds session-level behavior switches for type mapping.
// They mirror the engine settings mysql_tinyint1_as_boolean and
// mysql_bit1_as_boolean.
type Settings struct {
	// TinyInt1AsBoolean maps tinyint(1) columns to boolean.
	TinyInt1AsBoolean bool

	// Bit1AsBoolean maps bit(1) columns to boolean.
	Bit1AsBoolean bool
}

// Naive timestamp types use microsecond precision without a time zone;
// MySQL "timestamp" columns are timezone aware while "datetime" columns
// are not.
var (
	timestampNaive = &arrow.TimestampType{Unit: arrow.Microsecond}
	timestampTZ    = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
)

// ToArrow maps a MySQL column type onto an Arrow type.
// It is a total function: unrecognized type names fall back to text.
func ToArrow(desc Descriptor, settings Settings) arrow.DataType {
	unsigned := strings.Contains(desc.ColumnType, "unsigned")
	switch desc.Name {
	case "tinyint":
		if desc.ColumnType == "tinyint(1)" && settings.TinyInt1AsBoolean {
			return arrow.FixedWidthTypes.Boolean
		}
		if unsigned {
			return arrow.PrimitiveTypes.Uint8
		}
		return arrow.PrimitiveTypes.Int8
	case "smallint":
		if unsigned {
			return arrow.PrimitiveTypes.Uint16
		}
		return arrow.PrimitiveTypes.Int16
	case "mediumint", "int":
		if unsigned {
			return arrow.PrimitiveTypes.Uint32
		}
		return arrow.PrimitiveTypes.Int32
	case "bigint":
		if unsigned {
			return arrow.PrimitiveTypes.Uint64
		}
		return arrow.PrimitiveTypes.Int64
	case "float":
		return arrow.PrimitiveTypes.Float32
	case "double":
		return arrow.PrimitiveTypes.Float64
	case "decimal":
		if desc.Precision > 0 && desc.Precision <= 38 {
			return &arrow.Decimal128Type{Precision: int32(desc.Precision), Scale: int32(desc.Scale)}
		}
		// Precision overflow degrades to floating point rather than failing.
		return arrow.PrimitiveTypes.Float64
	case "date":
		return arrow.FixedWidthTypes.Date32
	case "time":
		// A MySQL TIME stores ranges between -838:00:00 and 838:00:00 and
		// cannot be represented by a time-of-day type.
		return arrow.BinaryTypes.String
	case "timestamp":
		return timestampTZ
	case "datetime":
		return timestampNaive
	case "year":
		return arrow.PrimitiveTypes.Int32
	case "json", "enum", "set":
		return arrow.BinaryTypes.String
	case "bit":
		if desc.ColumnType == "bit(1)" && settings.Bit1AsBoolean {
			return arrow.FixedWidthTypes.Boolean
		}
		return arrow.BinaryTypes.Binary
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary",
		"geometry", "point", "linestring", "polygon", "multipoint",
		"multilinestring", "multipolygon", "geomcollection":
		return arrow.BinaryTypes.Binary
	case "varchar", "tinytext", "mediumtext", "longtext", "text", "char":
		return arrow.BinaryTypes.String
	}
	// Fallback for unknown types.
	return arrow.BinaryTypes.String
}

// FromArrow maps an Arrow type onto the MySQL type used when generating DDL.
// Timestamps of any precision narrow to the single supported microsecond
// granularity and 256-bit decimals widen to double. Composite types fail
// with ErrUnsupportedType.
func FromArrow(dt arrow.DataType) (arrow.DataType, error) {
	switch dt.ID() {
	case arrow.BOOL,
		arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64,
		arrow.BINARY, arrow.STRING,
		arrow.DATE32, arrow.DECIMAL128:
		return dt, nil
	case arrow.LARGE_STRING:
		return arrow.BinaryTypes.String, nil
	case arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return arrow.BinaryTypes.Binary, nil
	case arrow.DATE64:
		return arrow.FixedWidthTypes.Date32, nil
	case arrow.TIMESTAMP:
		if ts, ok := dt.(*arrow.TimestampType); ok && ts.TimeZone != "" {
			return timestampTZ, nil
		}
		return timestampNaive, nil
	case arrow.DECIMAL256:
		return arrow.PrimitiveTypes.Float64, nil
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return nil, fmt.Errorf("%w: MySQL does not support arrays - %s", ErrUnsupportedType, dt)
	case arrow.STRUCT, arrow.MAP, arrow.DENSE_UNION, arrow.SPARSE_UNION:
		return nil, fmt.Errorf("%w: MySQL does not support composite types - %s", ErrUnsupportedType, dt)
	default:
		return arrow.BinaryTypes.String, nil
	}
}

// TypeString renders the MySQL spelling of an Arrow type for generated DDL.
func TypeString(dt arrow.DataType) string {
	switch dt.ID() {
	case arrow.BOOL:
		return "BOOLEAN"
	case arrow.INT8:
		return "TINYINT"
	case arrow.INT16:
		return "SMALLINT"
	case arrow.INT32:
		return "INTEGER"
	case arrow.INT64:
		return "BIGINT"
	case arrow.UINT8:
		return "TINYINT UNSIGNED"
	case arrow.UINT16:
		return "SMALLINT UNSIGNED"
	case arrow.UINT32:
		return "INTEGER UNSIGNED"
	case arrow.UINT64:
		return "BIGINT UNSIGNED"
	case arrow.FLOAT32:
		return "FLOAT"
	case arrow.FLOAT64:
		return "DOUBLE"
	case arrow.STRING, arrow.LARGE_STRING:
		return "TEXT"
	case arrow.BINARY, arrow.LARGE_BINARY:
		return "BLOB"
	case arrow.DATE32, arrow.DATE64:
		return "DATE"
	case arrow.DECIMAL128:
		dec := dt.(*arrow.Decimal128Type)
		return fmt.Sprintf("DECIMAL(%d,%d)", dec.Precision, dec.Scale)
	case arrow.TIMESTAMP:
		if ts, ok := dt.(*arrow.TimestampType); ok && ts.TimeZone != "" {
			return "TIMESTAMP"
		}
		return "DATETIME"
	default:
		return strings.ToUpper(dt.Name())
	}
}
