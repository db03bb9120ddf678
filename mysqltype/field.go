package mysqltype

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// FieldType is a MySQL wire-protocol column type code, as reported in
// result-set metadata.
type FieldType uint8

// Wire-protocol type codes.
const (
	FieldTypeDecimal    FieldType = 0
	FieldTypeTiny       FieldType = 1
	FieldTypeShort      FieldType = 2
	FieldTypeLong       FieldType = 3
	FieldTypeFloat      FieldType = 4
	FieldTypeDouble     FieldType = 5
	FieldTypeNull       FieldType = 6
	FieldTypeTimestamp  FieldType = 7
	FieldTypeLongLong   FieldType = 8
	FieldTypeInt24      FieldType = 9
	FieldTypeDate       FieldType = 10
	FieldTypeTime       FieldType = 11
	FieldTypeDateTime   FieldType = 12
	FieldTypeYear       FieldType = 13
	FieldTypeBit        FieldType = 16
	FieldTypeJSON       FieldType = 245
	FieldTypeNewDecimal FieldType = 246
	FieldTypeEnum       FieldType = 247
	FieldTypeSet        FieldType = 248
	FieldTypeTinyBlob   FieldType = 249
	FieldTypeMediumBlob FieldType = 250
	FieldTypeLongBlob   FieldType = 251
	FieldTypeBlob       FieldType = 252
	FieldTypeVarString  FieldType = 253
	FieldTypeString     FieldType = 254
	FieldTypeGeometry   FieldType = 255
)

// FieldFlag is a bitmask of column flags from result-set metadata.
type FieldFlag uint16

const (
	// FlagUnsigned marks an unsigned numeric column.
	FlagUnsigned FieldFlag = 1 << 5

	// FlagBinary distinguishes binary string columns from text.
	FlagBinary FieldFlag = 1 << 7

	// FlagNum marks a numeric column.
	FlagNum FieldFlag = 1 << 15
)

// Field describes a result-set column as reported by the server.
type Field struct {
	Type      FieldType
	Flags     FieldFlag
	MaxLength int64
	Decimals  int64
}

// Describe converts wire-level field metadata into a Descriptor.
func (f Field) Describe() Descriptor {
	var desc Descriptor
	switch f.Type {
	case FieldTypeTiny:
		desc.Name = "tinyint"
	case FieldTypeShort:
		desc.Name = "smallint"
	case FieldTypeInt24:
		desc.Name = "mediumint"
	case FieldTypeLong:
		desc.Name = "int"
	case FieldTypeLongLong:
		desc.Name = "bigint"
	case FieldTypeFloat:
		desc.Name = "float"
	case FieldTypeDouble:
		desc.Name = "double"
	case FieldTypeDecimal, FieldTypeNewDecimal:
		// Max length counts the minus sign and the decimal point.
		desc.Precision = f.MaxLength - 2
		desc.Scale = f.Decimals
		desc.Name = "decimal"
	case FieldTypeTimestamp:
		desc.Name = "timestamp"
	case FieldTypeDate:
		desc.Name = "date"
	case FieldTypeTime:
		desc.Name = "time"
	case FieldTypeDateTime:
		desc.Name = "datetime"
	case FieldTypeYear:
		desc.Name = "year"
	case FieldTypeBit:
		desc.Name = "bit"
	case FieldTypeGeometry:
		desc.Name = "geometry"
	case FieldTypeNull:
		desc.Name = "null"
	case FieldTypeSet:
		desc.Name = "set"
	case FieldTypeEnum:
		desc.Name = "enum"
	case FieldTypeJSON:
		desc.Name = "json"
	case FieldTypeTinyBlob, FieldTypeMediumBlob, FieldTypeLongBlob,
		FieldTypeBlob, FieldTypeString, FieldTypeVarString:
		if f.Flags&FlagBinary != 0 {
			desc.Name = "blob"
		} else {
			desc.Name = "varchar"
		}
	default:
		desc.Name = "__unknown_type"
	}
	desc.ColumnType = desc.Name
	if f.MaxLength != 0 {
		desc.ColumnType += fmt.Sprintf("(%d)", f.MaxLength)
	}
	if f.Flags&FlagUnsigned != 0 && f.Flags&FlagNum != 0 {
		desc.ColumnType += " unsigned"
	}
	return desc
}

// FieldToArrow maps wire-level field metadata directly onto an Arrow type.
func FieldToArrow(f Field, settings Settings) arrow.DataType {
	return ToArrow(f.Describe(), settings)
}
