package pushdown

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/hugr-lab/mysql-catalog-go/quote"
)

// timeFormat is the MySQL datetime literal layout.
const timeFormat = "2006-01-02 15:04:05.000000"

// Literal renders a constant as a MySQL literal.
// Returns false for values that have no safe literal form; such constants
// keep their filter out of the pushdown fragment.
func Literal(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "NULL", true
	case string:
		return quote.Literal(v), true
	case bool:
		if v {
			return "TRUE", true
		}
		return "FALSE", true
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case time.Time:
		return quote.Literal(v.Format(timeFormat)), true
	case []byte:
		return "x'" + hex.EncodeToString(v) + "'", true
	default:
		return "", false
	}
}
