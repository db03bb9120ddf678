// Package pushdown translates predicate trees into MySQL WHERE fragments.
//
// Translation is conservative: a filter the translator cannot express is
// excluded from the emitted fragment and left for the engine to evaluate.
// Omitting a filter is always safe because the engine re-checks residual
// filters; emitting an incorrect fragment never is. Identifiers and literals
// are always emitted through the quoting helpers.
package pushdown

import (
	"sort"
	"strings"

	"github.com/hugr-lab/mysql-catalog-go/quote"
)

// CompareOp is a comparison operator in a constant filter.
type CompareOp int

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
)

// String returns the MySQL spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	default:
		return ""
	}
}

// Filter is a node in a predicate tree attached to a single column.
// Implementations outside this package are treated as unsupported and are
// excluded from pushdown.
type Filter interface {
	filterNode()
}

// ConstantFilter compares the column against a constant.
type ConstantFilter struct {
	Op    CompareOp
	Value any
}

// ConjunctionAnd is the AND of its child filters on the same column.
type ConjunctionAnd struct {
	Children []Filter
}

// InFilter is set membership over constants.
type InFilter struct {
	Values []any
}

// IsNullFilter matches NULL values.
type IsNullFilter struct{}

// IsNotNullFilter matches non-NULL values.
type IsNotNullFilter struct{}

func (ConstantFilter) filterNode()  {}
func (ConjunctionAnd) filterNode()  {}
func (InFilter) filterNode()        {}
func (IsNullFilter) filterNode()    {}
func (IsNotNullFilter) filterNode() {}

// TransformFilters builds a MySQL boolean expression from per-column filters.
//
// Each key of filters is an index into columnIDs; the column id selects the
// column name from names. Supported filters are emitted as parenthesized
// terms joined by AND; unsupported filters are skipped. Returns the empty
// string when nothing can be pushed down.
func TransformFilters(columnIDs []int, filters map[int]Filter, names []string) string {
	if len(filters) == 0 {
		return ""
	}
	keys := make([]int, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var terms []string
	for _, k := range keys {
		if k < 0 || k >= len(columnIDs) {
			continue
		}
		id := columnIDs[k]
		if id < 0 || id >= len(names) {
			continue
		}
		column := quote.Identifier(names[id])
		if term, ok := transformFilter(column, filters[k]); ok {
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, " AND ")
}

// transformFilter renders a single filter term.
// Returns false when the filter cannot be expressed safely.
func transformFilter(column string, filter Filter) (string, bool) {
	switch f := filter.(type) {
	case ConstantFilter:
		op := f.Op.String()
		if op == "" {
			return "", false
		}
		lit, ok := Literal(f.Value)
		if !ok {
			return "", false
		}
		return "(" + column + " " + op + " " + lit + ")", true
	case ConjunctionAnd:
		var terms []string
		for _, child := range f.Children {
			if term, ok := transformFilter(column, child); ok {
				terms = append(terms, term)
			}
		}
		if len(terms) == 0 {
			return "", false
		}
		return "(" + strings.Join(terms, " AND ") + ")", true
	case InFilter:
		if len(f.Values) == 0 {
			return "", false
		}
		lits := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			lit, ok := Literal(v)
			if !ok {
				// One unrenderable member invalidates the whole set test.
				return "", false
			}
			lits = append(lits, lit)
		}
		return "(" + column + " IN (" + strings.Join(lits, ", ") + "))", true
	case IsNullFilter:
		return "(" + column + " IS NULL)", true
	case IsNotNullFilter:
		return "(" + column + " IS NOT NULL)", true
	default:
		return "", false
	}
}
