package backend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Query methods.
const (
	MethodEqual     = "equal"
	MethodOrderDesc = "orderDesc"
	MethodOrderAsc  = "orderAsc"
	MethodLimit     = "limit"
)

// Query is a single list-documents filter, ordering or limit.
type Query struct {
	Method    string
	Attribute string
	Values    []any
}

// Equal matches documents whose attribute equals any of values.
func Equal(attr string, values ...any) Query {
	return Query{Method: MethodEqual, Attribute: attr, Values: values}
}

// OrderDesc orders by attr, newest/largest first.
func OrderDesc(attr string) Query { return Query{Method: MethodOrderDesc, Attribute: attr} }

// OrderAsc orders by attr, oldest/smallest first.
func OrderAsc(attr string) Query { return Query{Method: MethodOrderAsc, Attribute: attr} }

// Limit caps the number of returned documents.
func Limit(n int) Query { return Query{Method: MethodLimit, Values: []any{n}} }

// String renders the query in the legacy textual syntax, e.g. equal("accountId", ["a"]).
func (q Query) String() string {
	switch q.Method {
	case MethodLimit:
		return fmt.Sprintf("limit(%v)", q.Values[0])
	case MethodOrderAsc, MethodOrderDesc:
		return fmt.Sprintf("%s(%q)", q.Method, q.Attribute)
	default:
		vals, _ := json.Marshal(q.Values)
		return fmt.Sprintf("%s(%q, %s)", q.Method, q.Attribute, vals)
	}
}

// LimitOf returns the effective limit among queries, or def when none is set.
func LimitOf(queries []Query, def int) int {
	for _, q := range queries {
		if q.Method == MethodLimit && len(q.Values) == 1 {
			if n, ok := q.Values[0].(int); ok {
				return n
			}
		}
	}
	return def
}

// ValidAttribute reports whether attr is usable in a query.
func ValidAttribute(attr string) bool {
	name := strings.TrimPrefix(attr, "$")
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
