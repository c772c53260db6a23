// Package query implements the list-endpoint mechanics shared by every
// collection in the API: predicate filtering (AND composition), stable
// sorting by a named key, and pagination with exact totals.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultPerPage = 30
	maxPerPage     = 100
)

// Page addresses a slice of a result set. Both page/per_page and
// limit/offset appear in the contract; limit/offset wins when both are sent.
type Page struct {
	Limit  int
	Offset int
	// Page and PerPage are kept for echoing back to the client; 1-based.
	Page    int
	PerPage int
}

// ParsePage reads pagination parameters from the query string.
// Out-of-range or malformed values fall back to defaults, never error.
func ParsePage(q url.Values) Page {
	page := atoiDefault(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := atoiDefault(q.Get("per_page"), defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	p := Page{
		Page:    page,
		PerPage: perPage,
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	}

	if q.Has("limit") || q.Has("offset") {
		limit := atoiDefault(q.Get("limit"), defaultPerPage)
		if limit < 1 {
			limit = defaultPerPage
		}
		if limit > maxPerPage {
			limit = maxPerPage
		}
		offset := atoiDefault(q.Get("offset"), 0)
		if offset < 0 {
			offset = 0
		}
		p.Limit = limit
		p.Offset = offset
		p.Page = offset/limit + 1
		p.PerPage = limit
	}
	return p
}

// Paginate returns the requested slice and the total count before slicing.
// Out-of-range pages yield an empty slice, not an error.
func Paginate[T any](items []T, p Page) ([]T, int) {
	total := len(items)
	start := p.Offset
	if start >= total {
		return []T{}, total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return items[start:end], total
}

// Filter returns the items matching every predicate (logical AND).
// A nil predicate matches everything, so callers can build the list conditionally.
func Filter[T any](items []T, preds ...func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		ok := true
		for _, p := range preds {
			if p != nil && !p(it) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, it)
		}
	}
	return out
}

// SortStable sorts items in place by the given less function, preserving the
// relative order of equal elements. Stability is part of the contract, not
// an implementation detail.
func SortStable[T any](items []T, less func(a, b T) bool) {
	if less == nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// Order is a sort direction.
type Order bool

const (
	Asc  Order = false
	Desc Order = true
)

// ParseOrder reads the order parameter; def applies when absent or unknown.
func ParseOrder(q url.Values, def Order) Order {
	switch strings.ToLower(q.Get("order")) {
	case "asc":
		return Asc
	case "desc":
		return Desc
	}
	return def
}

// ContainsFold reports whether s contains substr, case-insensitively.
// Empty substr matches everything.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// IntersectsFold reports whether the two label sets share at least one
// element, case-insensitively. An empty want set matches everything.
func IntersectsFold(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// SplitCSV splits a comma-separated parameter into trimmed non-empty parts.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NumberCmp is a parsed numeric comparison like ">100", "<5", or "42".
type NumberCmp struct {
	Op byte // '>', '<', or '=' for exact
	N  int
}

// ParseNumberCmp parses a numeric comparison filter value. Returns ok false
// for empty or malformed input, which callers treat as "no filter".
func ParseNumberCmp(s string) (NumberCmp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NumberCmp{}, false
	}
	op := byte('=')
	switch s[0] {
	case '>', '<':
		op = s[0]
		s = strings.TrimSpace(s[1:])
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return NumberCmp{}, false
	}
	return NumberCmp{Op: op, N: n}, true
}

// Match reports whether n satisfies the comparison.
func (c NumberCmp) Match(n int) bool {
	switch c.Op {
	case '>':
		return n > c.N
	case '<':
		return n < c.N
	default:
		return n == c.N
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
