package route

import (
	"fmt"
	"strings"
)

// Table is the ordered set of configured routes. It is built once at startup
// and read-only afterwards, so concurrent lookups need no synchronization.
type Table struct {
	routes []*Route
}

// NewTable validates and normalizes the given routes, preserving declaration
// order for first-match-wins resolution of overlapping patterns.
func NewTable(routes []Route) (*Table, error) {
	table := &Table{routes: make([]*Route, 0, len(routes))}

	for i := range routes {
		r := routes[i]

		if r.Pattern == "" {
			return nil, fmt.Errorf("route %q: pattern must not be empty", r.Name)
		}
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("route %q: pattern %q must start with /", r.Name, r.Pattern)
		}
		if (r.Target == nil) == (r.Pool == "") {
			return nil, fmt.Errorf("route %q: exactly one of target and pool must be set", r.Name)
		}

		r.normalize()
		table.routes = append(table.routes, &r)
	}

	return table, nil
}

// Match returns the first route, in declaration order, whose pattern matches
// path and whose method set contains method. A route that matches the path
// but not the method is skipped and scanning continues, so two routes may
// share a pattern with different methods.
func (t *Table) Match(method, path string) (*Route, bool) {
	for _, r := range t.routes {
		if !r.matchesPath(path) {
			continue
		}
		if !r.allowsMethod(method) {
			continue
		}
		return r, true
	}
	return nil, false
}

// Routes returns the table contents in declaration order.
func (t *Table) Routes() []*Route {
	return t.routes
}
