// Package permission decides which dashboard pages the signed-in user may see.
//
// The permission payload arrives once at login as a list of modules, each with
// its permissions. Map flattens it into a route lookup, Gate answers
// "may this route render", and MenuItems derives the navigation menu.
//
// These checks drive conditional rendering only. The backend enforces access.
package permission

import "strings"

// Permission is one permission statement delivered at login.
type Permission struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Route      string `json:"route"`
	IsAllowed  bool   `json:"isAllowed"`
	ShowInMenu bool   `json:"showInMenu"`
}

// Module groups the permissions of one feature (invoices, clients, ...).
type Module struct {
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Permissions []Permission `json:"permissions"`
}

// Map is an immutable snapshot of a user's permissions.
type Map struct {
	modules []Module
	routes  map[string]Permission
}

// NewMap copies modules and indexes their permissions by route. When two
// statements share a route the later one wins.
func NewMap(modules []Module) *Map {
	m := &Map{
		modules: cloneModules(modules),
		routes:  make(map[string]Permission),
	}
	for _, mod := range m.modules {
		for _, p := range mod.Permissions {
			key := NormalizeRoute(p.Route)
			if key == "" {
				continue
			}
			m.routes[key] = p
		}
	}
	return m
}

// Modules returns a copy of the modules in source order
func (m *Map) Modules() []Module {
	if m == nil {
		return nil
	}
	return cloneModules(m.modules)
}

// Routes returns a copy of the flattened route table
func (m *Map) Routes() map[string]Permission {
	out := make(map[string]Permission)
	if m == nil {
		return out
	}
	for k, v := range m.routes {
		out[k] = v
	}
	return out
}

// Lookup finds the statement governing route
func (m *Map) Lookup(route string) (Permission, bool) {
	if m == nil {
		return Permission{}, false
	}
	p, ok := m.routes[NormalizeRoute(route)]
	return p, ok
}

// Len returns the number of indexed routes
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.routes)
}

// NormalizeRoute trims whitespace and a trailing slash ("/invoices/" and
// "/invoices" are the same page). The root route stays "/".
func NormalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
		if route == "" {
			route = "/"
		}
	}
	return route
}

func cloneModules(modules []Module) []Module {
	out := make([]Module, len(modules))
	for i, mod := range modules {
		out[i] = mod
		out[i].Permissions = append([]Permission(nil), mod.Permissions...)
	}
	return out
}
