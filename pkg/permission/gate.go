package permission

import "fmt"

// Default is the answer for routes the map says nothing about.
type Default int

const (
	// DefaultAllow lets unmapped routes render. This is the behaviour the
	// dashboard has always had.
	DefaultAllow Default = iota
	// DefaultDeny hides unmapped routes.
	DefaultDeny
)

// String returns the config spelling of d
func (d Default) String() string {
	if d == DefaultDeny {
		return "deny"
	}
	return "allow"
}

// ParseDefault parses "allow" or "deny"; the empty string means allow
func ParseDefault(s string) (Default, error) {
	switch s {
	case "", "allow":
		return DefaultAllow, nil
	case "deny":
		return DefaultDeny, nil
	default:
		return DefaultAllow, fmt.Errorf("permission: unknown default %q (want allow or deny)", s)
	}
}

// Gate answers whether a route may render for the holder of a Map
type Gate struct {
	m        *Map
	fallback Default
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithDefault sets the answer for unmapped routes
func WithDefault(d Default) GateOption {
	return func(g *Gate) {
		g.fallback = d
	}
}

// NewGate creates a gate over m. A nil map behaves as an empty one.
func NewGate(m *Map, opts ...GateOption) *Gate {
	g := &Gate{m: m, fallback: DefaultAllow}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsAllowed reports whether route may render. The caller supplies the route;
// the gate never inspects navigation state.
func (g *Gate) IsAllowed(route string) bool {
	if p, ok := g.m.Lookup(route); ok {
		return p.IsAllowed
	}
	return g.fallback == DefaultAllow
}

// Lookup returns the statement for route, if the map has one
func (g *Gate) Lookup(route string) (Permission, bool) {
	return g.m.Lookup(route)
}

// IsAllowed reports whether route may render under m. Unmapped routes are
// allowed.
func IsAllowed(route string, m *Map) bool {
	return NewGate(m).IsAllowed(route)
}
