package internal

// Scope is one frame of the evaluation context. Lookups walk outward
// through parents; bindings never leak into enclosing frames.
type Scope struct {
	vars   map[string]any
	parent *Scope
}

// NewScope creates a root scope seeded from data. A nil map yields an
// empty scope.
func NewScope(data map[string]any) *Scope {
	if data == nil {
		data = make(map[string]any)
	}
	return &Scope{vars: data}
}

// Child returns a new frame holding vars whose parent is s.
func (s *Scope) Child(vars map[string]any) *Scope {
	if vars == nil {
		vars = make(map[string]any)
	}
	return &Scope{vars: vars, parent: s}
}

// Parent returns the enclosing frame, nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Get resolves name in this frame or the nearest enclosing one.
func (s *Scope) Get(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Depth is the number of frames above the root.
func (s *Scope) Depth() int {
	depth := 0
	for cur := s.parent; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}
