package ownership

import "github.com/lumen-lang/lumen/pkg/span"

// linearBinding tracks one owned-linear value through a cell body: a
// binding produced by calling a `@linear` cell, or by moving such a value
// into a new name.
type linearBinding struct {
	name       string
	moved      bool
	declaredAt span.Span
}

// scope is one lexical block's set of linear bindings, popped (and checked
// for NotConsumed) when the block ends.
type scope struct {
	bindings map[string]*linearBinding
}

func newScope() *scope {
	return &scope{bindings: make(map[string]*linearBinding)}
}

// stack is the per-cell chain of open scopes, innermost last.
type stack struct {
	scopes []*scope
}

func (s *stack) push() {
	s.scopes = append(s.scopes, newScope())
}

func (s *stack) pop() *scope {
	top := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]

	return top
}

func (s *stack) declare(name string, sp span.Span) {
	s.scopes[len(s.scopes)-1].bindings[name] = &linearBinding{name: name, declaredAt: sp}
}

// lookup finds name in the nearest enclosing scope that declared it.
func (s *stack) lookup(name string) (*linearBinding, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if b, ok := s.scopes[i].bindings[name]; ok {
			return b, true
		}
	}

	return nil, false
}
