// Package distlink keeps a value graph synchronized with a rendering Surface.
//
// Every node of the graph is mirrored by a Link. Scalars are mirrored by
// PrimitiveLinks which fan changes out to registered Bindings, objects and
// lists by ObjectLinks and ArrayLinks which recurse into their members. All
// propagation is synchronous and depth-first; a change never writes back to
// the surface target it came from.
package distlink

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"

	"github.com/delaneyj/linkparty/value"
)

// Session owns one registry and the Surface its links render into. Sessions
// are independent of each other and are not safe for concurrent use.
type Session struct {
	surface  Surface
	registry *Registry
	log      logr.Logger
	loose    []*PrimitiveLink
	closed   bool
}

type Option func(*Session)

// WithLogger routes the session's diagnostics to log.
func WithLogger(log logr.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

func NewSession(surface Surface, opts ...Option) *Session {
	s := &Session{
		surface: surface,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = newRegistry(s)
	return s
}

func (s *Session) Surface() Surface { return s.surface }

func (s *Session) Registry() *Registry { return s.registry }

// Bind links a root object.
func (s *Session) Bind(o *value.Object) (*ObjectLink, error) {
	if o == nil {
		return nil, linkErrf("bind", "", ErrUnsupportedType, "nil root object")
	}
	l, err := s.Link(o)
	if err != nil {
		return nil, err
	}
	return l.(*ObjectLink), nil
}

// Link returns the link for v, creating it on first sight. Scalars get a
// standalone PrimitiveLink without an owner.
func (s *Session) Link(v any) (Link, error) {
	if s.closed {
		return nil, linkErr("link", "", ErrSessionClosed)
	}
	l, err := s.registry.linkOf(owner{}, v)
	if err != nil {
		return nil, err
	}
	if p, ok := l.(*PrimitiveLink); ok {
		s.loose = append(s.loose, p)
	}
	return l, nil
}

// Close tears down every link: listeners are removed, rendered list items
// detached and the registry emptied.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	seen := mapset.NewThreadUnsafeSet[Link]()
	for _, l := range s.registry.snapshot() {
		destroy(l, seen)
	}
	for _, p := range s.loose {
		destroy(p, seen)
	}
	s.loose = nil
	s.log.V(1).Info("session closed", "links", seen.Cardinality())
}

// BindingInfo describes one registered binding.
type BindingInfo struct {
	Path    string
	Kind    Kind
	Target  string
	Filters int
}

// Bindings lists every binding of every live link, in registry order then
// registration order.
func (s *Session) Bindings() []BindingInfo {
	var infos []BindingInfo
	seen := mapset.NewThreadUnsafeSet[*PrimitiveLink]()
	add := func(p *PrimitiveLink) {
		if !seen.Add(p) {
			return
		}
		for _, b := range p.bindings {
			infos = append(infos, b.Info())
		}
	}
	for _, l := range s.registry.snapshot() {
		switch l := l.(type) {
		case *ObjectLink:
			for _, k := range l.keys {
				if p, ok := l.children[k].(*PrimitiveLink); ok {
					add(p)
				}
			}
		case *ArrayLink:
			for _, item := range l.items {
				if p, ok := item.(*PrimitiveLink); ok {
					add(p)
				}
			}
		}
	}
	for _, p := range s.loose {
		add(p)
	}
	return infos
}
