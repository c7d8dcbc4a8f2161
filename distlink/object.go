package distlink

import (
	"github.com/delaneyj/linkparty/value"
)

// ObjectLink mirrors a *value.Object. Its key set is fixed when it is built.
type ObjectLink struct {
	node
	token    string
	object   *value.Object
	keys     []string
	children map[string]Link
	refs     int
	busy     bool
}

func newObjectLink(s *Session, o owner, token string, obj *value.Object) *ObjectLink {
	return &ObjectLink{
		node:     node{session: s, origin: o},
		token:    token,
		object:   obj,
		children: map[string]Link{},
		refs:     1,
	}
}

func (l *ObjectLink) base() *node { return &l.node }

func (l *ObjectLink) build() error {
	for _, key := range l.object.Keys() {
		child, err := l.session.registry.linkOf(owner{
			parent: l,
			object: l.object,
			key:    key,
		}, l.object.Get(key))
		if err != nil {
			return err
		}
		l.keys = append(l.keys, key)
		l.children[key] = child
	}
	return nil
}

func (l *ObjectLink) Select(target any) error { return l.selectTarget(target) }

// Value returns the backing object.
func (l *ObjectLink) Value() any { return l.object }

func (l *ObjectLink) Source() *value.Object { return l.object }

// Keys returns the linked member names in traversal order.
func (l *ObjectLink) Keys() []string {
	keys := make([]string, len(l.keys))
	copy(keys, l.keys)
	return keys
}

// Field returns the child link for key, nil when key was not a member at
// construction.
func (l *ObjectLink) Field(key string) Link {
	return l.children[key]
}

// Primitive returns the scalar member key. It panics when key is not a scalar
// member.
func (l *ObjectLink) Primitive(key string) *PrimitiveLink {
	p, ok := l.children[key].(*PrimitiveLink)
	if !ok {
		panic("distlink: " + l.childPath(key) + " is not a scalar member")
	}
	return p
}

// Object returns the object member key. It panics when key is not an object
// member.
func (l *ObjectLink) Object(key string) *ObjectLink {
	o, ok := l.children[key].(*ObjectLink)
	if !ok {
		panic("distlink: " + l.childPath(key) + " is not an object member")
	}
	return o
}

// Array returns the list member key. It panics when key is not a list member.
func (l *ObjectLink) Array(key string) *ArrayLink {
	a, ok := l.children[key].(*ArrayLink)
	if !ok {
		panic("distlink: " + l.childPath(key) + " is not a list member")
	}
	return a
}

func (l *ObjectLink) childPath(key string) string {
	return owner{parent: l, object: l.object, key: key}.path()
}

// Set replaces the whole object: every member is propagated from v, members
// missing from v become nil. Like ArrayLink.Set, v is copied into the bound
// object rather than adopted.
func (l *ObjectLink) Set(v any) error {
	return l.propagate(nil, v)
}

func (l *ObjectLink) propagate(source, v any) error {
	if l.torn || l.busy || source == Link(l) {
		return nil
	}
	var get func(key string) any
	switch v := v.(type) {
	case nil:
		get = func(string) any { return nil }
	case *value.Object:
		get = v.Get
	case map[string]any:
		get = func(key string) any { return v[key] }
	default:
		return linkErrf("propagate", l.Path(), ErrTypeMismatch, "object link cannot take %T", v)
	}

	l.busy = true
	defer func() { l.busy = false }()
	for _, key := range l.keys {
		if err := propagate(l.children[key], l, get(key)); err != nil {
			return err
		}
	}
	return nil
}

func (l *ObjectLink) Destroy() { destroy(l, nil) }

func (l *ObjectLink) teardown(children func(Link)) {
	if l.torn {
		return
	}
	l.torn = true
	l.session.registry.forget(l.token)
	l.origin.release()
	for _, key := range l.keys {
		children(l.children[key])
	}
}
