package distlink

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/delaneyj/linkparty/value"
)

// Link mirrors one node of the value graph. It is one of *ObjectLink,
// *ArrayLink or *PrimitiveLink.
type Link interface {
	// Select sets the surface location this link binds to. A string is
	// resolved relative to the parent link's selection when there is one.
	Select(target any) error
	Selected() ElementHandle
	Value() any
	Path() string
	// Destroy tears the link and everything below it down.
	Destroy()

	base() *node
}

// owner is the position a link was first reached at.
type owner struct {
	parent Link
	object *value.Object
	key    string
	list   *value.List
	index  int
}

func (o owner) path() string {
	prefix := ""
	if o.parent != nil {
		prefix = o.parent.Path()
	}
	switch {
	case o.object != nil:
		if prefix == "" {
			return o.key
		}
		return prefix + "." + o.key
	case o.list != nil:
		return fmt.Sprintf("%s[%d]", prefix, o.index)
	}
	return prefix
}

// store writes v back into the owning member without triggering intercepts.
func (o owner) store(v any) {
	switch {
	case o.object != nil:
		o.object.Store(o.key, v)
	case o.list != nil:
		o.list.StoreAt(o.index, v)
	}
}

// release removes the intercept routing the owning member into its link.
func (o owner) release() {
	if o.object != nil {
		o.object.ReleaseIntercept(o.key)
	}
}

// node is the state every link variant shares.
type node struct {
	session  *Session
	origin   owner
	selected ElementHandle
	torn     bool
}

func (n *node) Selected() ElementHandle { return n.selected }

func (n *node) Path() string { return n.origin.path() }

func (n *node) scope() ElementHandle {
	if n.origin.parent == nil {
		return nil
	}
	return n.origin.parent.Selected()
}

func (n *node) selectTarget(target any) error {
	switch t := target.(type) {
	case ElementHandle:
		if t == nil {
			return linkErrf("select", n.Path(), ErrInvalidSurfaceTarget, "nil element")
		}
		n.selected = t
		return nil
	case string:
		if n.session.surface == nil {
			return linkErrf("select", n.Path(), ErrNotFound, "no surface to resolve %q", t)
		}
		el, err := n.session.surface.Resolve(n.scope(), t)
		if err != nil {
			return linkErr("select", n.Path(), err)
		}
		n.selected = el
		return nil
	}
	return linkErrf("select", n.Path(), ErrInvalidSurfaceTarget, "%T", target)
}

func (n *node) requireSelected(op string) (ElementHandle, error) {
	if n.selected == nil {
		return nil, linkErr(op, n.Path(), ErrNoSurfaceSelected)
	}
	return n.selected, nil
}

func propagate(l Link, source, v any) error {
	switch l := l.(type) {
	case *PrimitiveLink:
		return l.propagate(source, v)
	case *ObjectLink:
		return l.propagate(source, v)
	case *ArrayLink:
		return l.propagate(source, v)
	}
	panic(fmt.Sprintf("distlink: unknown link %T", l))
}

// release drops one owning reference. Compound links are torn down once the
// last reference is gone, primitives immediately.
func release(l Link) {
	switch l := l.(type) {
	case *PrimitiveLink:
		l.teardown()
	case *ObjectLink:
		if l.torn {
			return
		}
		l.refs--
		if l.refs > 0 {
			return
		}
		l.teardown(release)
	case *ArrayLink:
		if l.torn {
			return
		}
		l.refs--
		if l.refs > 0 {
			return
		}
		l.teardown(release)
	}
}

// abandon tears down a link whose construction failed, whatever its
// reference count.
func abandon(l Link) {
	switch l := l.(type) {
	case *ObjectLink:
		l.refs = 1
	case *ArrayLink:
		l.refs = 1
	}
	release(l)
}

// destroy tears l and everything reachable from it down regardless of
// reference counts. seen guards against cycles.
func destroy(l Link, seen mapset.Set[Link]) {
	if seen == nil {
		seen = mapset.NewThreadUnsafeSet[Link]()
	}
	if !seen.Add(l) {
		return
	}
	each := func(child Link) { destroy(child, seen) }
	switch l := l.(type) {
	case *PrimitiveLink:
		l.teardown()
	case *ObjectLink:
		l.teardown(each)
	case *ArrayLink:
		l.teardown(each)
	}
}
