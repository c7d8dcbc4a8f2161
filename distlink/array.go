package distlink

import (
	"github.com/delaneyj/linkparty/value"
)

// ArrayLink mirrors a *value.List. Once built it owns the list's hook, so
// mutations made through the list land here as well.
type ArrayLink struct {
	node
	token string
	list  *value.List
	items []Link
	each  []*eachBinding
	refs  int
	busy  bool
}

var _ value.Hook = (*ArrayLink)(nil)

func newArrayLink(s *Session, o owner, token string, list *value.List) *ArrayLink {
	return &ArrayLink{
		node:  node{session: s, origin: o},
		token: token,
		list:  list,
		refs:  1,
	}
}

func (l *ArrayLink) base() *node { return &l.node }

func (l *ArrayLink) build() error {
	for i, item := range l.list.Items() {
		child, err := l.linkItem(i, item)
		if err != nil {
			return err
		}
		l.items = append(l.items, child)
	}
	l.list.SetHook(l)
	return nil
}

func (l *ArrayLink) linkItem(i int, v any) (Link, error) {
	return l.session.registry.linkOf(owner{parent: l, list: l.list, index: i}, v)
}

func (l *ArrayLink) Select(target any) error { return l.selectTarget(target) }

// Value returns the backing list.
func (l *ArrayLink) Value() any { return l.list }

func (l *ArrayLink) Source() *value.List { return l.list }

func (l *ArrayLink) Len() int { return len(l.items) }

// Item returns the link of item i, nil when out of range.
func (l *ArrayLink) Item(i int) Link {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

func (l *ArrayLink) Items() []Link {
	items := make([]Link, len(l.items))
	copy(items, l.items)
	return items
}

// Append adds v to the end of the list.
func (l *ArrayLink) Append(v any) error {
	return l.Insert(len(l.items), v)
}

// Insert adds v before index i. i is clamped to the list bounds.
func (l *ArrayLink) Insert(i int, v any) error {
	if l.torn {
		return nil
	}
	i = max(0, min(i, len(l.items)))
	child, err := l.linkItem(i, v)
	if err != nil {
		return err
	}
	l.list.InsertRaw(i, v)
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = child
	l.reindex(i + 1)
	return l.reconcileAll()
}

// Remove drops count items starting at index. Out of range indexes and
// non-positive counts are ignored.
func (l *ArrayLink) Remove(index, count int) error {
	if l.torn || index < 0 || index >= len(l.items) || count <= 0 {
		return nil
	}
	count = min(count, len(l.items)-index)
	end := index + count
	removed := make([]Link, end-index)
	copy(removed, l.items[index:end])

	l.items = append(l.items[:index], l.items[end:]...)
	l.list.SpliceRaw(index, end-index)
	l.reindex(index)
	for _, item := range removed {
		release(item)
	}
	return l.reconcileAll()
}

// SetItem assigns v to item i. A scalar assigned over a scalar item is
// propagated in place, anything else replaces the item link.
func (l *ArrayLink) SetItem(i int, v any) error {
	if l.torn {
		return nil
	}
	if i < 0 || i >= len(l.items) {
		return linkErrf("set item", l.Path(), ErrNotFound, "index %d out of range [0,%d)", i, len(l.items))
	}
	if p, ok := l.items[i].(*PrimitiveLink); ok && value.IsScalar(v) {
		if err := p.Set(v); err != nil {
			return err
		}
		return l.reconcileAll()
	}
	if err := l.replaceItem(i, v); err != nil {
		return err
	}
	return l.reconcileAll()
}

func (l *ArrayLink) replaceItem(i int, v any) error {
	child, err := l.linkItem(i, v)
	if err != nil {
		return err
	}
	old := l.items[i]
	l.items[i] = child
	l.list.StoreAt(i, v)
	release(old)
	return nil
}

// Set replaces the whole list: items are re-synced by position with v.
//
// v is copied into the bound list, it is not adopted. Assigning a new list to
// the owning member does the same, so the member keeps holding the bound list
// and later writes to v are not seen.
func (l *ArrayLink) Set(v any) error {
	return l.propagate(nil, v)
}

func (l *ArrayLink) propagate(source, v any) error {
	if l.torn || l.busy || source == Link(l) {
		return nil
	}
	var next []any
	switch v := v.(type) {
	case nil:
	case *value.List:
		next = v.Items()
	case []any:
		next = v
	default:
		return linkErrf("propagate", l.Path(), ErrTypeMismatch, "list link cannot take %T", v)
	}

	l.busy = true
	defer func() { l.busy = false }()
	for i, nv := range next {
		if i >= len(l.items) {
			child, err := l.linkItem(i, nv)
			if err != nil {
				return err
			}
			l.list.AppendRaw(nv)
			l.items = append(l.items, child)
			continue
		}
		old := l.items[i]
		if old.Value() == nv && !value.IsScalar(nv) {
			continue
		}
		if sameShape(old, nv) {
			if err := propagate(old, l, nv); err != nil {
				return err
			}
			continue
		}
		if err := l.replaceItem(i, nv); err != nil {
			return err
		}
	}
	if len(next) < len(l.items) {
		tail := l.items[len(next):]
		l.items = l.items[:len(next)]
		l.list.Truncate(len(next))
		for _, item := range tail {
			release(item)
		}
	}
	return l.reconcileAll()
}

// sameShape reports whether v can be propagated into l without replacing it.
func sameShape(l Link, v any) bool {
	switch l.(type) {
	case *PrimitiveLink:
		return value.IsScalar(v)
	case *ObjectLink:
		switch v.(type) {
		case *value.Object, map[string]any:
			return true
		}
	case *ArrayLink:
		switch v.(type) {
		case *value.List, []any:
			return true
		}
	}
	return false
}

// reindex fixes the owner position of items from i on.
func (l *ArrayLink) reindex(from int) {
	for i := from; i < len(l.items); i++ {
		n := l.items[i].base()
		if n.origin.list == l.list && n.origin.parent == Link(l) {
			n.origin.index = i
		}
	}
}

func (l *ArrayLink) Destroy() { destroy(l, nil) }

func (l *ArrayLink) teardown(children func(Link)) {
	if l.torn {
		return
	}
	l.torn = true
	l.session.registry.forget(l.token)
	l.origin.release()
	l.list.SetHook(nil)
	for _, eb := range l.each {
		eb.detach()
	}
	l.each = nil
	for _, item := range l.items {
		children(item)
	}
}
