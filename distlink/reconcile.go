package distlink

import (
	"errors"
)

// EachFunc renders one list item. item is the item's Link, or the raw value
// for scalar items. instance is the clone of the container's template made
// for this item and is nil when the container had no children. Returning
// ErrStopEach ends the current pass.
type EachFunc func(item any, instance ElementHandle, index int, container ElementHandle) error

type slot struct {
	item     Link
	instance ElementHandle
}

type eachBinding struct {
	container ElementHandle
	template  ElementHandle
	fn        EachFunc
	slots     []slot
}

// Each renders every item into the selected container. The container's first
// child is kept as the per-item template and the container is emptied. The
// items are rendered immediately and again after every list mutation, reusing
// the instance of each item that is still present.
//
// Calling Each again for the same container swaps the callback.
func (l *ArrayLink) Each(fn EachFunc) error {
	container, err := l.requireSelected("each")
	if err != nil {
		return err
	}
	for _, eb := range l.each {
		if eb.container == container {
			eb.fn = fn
			return l.reconcile(eb)
		}
	}
	eb := &eachBinding{container: container, fn: fn}
	if first := container.FirstChild(); first != nil {
		eb.template = first.Clone()
	}
	container.RemoveChildren()
	l.each = append(l.each, eb)
	return l.reconcile(eb)
}

func (l *ArrayLink) reconcileAll() error {
	for _, eb := range l.each {
		if err := l.reconcile(eb); err != nil {
			return err
		}
	}
	return nil
}

func (l *ArrayLink) reconcile(eb *eachBinding) error {
	pool := make(map[Link][]slot, len(eb.slots))
	for _, s := range eb.slots {
		pool[s.item] = append(pool[s.item], s)
	}

	next := make([]slot, 0, len(l.items))
	created := 0
	for _, item := range l.items {
		if q := pool[item]; len(q) > 0 {
			next = append(next, q[0])
			pool[item] = q[1:]
			continue
		}
		s := slot{item: item}
		if eb.template != nil {
			s.instance = eb.template.Clone()
		}
		next = append(next, s)
		created++
	}

	removed := 0
	for _, q := range pool {
		for _, s := range q {
			if s.instance != nil {
				eb.container.RemoveChild(s.instance)
			}
			removed++
		}
	}
	for _, s := range next {
		if s.instance != nil {
			eb.container.AppendChild(s.instance)
		}
	}
	eb.slots = next

	l.session.log.V(1).Info("reconciled",
		"path", l.Path(),
		"items", len(next),
		"reused", len(next)-created,
		"created", created,
		"removed", removed,
	)

	for i, s := range next {
		if s.instance != nil {
			s.item.base().selected = s.instance
		}
		var item any = s.item
		if p, ok := s.item.(*PrimitiveLink); ok {
			item = p.Value()
		}
		if err := eb.fn(item, s.instance, i, eb.container); err != nil {
			if errors.Is(err, ErrStopEach) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (eb *eachBinding) detach() {
	for _, s := range eb.slots {
		if s.instance != nil {
			eb.container.RemoveChild(s.instance)
		}
	}
	eb.slots = nil
}
