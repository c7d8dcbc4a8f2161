package distlink

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/delaneyj/linkparty/value"
)

// Kind tags what a Binding writes to.
type Kind int

const (
	// ValueSync mirrors the value into an input control and writes the
	// control's events back.
	ValueSync Kind = iota
	ToText
	ToAttribute
	ToClass
	ToggleClass
	ToStyleProperty
)

func (k Kind) String() string {
	switch k {
	case ValueSync:
		return "value-sync"
	case ToText:
		return "text"
	case ToAttribute:
		return "attribute"
	case ToClass:
		return "class"
	case ToggleClass:
		return "toggle-class"
	case ToStyleProperty:
		return "style"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// SyncState is the re-entrancy state of a ValueSync binding.
type SyncState int

const (
	Idle SyncState = iota
	PushingToSurface
	HandlingSurfaceEvent
)

func (s SyncState) String() string {
	switch s {
	case Idle:
		return "idle"
	case PushingToSurface:
		return "pushing"
	case HandlingSurfaceEvent:
		return "handling"
	}
	return fmt.Sprintf("SyncState(%d)", int(s))
}

// Binding writes the value of one PrimitiveLink to one surface target. It is
// returned by the Bind methods so filters can be attached to it.
type Binding struct {
	link    *PrimitiveLink
	kind    Kind
	element ElementHandle
	rule    StyleRuleHandle
	name    string
	on      bool
	filters []FilterFunc
	applied []string
	state   SyncState
	remove  func()
}

func (b *Binding) Kind() Kind { return b.kind }

// Element is the bound element, nil for style bindings.
func (b *Binding) Element() ElementHandle { return b.element }

// Rule is the bound style rule, nil for element bindings.
func (b *Binding) Rule() StyleRuleHandle { return b.rule }

func (b *Binding) State() SyncState { return b.state }

// Filter appends fns to the display pipeline and re-renders.
func (b *Binding) Filter(fns ...FilterFunc) *Binding {
	b.filters = append(b.filters, fns...)
	b.exec()
	return b
}

func (b *Binding) Info() BindingInfo {
	return BindingInfo{
		Path:    b.link.Path(),
		Kind:    b.kind,
		Target:  b.describeTarget(),
		Filters: len(b.filters),
	}
}

func (b *Binding) describeTarget() string {
	var target string
	if b.rule != nil {
		target = b.rule.Selector()
	} else {
		target = fmt.Sprint(b.element)
	}
	switch b.kind {
	case ValueSync:
		return target + " @" + b.name
	case ToAttribute:
		return target + " [" + b.name + "]"
	case ToggleClass:
		if b.on {
			return target + " ." + b.name
		}
		return target + " !." + b.name
	case ToStyleProperty:
		return target + " {" + b.name + "}"
	}
	return target
}

// same reports whether o would write to the same place as b.
func (b *Binding) same(o *Binding) bool {
	if b.kind != o.kind || b.name != o.name || b.on != o.on {
		return false
	}
	if b.rule != nil || o.rule != nil {
		return b.rule == o.rule
	}
	return b.element == o.element
}

// targets reports whether source is the surface object this binding writes to.
func (b *Binding) targets(source any) bool {
	if source == nil {
		return false
	}
	if b.rule != nil {
		r, ok := source.(StyleRuleHandle)
		return ok && r == b.rule
	}
	el, ok := source.(ElementHandle)
	return ok && el == b.element
}

func (b *Binding) render() any {
	v := b.link.value
	for _, fn := range b.filters {
		v = fn(v)
	}
	return v
}

func (b *Binding) exec() {
	if b.link.torn {
		return
	}
	v := b.render()
	switch b.kind {
	case ValueSync:
		if b.state != Idle {
			return
		}
		b.state = PushingToSurface
		b.element.SetValue(value.String(v))
		b.state = Idle
	case ToText:
		b.element.SetText(value.String(v))
	case ToAttribute:
		b.element.SetAttr(b.name, value.String(v))
	case ToClass:
		next := strings.Fields(value.String(v))
		for _, c := range b.applied {
			if !lo.Contains(next, c) {
				b.element.RemoveClass(c)
			}
		}
		for _, c := range next {
			b.element.AddClass(c)
		}
		b.applied = next
	case ToggleClass:
		if value.Truthy(v) == b.on {
			b.element.AddClass(b.name)
		} else {
			b.element.RemoveClass(b.name)
		}
	case ToStyleProperty:
		b.rule.SetStyle(b.name, value.String(v))
	}
}

func (b *Binding) listen() {
	b.remove = b.element.Listen(b.name, b.handle)
}

func (b *Binding) unlisten() {
	if b.remove != nil {
		b.remove()
		b.remove = nil
	}
}

// handle writes the control's value back into the link. Events arriving
// while the binding is pushing are echoes of its own write.
func (b *Binding) handle(Event) error {
	if b.state != Idle || b.link.torn {
		return nil
	}
	b.state = HandlingSurfaceEvent
	defer func() { b.state = Idle }()
	v := value.Coerce(b.element.Value(), b.link.value)
	return b.link.propagate(b.element, v)
}
