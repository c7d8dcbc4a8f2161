package distlink

import (
	"github.com/delaneyj/linkparty/value"
)

// DefaultEvent is the event kind two-way bindings listen to when none is
// given.
const DefaultEvent = "change"

// PrimitiveLink mirrors one scalar member and fans its changes out to the
// Bindings registered on it.
type PrimitiveLink struct {
	node
	value    any
	previous string
	rule     StyleRuleHandle
	bindings []*Binding
}

func newPrimitiveLink(s *Session, o owner, v any) *PrimitiveLink {
	l := &PrimitiveLink{
		node:  node{session: s, origin: o},
		value: v,
	}
	if o.object != nil {
		o.object.Intercept(o.key, l.Set)
	}
	return l
}

func (l *PrimitiveLink) base() *node { return &l.node }

func (l *PrimitiveLink) Value() any { return l.value }

// String is the display form of the current value.
func (l *PrimitiveLink) String() string { return value.String(l.value) }

// Previous is the display form of the value before the last change.
func (l *PrimitiveLink) Previous() string { return l.previous }

// Bindings returns the registered bindings in registration order.
func (l *PrimitiveLink) Bindings() []*Binding {
	bindings := make([]*Binding, len(l.bindings))
	copy(bindings, l.bindings)
	return bindings
}

// Select accepts a query string, an ElementHandle or a StyleRuleHandle.
func (l *PrimitiveLink) Select(target any) error {
	if rule, ok := target.(StyleRuleHandle); ok {
		if _, isElement := target.(ElementHandle); !isElement {
			return l.SelectRule(rule)
		}
	}
	return l.selectTarget(target)
}

// SelectRule selects the style rule BindStyle writes to.
func (l *PrimitiveLink) SelectRule(rule StyleRuleHandle) error {
	if rule == nil {
		return linkErrf("select rule", l.Path(), ErrInvalidSurfaceTarget, "nil rule")
	}
	l.rule = rule
	return nil
}

// SelectRuleWhere resolves and selects the first rule whose sheet name
// satisfies sheet and whose selector satisfies rule.
func (l *PrimitiveLink) SelectRuleWhere(sheet, rule Predicate) error {
	if l.session.surface == nil {
		return linkErrf("select rule", l.Path(), ErrNotFound, "no surface")
	}
	r, err := l.session.surface.ResolveRule(sheet, rule)
	if err != nil {
		return linkErr("select rule", l.Path(), err)
	}
	l.rule = r
	return nil
}

// SelectedRule returns the selected style rule, if any.
func (l *PrimitiveLink) SelectedRule() StyleRuleHandle { return l.rule }

// Set assigns a new value and propagates it to every binding.
func (l *PrimitiveLink) Set(v any) error {
	return l.propagate(nil, v)
}

func (l *PrimitiveLink) propagate(source, v any) error {
	if l.torn {
		return nil
	}
	if !value.IsScalar(v) {
		return linkErrf("propagate", l.Path(), ErrTypeMismatch, "scalar link cannot take %T", v)
	}
	if source != Link(l) {
		l.previous = value.String(l.value)
		l.value = v
		l.origin.store(v)
	}
	if log := l.session.log.V(2); log.Enabled() {
		log.Info("propagate", "path", l.Path(), "value", l.value, "bindings", len(l.bindings))
	}
	for _, b := range l.bindings {
		if b.targets(source) {
			continue
		}
		b.exec()
	}
	return nil
}

// BindTwoWay keeps the selected input control and the value in sync: the
// control shows the value, and events of kind on the control write back.
func (l *PrimitiveLink) BindTwoWay(kind string) (*Binding, error) {
	el, err := l.requireSelected("bind two-way")
	if err != nil {
		return nil, err
	}
	if !el.IsInput() {
		return nil, linkErrf("bind two-way", l.Path(), ErrInvalidSurfaceTarget, "%v is not an input control", el)
	}
	if kind == "" {
		kind = DefaultEvent
	}
	return l.register(&Binding{kind: ValueSync, element: el, name: kind}), nil
}

// BindText writes the value as the text content of the selected element.
func (l *PrimitiveLink) BindText() (*Binding, error) {
	el, err := l.requireSelected("bind text")
	if err != nil {
		return nil, err
	}
	return l.register(&Binding{kind: ToText, element: el}), nil
}

// BindAttribute writes the value to attribute name of the selected element.
func (l *PrimitiveLink) BindAttribute(name string) (*Binding, error) {
	el, err := l.requireSelected("bind attribute")
	if err != nil {
		return nil, err
	}
	return l.register(&Binding{kind: ToAttribute, element: el, name: name}), nil
}

func (l *PrimitiveLink) BindSrc() (*Binding, error) { return l.BindAttribute("src") }

func (l *PrimitiveLink) BindHref() (*Binding, error) { return l.BindAttribute("href") }

// BindClass uses the value as a class name on the selected element, replacing
// the class it added before.
func (l *PrimitiveLink) BindClass() (*Binding, error) {
	el, err := l.requireSelected("bind class")
	if err != nil {
		return nil, err
	}
	return l.register(&Binding{kind: ToClass, element: el}), nil
}

// BindToggleClass adds class name while the value is truthy (on) or falsy
// (!on) and removes it otherwise.
func (l *PrimitiveLink) BindToggleClass(name string, on bool) (*Binding, error) {
	el, err := l.requireSelected("bind toggle class")
	if err != nil {
		return nil, err
	}
	return l.register(&Binding{kind: ToggleClass, element: el, name: name, on: on}), nil
}

func (l *PrimitiveLink) BindClassOn(name string) (*Binding, error) {
	return l.BindToggleClass(name, true)
}

func (l *PrimitiveLink) BindClassOff(name string) (*Binding, error) {
	return l.BindToggleClass(name, false)
}

// BindStyle writes the value to property of the selected style rule.
func (l *PrimitiveLink) BindStyle(property string) (*Binding, error) {
	if l.rule == nil {
		if l.selected != nil {
			return nil, linkErrf("bind style", l.Path(), ErrInvalidSurfaceTarget, "%v is not a style rule", l.selected)
		}
		return nil, linkErr("bind style", l.Path(), ErrNoSurfaceSelected)
	}
	return l.register(&Binding{kind: ToStyleProperty, rule: l.rule, name: property}), nil
}

// BindStyleProperty resolves the rule with selector text ruleSelector in any
// sheet, selects it and binds property.
func (l *PrimitiveLink) BindStyleProperty(ruleSelector, property string) (*Binding, error) {
	if err := l.SelectRuleWhere(nil, Equals(ruleSelector)); err != nil {
		return nil, err
	}
	return l.BindStyle(property)
}

// register adds b unless an equal binding exists, in which case that one is
// re-synced and returned instead.
func (l *PrimitiveLink) register(b *Binding) *Binding {
	for _, existing := range l.bindings {
		if existing.same(b) {
			existing.exec()
			return existing
		}
	}
	b.link = l
	l.bindings = append(l.bindings, b)
	if b.kind == ValueSync {
		b.listen()
	}
	b.exec()
	l.session.log.V(1).Info("bound", "path", l.Path(), "kind", b.kind, "target", b.describeTarget())
	return b
}

func (l *PrimitiveLink) Destroy() { destroy(l, nil) }

func (l *PrimitiveLink) teardown() {
	if l.torn {
		return
	}
	l.torn = true
	for _, b := range l.bindings {
		b.unlisten()
	}
	l.origin.release()
}
