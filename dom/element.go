package dom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/delaneyj/linkparty/distlink"
)

// Element is the handle of one element node.
type Element struct {
	doc       *Document
	node      *html.Node
	listeners map[string][]*listener
}

type listener struct {
	fn distlink.Listener
}

var _ distlink.ElementHandle = (*Element)(nil)

func (e *Element) Tag() string { return e.node.Data }

func (e *Element) ID() string { return attr(e.node, "id") }

// Parent returns the parent element, nil for detached or top level nodes.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.element(p)
}

// Children returns the element children in order.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, e.doc.element(c))
		}
	}
	return children
}

func (e *Element) Text() string { return textOf(e.node) }

func (e *Element) SetText(text string) {
	removeAll(e.node)
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) RemoveAttr(name string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Key == name
	})
}

func (e *Element) Classes() []string {
	return strings.Fields(attr(e.node, "class"))
}

func (e *Element) AddClass(name string) {
	classes := e.Classes()
	if name == "" || lo.Contains(classes, name) {
		return
	}
	e.SetAttr("class", strings.Join(append(classes, name), " "))
}

func (e *Element) RemoveClass(name string) {
	classes := e.Classes()
	if !lo.Contains(classes, name) {
		return
	}
	e.SetAttr("class", strings.Join(lo.Without(classes, name), " "))
}

func (e *Element) HasClass(name string) bool {
	return lo.Contains(e.Classes(), name)
}

func (e *Element) IsInput() bool {
	switch e.node.DataAtom {
	case atom.Input, atom.Textarea, atom.Select:
		return true
	}
	return false
}

// Value is the current value of an input control: the value attribute of an
// input, the text of a textarea, the selected option of a select. Other
// elements have no value.
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Input:
		return attr(e.node, "value")
	case atom.Textarea:
		return e.Text()
	case atom.Select:
		opts := e.options()
		for _, o := range opts {
			if _, ok := o.Attr("selected"); ok {
				return o.optionValue()
			}
		}
		if len(opts) > 0 {
			return opts[0].optionValue()
		}
	}
	return ""
}

func (e *Element) SetValue(value string) {
	switch e.node.DataAtom {
	case atom.Input:
		e.SetAttr("value", value)
	case atom.Textarea:
		e.SetText(value)
	case atom.Select:
		for _, o := range e.options() {
			if o.optionValue() == value {
				o.SetAttr("selected", "")
			} else {
				o.RemoveAttr("selected")
			}
		}
	}
}

func (e *Element) options() []*Element {
	var opts []*Element
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			opts = append(opts, e.doc.element(n))
		}
		return true
	})
	return opts
}

func (e *Element) optionValue() string {
	if v, ok := e.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(e.Text())
}

func (e *Element) Listen(kind string, fn distlink.Listener) func() {
	if e.listeners == nil {
		e.listeners = map[string][]*listener{}
	}
	l := &listener{fn: fn}
	e.listeners[kind] = append(e.listeners[kind], l)
	return func() {
		e.listeners[kind] = lo.Without(e.listeners[kind], l)
	}
}

// Listeners is the number of listeners registered for kind.
func (e *Element) Listeners(kind string) int {
	return len(e.listeners[kind])
}

// Dispatch delivers an event of kind to the element's listeners in
// registration order and stops at the first error.
func (e *Element) Dispatch(kind string) error {
	ev := distlink.Event{Kind: kind, Target: e, Value: e.Value()}
	for _, l := range slices.Clone(e.listeners[kind]) {
		if err := l.fn(ev); err != nil {
			return err
		}
	}
	return nil
}

// Clone deep copies the element. Listeners are not copied.
func (e *Element) Clone() distlink.ElementHandle {
	return e.doc.element(cloneNode(e.node))
}

// FirstChild returns the first element child, skipping text and comments.
func (e *Element) FirstChild() distlink.ElementHandle {
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return e.doc.element(c)
		}
	}
	return nil
}

func (e *Element) AppendChild(child distlink.ElementHandle) {
	c, ok := child.(*Element)
	if !ok {
		return
	}
	if c.node.Parent != nil {
		c.node.Parent.RemoveChild(c.node)
	}
	e.node.AppendChild(c.node)
}

func (e *Element) RemoveChild(child distlink.ElementHandle) {
	c, ok := child.(*Element)
	if !ok || c.node.Parent != e.node {
		return
	}
	e.node.RemoveChild(c.node)
}

func (e *Element) RemoveChildren() { removeAll(e.node) }

// Attached reports whether the element is part of the document tree.
func (e *Element) Attached() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// String renders a short description like input#name.big.
func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteString(e.node.Data)
	if id := e.ID(); id != "" {
		sb.WriteString("#" + id)
	}
	for _, c := range e.Classes() {
		sb.WriteString("." + c)
	}
	return sb.String()
}

// OuterHTML renders the element and its descendants.
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	if err := html.Render(&sb, e.node); err != nil {
		return fmt.Sprintf("<!-- %v -->", err)
	}
	return sb.String()
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}
