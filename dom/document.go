// Package dom is an in-memory distlink.Surface over a parsed HTML document and
// its style sheets.
//
// Element handles are cached per node, so resolving the same node twice yields
// the same handle. Events are never raised by the document itself; callers
// deliver them with Element.Dispatch or Document.Input.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/delaneyj/linkparty/distlink"
)

type Document struct {
	root     *html.Node
	elements map[*html.Node]*Element
	sheets   []*Sheet
}

var _ distlink.Surface = (*Document)(nil)

// Parse reads an HTML document. Every <style> element becomes a sheet named
// by its id, or "style[i]" when it has none.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := &Document{
		root:     root,
		elements: map[*html.Node]*Element{},
	}
	i := 0
	var walkErr error
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.Style {
			return true
		}
		name := attr(n, "id")
		if name == "" {
			name = fmt.Sprintf("style[%d]", i)
		}
		i++
		sheet, err := parseSheet(name, textOf(n))
		if err != nil {
			walkErr = err
			return false
		}
		sheet.node = n
		d.sheets = append(d.sheets, sheet)
		return false
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return d, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// AddStylesheet parses css as an external sheet called name, e.g. its path.
func (d *Document) AddStylesheet(name, css string) (*Sheet, error) {
	sheet, err := parseSheet(name, css)
	if err != nil {
		return nil, err
	}
	d.sheets = append(d.sheets, sheet)
	return sheet, nil
}

func (d *Document) Sheets() []*Sheet {
	sheets := make([]*Sheet, len(d.sheets))
	copy(sheets, d.sheets)
	return sheets
}

// Sheet returns the sheet called name, nil if there is none.
func (d *Document) Sheet(name string) *Sheet {
	for _, s := range d.sheets {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (d *Document) element(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// Query returns the first element matching query, nil on a miss or an
// invalid query.
func (d *Document) Query(query string) *Element {
	el, err := d.Resolve(nil, query)
	if err != nil {
		return nil
	}
	return el.(*Element)
}

// QueryAll returns every element matching query in document order.
func (d *Document) QueryAll(query string) ([]*Element, error) {
	sel, err := cascadia.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", distlink.ErrInvalidSurfaceTarget, query, err)
	}
	var els []*Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && sel.Match(n) {
			els = append(els, d.element(n))
		}
		return true
	})
	return els, nil
}

// Resolve finds the first descendant of scope matching query in document
// order. scope itself is never matched.
func (d *Document) Resolve(scope distlink.ElementHandle, query string) (distlink.ElementHandle, error) {
	from := d.root
	if scope != nil {
		el, ok := scope.(*Element)
		if !ok || el.doc != d {
			return nil, fmt.Errorf("%w: scope %T is not an element of this document", distlink.ErrInvalidSurfaceTarget, scope)
		}
		from = el.node
	}
	sel, err := cascadia.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", distlink.ErrInvalidSurfaceTarget, query, err)
	}
	var found *html.Node
	for c := from.FirstChild; c != nil && found == nil; c = c.NextSibling {
		walk(c, func(n *html.Node) bool {
			if found != nil {
				return false
			}
			if n.Type == html.ElementNode && sel.Match(n) {
				found = n
				return false
			}
			return true
		})
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", distlink.ErrNotFound, query)
	}
	return d.element(found), nil
}

// ResolveRule returns the first rule, in sheet then rule order, whose sheet
// name and selector satisfy the predicates.
func (d *Document) ResolveRule(sheet, rule distlink.Predicate) (distlink.StyleRuleHandle, error) {
	for _, s := range d.sheets {
		if sheet != nil && !sheet(s.name) {
			continue
		}
		for _, r := range s.rules {
			if rule == nil || rule(r.Selector()) {
				return r, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no matching style rule", distlink.ErrNotFound)
}

// Input sets the value of el and dispatches an event of kind on it, the way a
// user edit would.
func (d *Document) Input(el distlink.ElementHandle, kind, value string) error {
	e, ok := el.(*Element)
	if !ok || e.doc != d {
		return fmt.Errorf("%w: %T is not an element of this document", distlink.ErrInvalidSurfaceTarget, el)
	}
	e.SetValue(value)
	return e.Dispatch(kind)
}

// Render writes the document as HTML. Inline sheets are written back into
// their <style> elements first.
func (d *Document) Render(w io.Writer) error {
	for _, s := range d.sheets {
		if s.node == nil {
			continue
		}
		removeAll(s.node)
		s.node.AppendChild(&html.Node{Type: html.TextNode, Data: s.String()})
	}
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return err.Error()
	}
	return buf.String()
}

// Fingerprint is a digest of the rendered document and every external sheet.
func (d *Document) Fingerprint() uint64 {
	h := xxhash.New()
	h.WriteString(d.String())
	for _, s := range d.sheets {
		if s.node == nil {
			h.WriteString(s.String())
		}
	}
	return h.Sum64()
}

// walk visits n and its descendants depth first. Returning false from fn
// skips the children of the node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, fn)
		c = next
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func removeAll(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}
