package distlink

import "strings"

// Surface is the rendering boundary links write to. It resolves queries to
// element handles and style predicates to rule handles.
type Surface interface {
	// Resolve returns the first element matching query below scope, or below
	// the surface root when scope is nil. Misses wrap ErrNotFound.
	Resolve(scope ElementHandle, query string) (ElementHandle, error)
	// ResolveRule returns the first style rule whose sheet name satisfies
	// sheet and whose selector text satisfies rule. A nil predicate matches
	// anything. Misses wrap ErrNotFound.
	ResolveRule(sheet, rule Predicate) (StyleRuleHandle, error)
}

// ElementHandle is one renderable element of a Surface. Implementations must
// be comparable (pointer types) since links use handle identity for source
// exclusion and idempotent registration.
type ElementHandle interface {
	Text() string
	SetText(text string)
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	// IsInput reports whether the element is an input-family control.
	IsInput() bool
	Value() string
	SetValue(value string)

	// Listen registers fn for events of kind and returns the function that
	// removes it again.
	Listen(kind string, fn Listener) (remove func())

	// Clone deep copies the element and its descendants, detached.
	Clone() ElementHandle
	FirstChild() ElementHandle
	// AppendChild moves child to the end of this element's children.
	AppendChild(child ElementHandle)
	RemoveChild(child ElementHandle)
	RemoveChildren()
}

// StyleRuleHandle is one rule of a style sheet.
type StyleRuleHandle interface {
	Selector() string
	Style(property string) string
	SetStyle(property, value string)
}

// Event is a Surface originated input event.
type Event struct {
	Kind   string
	Target ElementHandle
	Value  string
}

type Listener func(e Event) error

// Predicate matches sheet names or rule selector text.
type Predicate func(s string) bool

// Equals matches s exactly.
func Equals(s string) Predicate {
	return func(target string) bool {
		return target == s
	}
}

// EndsWith matches names with the given suffix, e.g. a sheet href.
func EndsWith(suffix string) Predicate {
	return func(target string) bool {
		return strings.HasSuffix(target, suffix)
	}
}

// CSVContains matches comma separated lists containing key, e.g. a grouped
// selector like ".a, .b".
func CSVContains(key string) Predicate {
	return func(target string) bool {
		for _, part := range strings.Split(target, ",") {
			if strings.TrimSpace(part) == key {
				return true
			}
		}
		return false
	}
}
