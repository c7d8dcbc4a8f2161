// Package manifest applies declarative YAML binding manifests to a distlink
// session and runs mutation scripts against the bound model.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/delaneyj/linkparty/distlink"
)

// Manifest lists the bindings to register on a bound root object.
type Manifest struct {
	Bindings []Spec `yaml:"bindings"`
}

// Spec binds the link at Path. Select is resolved relative to the selection
// of the link's parent. A spec may register several bindings at once; all of
// them get the same filters.
type Spec struct {
	Path    string   `yaml:"path"`
	Select  string   `yaml:"select"`
	Text    bool     `yaml:"text"`
	Attr    string   `yaml:"attr"`
	Class   bool     `yaml:"class"`
	Toggle  *Toggle  `yaml:"toggle"`
	Style   *Style   `yaml:"style"`
	TwoWay  string   `yaml:"two_way"`
	Filters []string `yaml:"filters"`
	// Each renders a list path; the nested specs are relative to each item.
	Each []Spec `yaml:"each"`
}

type Toggle struct {
	Name string `yaml:"name"`
	On   bool   `yaml:"on"`
}

type Style struct {
	// Sheet matches the end of the sheet name, empty matches any sheet.
	Sheet    string `yaml:"sheet"`
	Rule     string `yaml:"rule"`
	Property string `yaml:"property"`
}

var ErrInvalid = errors.New("invalid manifest")

func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	return validate(m.Bindings, "bindings")
}

func validate(specs []Spec, at string) error {
	for i, s := range specs {
		where := fmt.Sprintf("%s[%d]", at, i)
		for _, f := range s.Filters {
			if _, err := ParseFilter(f); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, where, err)
			}
		}
		if s.Style != nil && (s.Style.Rule == "" || s.Style.Property == "") {
			return fmt.Errorf("%w: %s: style needs rule and property", ErrInvalid, where)
		}
		if s.Toggle != nil && s.Toggle.Name == "" {
			return fmt.Errorf("%w: %s: toggle needs a name", ErrInvalid, where)
		}
		if len(s.Each) > 0 && s.binds() {
			return fmt.Errorf("%w: %s: each cannot be combined with value bindings", ErrInvalid, where)
		}
		if err := validate(s.Each, where+".each"); err != nil {
			return err
		}
	}
	return nil
}

// binds reports whether s registers any value binding.
func (s Spec) binds() bool {
	return s.Text || s.Attr != "" || s.Class || s.Toggle != nil || s.Style != nil || s.TwoWay != ""
}

// Apply registers every binding of m below root, in order.
func (m *Manifest) Apply(root *distlink.ObjectLink) error {
	return applyAll(root, m.Bindings)
}

func applyAll(base distlink.Link, specs []Spec) error {
	for _, s := range specs {
		l, err := Resolve(base, s.Path)
		if err != nil {
			return err
		}
		if err := s.apply(l); err != nil {
			return fmt.Errorf("binding %q: %w", s.Path, err)
		}
	}
	return nil
}

func (s Spec) apply(l distlink.Link) error {
	if s.Select != "" {
		if err := l.Select(s.Select); err != nil {
			return err
		}
	}
	switch l := l.(type) {
	case *distlink.PrimitiveLink:
		if len(s.Each) > 0 {
			return fmt.Errorf("%w: each on scalar %s", ErrInvalid, l.Path())
		}
		return s.bind(l)
	case *distlink.ArrayLink:
		if s.binds() {
			return fmt.Errorf("%w: value binding on list %s", ErrInvalid, l.Path())
		}
		if len(s.Each) == 0 {
			return nil
		}
		return l.Each(func(_ any, _ distlink.ElementHandle, index int, _ distlink.ElementHandle) error {
			return applyAll(l.Item(index), s.Each)
		})
	default:
		if s.binds() || len(s.Each) > 0 {
			return fmt.Errorf("%w: bindings on object %s", ErrInvalid, l.Path())
		}
		return nil
	}
}

func (s Spec) bind(l *distlink.PrimitiveLink) error {
	filters := make([]distlink.FilterFunc, 0, len(s.Filters))
	for _, name := range s.Filters {
		f, err := ParseFilter(name)
		if err != nil {
			return err
		}
		filters = append(filters, f)
	}

	var binders []func() (*distlink.Binding, error)
	if s.Text {
		binders = append(binders, l.BindText)
	}
	if s.Attr != "" {
		binders = append(binders, func() (*distlink.Binding, error) { return l.BindAttribute(s.Attr) })
	}
	if s.Class {
		binders = append(binders, l.BindClass)
	}
	if s.Toggle != nil {
		binders = append(binders, func() (*distlink.Binding, error) { return l.BindToggleClass(s.Toggle.Name, s.Toggle.On) })
	}
	if s.TwoWay != "" {
		binders = append(binders, func() (*distlink.Binding, error) { return l.BindTwoWay(s.TwoWay) })
	}
	if st := s.Style; st != nil {
		binders = append(binders, func() (*distlink.Binding, error) {
			var sheet distlink.Predicate
			if st.Sheet != "" {
				sheet = distlink.EndsWith(st.Sheet)
			}
			if err := l.SelectRuleWhere(sheet, distlink.CSVContains(st.Rule)); err != nil {
				return nil, err
			}
			return l.BindStyle(st.Property)
		})
	}

	for _, bind := range binders {
		b, err := bind()
		if err != nil {
			return err
		}
		if len(filters) > 0 && b.Info().Filters == 0 {
			b.Filter(filters...)
		}
	}
	return nil
}

// Resolve walks a dotted path from base. Numeric segments index lists; an
// empty path is base itself.
func Resolve(base distlink.Link, path string) (distlink.Link, error) {
	l := base
	for _, seg := range segments(path) {
		switch cur := l.(type) {
		case *distlink.ObjectLink:
			l = cur.Field(seg)
		case *distlink.ArrayLink:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("path %q: %q is not a list index", path, seg)
			}
			l = cur.Item(i)
		default:
			l = nil
		}
		if l == nil {
			return nil, fmt.Errorf("path %q: no member %q", path, seg)
		}
	}
	return l, nil
}

func segments(path string) []string {
	return lo.Compact(strings.Split(path, "."))
}
