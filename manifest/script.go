package manifest

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
	"github.com/delaneyj/linkparty/value"
)

// Script is a list of model mutations and simulated user input.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step performs exactly one of its operations. Paths are dotted paths into
// the model, Input is a query into the document.
type Step struct {
	Set    string    `yaml:"set"`
	Append string    `yaml:"append"`
	Insert string    `yaml:"insert"`
	Remove string    `yaml:"remove"`
	Input  string    `yaml:"input"`
	Event  string    `yaml:"event"`
	Index  int       `yaml:"index"`
	Count  int       `yaml:"count"`
	Value  yaml.Node `yaml:"value"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i, step := range s.Steps {
		if _, err := step.op(); err != nil {
			return nil, fmt.Errorf("%w: steps[%d]: %v", ErrInvalid, i, err)
		}
	}
	return &s, nil
}

var stepOps = []string{"set", "append", "insert", "remove", "input"}

func (st Step) op() (string, error) {
	present := map[string]bool{
		"set":    st.Set != "",
		"append": st.Append != "",
		"insert": st.Insert != "",
		"remove": st.Remove != "",
		"input":  st.Input != "",
	}
	ops := lo.Filter(stepOps, func(op string, _ int) bool { return present[op] })
	if len(ops) != 1 {
		return "", fmt.Errorf("want exactly one operation, got %v", ops)
	}
	return ops[0], nil
}

// String describes the step for logs.
func (st Step) String() string {
	op, err := st.op()
	if err != nil {
		return "invalid"
	}
	switch op {
	case "set":
		return "set " + st.Set
	case "append":
		return "append " + st.Append
	case "insert":
		return fmt.Sprintf("insert %s[%d]", st.Insert, st.Index)
	case "remove":
		return fmt.Sprintf("remove %s[%d:+%d]", st.Remove, st.Index, st.count())
	}
	return fmt.Sprintf("input %s @%s", st.Input, st.event())
}

func (st Step) count() int {
	if st.Count == 0 {
		return 1
	}
	return st.Count
}

func (st Step) event() string {
	if st.Event == "" {
		return distlink.DefaultEvent
	}
	return st.Event
}

// Run applies the steps in order. Mutations go through the model, so bound
// links observe them exactly as they would any other assignment.
func (s *Script) Run(doc *dom.Document, root *value.Object) error {
	for i, st := range s.Steps {
		if err := st.Run(doc, root); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st, err)
		}
	}
	return nil
}

func (st Step) Run(doc *dom.Document, root *value.Object) error {
	v, err := value.FromNode(&st.Value)
	if err != nil {
		return err
	}
	op, err := st.op()
	if err != nil {
		return err
	}
	switch op {
	case "set":
		parent, last := splitLast(st.Set)
		c, err := Lookup(root, parent)
		if err != nil {
			return err
		}
		switch c := c.(type) {
		case *value.Object:
			return c.Set(last, v)
		case *value.List:
			i, err := strconv.Atoi(last)
			if err != nil {
				return fmt.Errorf("path %q: %q is not a list index", st.Set, last)
			}
			return c.Set(i, v)
		}
		return fmt.Errorf("path %q: %T has no members", st.Set, c)
	case "append":
		l, err := lookupList(root, st.Append)
		if err != nil {
			return err
		}
		return l.Append(v)
	case "insert":
		l, err := lookupList(root, st.Insert)
		if err != nil {
			return err
		}
		return l.Insert(st.Index, v)
	case "remove":
		l, err := lookupList(root, st.Remove)
		if err != nil {
			return err
		}
		return l.Remove(st.Index, st.count())
	}
	el := doc.Query(st.Input)
	if el == nil {
		return fmt.Errorf("%w: %q", distlink.ErrNotFound, st.Input)
	}
	return doc.Input(el, st.event(), value.String(v))
}

// Lookup walks a dotted path through the model.
func Lookup(root *value.Object, path string) (any, error) {
	var cur any = root
	for _, seg := range segments(path) {
		switch c := cur.(type) {
		case *value.Object:
			if !c.Has(seg) {
				return nil, fmt.Errorf("path %q: no member %q", path, seg)
			}
			cur = c.Get(seg)
		case *value.List:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= c.Len() {
				return nil, fmt.Errorf("path %q: bad index %q", path, seg)
			}
			cur = c.At(i)
		default:
			return nil, fmt.Errorf("path %q: %q is not a member of a scalar", path, seg)
		}
	}
	return cur, nil
}

func lookupList(root *value.Object, path string) (*value.List, error) {
	v, err := Lookup(root, path)
	if err != nil {
		return nil, err
	}
	l, ok := v.(*value.List)
	if !ok {
		return nil, fmt.Errorf("path %q: %T is not a list", path, v)
	}
	return l, nil
}

func splitLast(path string) (string, string) {
	segs := segments(path)
	if len(segs) == 0 {
		return "", ""
	}
	return strings.Join(segs[:len(segs)-1], "."), segs[len(segs)-1]
}
