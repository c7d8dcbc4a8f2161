package dom

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/delaneyj/linkparty/distlink"
)

// Sheet is one parsed style sheet.
type Sheet struct {
	name  string
	node  *html.Node
	sheet *css.Stylesheet
	rules []*Rule
}

func parseSheet(name, text string) (*Sheet, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse sheet %s: %w", name, err)
	}
	s := &Sheet{name: name, sheet: sheet}
	s.collect(sheet.Rules)
	return s, nil
}

// collect flattens qualified rules, including those nested in at-rules.
func (s *Sheet) collect(rules []*css.Rule) {
	for _, r := range rules {
		switch r.Kind {
		case css.QualifiedRule:
			s.rules = append(s.rules, &Rule{sheet: s, rule: r})
		case css.AtRule:
			s.collect(r.Rules)
		}
	}
}

func (s *Sheet) Name() string { return s.name }

func (s *Sheet) Rules() []*Rule {
	rules := make([]*Rule, len(s.rules))
	copy(rules, s.rules)
	return rules
}

// Rule returns the first rule with exactly the selector text sel.
func (s *Sheet) Rule(sel string) *Rule {
	for _, r := range s.rules {
		if r.Selector() == sel {
			return r
		}
	}
	return nil
}

func (s *Sheet) String() string { return s.sheet.String() }

// Rule is the handle of one qualified rule.
type Rule struct {
	sheet *Sheet
	rule  *css.Rule
}

var _ distlink.StyleRuleHandle = (*Rule)(nil)

func (r *Rule) Sheet() *Sheet { return r.sheet }

// Selector is the rule's selector list joined by ", ".
func (r *Rule) Selector() string {
	if len(r.rule.Selectors) == 0 {
		return strings.TrimSpace(r.rule.Prelude)
	}
	return strings.Join(r.rule.Selectors, ", ")
}

func (r *Rule) Style(property string) string {
	for _, d := range r.rule.Declarations {
		if d.Property == property {
			return d.Value
		}
	}
	return ""
}

// SetStyle replaces the declaration of property, appending one when there is
// none. An empty value removes it.
func (r *Rule) SetStyle(property, value string) {
	for i, d := range r.rule.Declarations {
		if d.Property != property {
			continue
		}
		if value == "" {
			r.rule.Declarations = append(r.rule.Declarations[:i], r.rule.Declarations[i+1:]...)
			return
		}
		d.Value = value
		return
	}
	if value == "" {
		return
	}
	r.rule.Declarations = append(r.rule.Declarations, &css.Declaration{Property: property, Value: value})
}

func (r *Rule) String() string { return r.rule.String() }
