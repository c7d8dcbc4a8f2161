package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
	"github.com/delaneyj/linkparty/manifest"
	"github.com/delaneyj/linkparty/value"
)

const page = `<html><head><style id="app">.accent { color: black; }</style></head><body>
<h1 class="title"></h1>
<input id="title-input">
<p id="done"></p>
<ul id="todos"><li><span class="label"></span></li></ul>
</body></html>`

const model = `
title: groceries
accent: teal
done: false
todos:
  - label: milk
  - label: eggs
`

const bindings = `
bindings:
  - path: title
    select: h1.title
    text: true
    filters: [upper, "prefix:# "]
  - path: title
    select: "#title-input"
    two_way: change
  - path: done
    select: "#done"
    toggle: {name: finished, on: true}
  - path: accent
    style: {sheet: app, rule: .accent, property: color}
  - path: todos
    select: "#todos"
    each:
      - path: label
        select: .label
        text: true
        filters: [title]
`

func setup(t *testing.T) (*dom.Document, *value.Object, *distlink.ObjectLink) {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	m, err := value.DecodeObject([]byte(model))
	require.NoError(t, err)
	s := distlink.NewSession(doc)
	t.Cleanup(s.Close)
	root, err := s.Bind(m)
	require.NoError(t, err)

	man, err := manifest.Parse([]byte(bindings))
	require.NoError(t, err)
	require.NoError(t, man.Apply(root))
	return doc, m, root
}

func labels(doc *dom.Document) []string {
	var out []string
	for _, li := range doc.Query("#todos").Children() {
		out = append(out, li.Children()[0].Text())
	}
	return out
}

func TestApply(t *testing.T) {
	doc, _, _ := setup(t)

	assert.Equal(t, "# GROCERIES", doc.Query("h1.title").Text())
	assert.Equal(t, "groceries", doc.Query("#title-input").Value())
	assert.False(t, doc.Query("#done").HasClass("finished"))
	assert.Equal(t, "teal", doc.Sheet("app").Rule(".accent").Style("color"))
	assert.Equal(t, []string{"Milk", "Eggs"}, labels(doc))
}

func TestScript(t *testing.T) {
	doc, m, _ := setup(t)

	script, err := manifest.ParseScript([]byte(`
steps:
  - set: done
    value: true
  - append: todos
    value: {label: bread}
  - insert: todos
    index: 0
    value: {label: tea}
  - remove: todos
    index: 1
  - set: todos.0.label
    value: coffee
  - input: "#title-input"
    value: errands
`))
	require.NoError(t, err)
	require.NoError(t, script.Run(doc, m))

	assert.True(t, doc.Query("#done").HasClass("finished"))
	assert.Equal(t, []string{"Coffee", "Eggs", "Bread"}, labels(doc))
	assert.Equal(t, "errands", m.Get("title"))
	assert.Equal(t, "# ERRANDS", doc.Query("h1.title").Text())
}

func TestScriptErrors(t *testing.T) {
	doc, m, _ := setup(t)

	_, err := manifest.ParseScript([]byte(`steps: [{set: a, append: b}]`))
	assert.ErrorIs(t, err, manifest.ErrInvalid)
	_, err = manifest.ParseScript([]byte(`steps: [{}]`))
	assert.ErrorIs(t, err, manifest.ErrInvalid)
	_, err = manifest.ParseScript([]byte(`steps: [{sett: a}]`))
	assert.ErrorIs(t, err, manifest.ErrInvalid)

	for _, src := range []string{
		`steps: [{append: title, value: x}]`,
		`steps: [{set: nope.x, value: 1}]`,
		`steps: [{input: "#missing", value: 1}]`,
		`steps: [{set: todos, value: 1}]`,
	} {
		s, err := manifest.ParseScript([]byte(src))
		require.NoError(t, err, src)
		assert.Error(t, s.Run(doc, m), src)
	}
}

func TestParseErrors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown field":   `bindings: [{path: a, txt: true}]`,
		"unknown filter":  `bindings: [{path: a, text: true, filters: [shout]}]`,
		"filter arg":      `bindings: [{path: a, text: true, filters: ["upper:x"]}]`,
		"style property":  `bindings: [{path: a, style: {rule: .a}}]`,
		"toggle name":     `bindings: [{path: a, toggle: {on: true}}]`,
		"each and text":   `bindings: [{path: a, text: true, each: [{path: b}]}]`,
		"nested filter":   `bindings: [{path: a, each: [{path: b, filters: [nope]}]}]`,
		"not yaml at all": `bindings: [`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(src))
			assert.ErrorIs(t, err, manifest.ErrInvalid)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	s := distlink.NewSession(doc)
	defer s.Close()
	m, err := value.DecodeObject([]byte(model))
	require.NoError(t, err)
	root, err := s.Bind(m)
	require.NoError(t, err)

	for name, src := range map[string]string{
		"missing path":   `bindings: [{path: nope, text: true}]`,
		"bad index":      `bindings: [{path: todos.x, text: true}]`,
		"text on list":   `bindings: [{path: todos, select: "#todos", text: true}]`,
		"missing select": `bindings: [{path: title, select: "#nope", text: true}]`,
		"each on scalar": `bindings: [{path: title, each: [{path: x}]}]`,
		"two way on h1":  `bindings: [{path: title, select: h1, two_way: change}]`,
	} {
		t.Run(name, func(t *testing.T) {
			man, err := manifest.Parse([]byte(src))
			require.NoError(t, err)
			assert.Error(t, man.Apply(root))
		})
	}
}

func TestResolve(t *testing.T) {
	_, _, root := setup(t)
	l, err := manifest.Resolve(root, "todos.1.label")
	require.NoError(t, err)
	assert.Equal(t, "eggs", l.Value())

	self, err := manifest.Resolve(root, "")
	require.NoError(t, err)
	assert.Same(t, root, self)

	_, err = manifest.Resolve(root, "title.x")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bindings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bindings), 0o644))
	m, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Bindings, 5)

	_, err = manifest.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	f, err := manifest.ParseFilter("suffix:px")
	require.NoError(t, err)
	assert.Equal(t, "3px", f(3))

	f, err = manifest.ParseFilter("default:n/a")
	require.NoError(t, err)
	assert.Equal(t, "n/a", f(nil))

	_, err = manifest.ParseFilter("prefix")
	assert.Error(t, err)
}
