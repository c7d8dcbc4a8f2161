package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
)

const page = `<!doctype html>
<html><head><style id="app">.accent { color: red; } .a, .b { margin: 0; }</style></head>
<body>
  <div id="user"><span class="name">?</span><input id="age" value="1"></div>
  <ul id="todos"><li><span class="title"></span></li></ul>
  <select id="pick"><option value="x">X</option><option value="y" selected>Y</option></select>
</body></html>`

func parse(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	return doc
}

func TestResolve(t *testing.T) {
	doc := parse(t)

	t.Run("global", func(t *testing.T) {
		el, err := doc.Resolve(nil, "#user .name")
		require.NoError(t, err)
		assert.Equal(t, "span.name", el.(*dom.Element).String())
	})

	t.Run("same node same handle", func(t *testing.T) {
		a, err := doc.Resolve(nil, "#age")
		require.NoError(t, err)
		b, err := doc.Resolve(nil, "input")
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("scoped excludes scope", func(t *testing.T) {
		user := doc.Query("#user")
		require.NotNil(t, user)
		_, err := doc.Resolve(user, "div")
		assert.ErrorIs(t, err, distlink.ErrNotFound)

		el, err := doc.Resolve(user, "span")
		require.NoError(t, err)
		assert.Equal(t, "?", el.Text())
	})

	t.Run("invalid query", func(t *testing.T) {
		_, err := doc.Resolve(nil, "[[")
		assert.ErrorIs(t, err, distlink.ErrInvalidSurfaceTarget)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := doc.Resolve(nil, "#nope")
		assert.ErrorIs(t, err, distlink.ErrNotFound)
	})
}

func TestElement(t *testing.T) {
	doc := parse(t)
	name := doc.Query(".name")

	name.SetText("Ada")
	assert.Equal(t, "Ada", name.Text())

	name.AddClass("big")
	name.AddClass("big")
	assert.Equal(t, []string{"name", "big"}, name.Classes())
	name.RemoveClass("name")
	assert.True(t, name.HasClass("big"))
	assert.False(t, name.HasClass("name"))

	name.SetAttr("title", "t")
	v, ok := name.Attr("title")
	assert.True(t, ok)
	assert.Equal(t, "t", v)

	assert.False(t, name.IsInput())
	assert.True(t, doc.Query("#age").IsInput())
}

func TestValues(t *testing.T) {
	doc := parse(t)

	age := doc.Query("#age")
	assert.Equal(t, "1", age.Value())
	age.SetValue("42")
	assert.Equal(t, "42", age.Value())

	pick := doc.Query("#pick")
	assert.Equal(t, "y", pick.Value())
	pick.SetValue("x")
	assert.Equal(t, "x", pick.Value())
}

func TestListeners(t *testing.T) {
	doc := parse(t)
	age := doc.Query("#age")

	var got []string
	remove := age.Listen("change", func(e distlink.Event) error {
		got = append(got, e.Value)
		return nil
	})
	require.NoError(t, doc.Input(age, "change", "7"))
	require.NoError(t, doc.Input(age, "input", "8"))
	assert.Equal(t, []string{"7"}, got)

	remove()
	assert.Equal(t, 0, age.Listeners("change"))
	require.NoError(t, doc.Input(age, "change", "9"))
	assert.Equal(t, []string{"7"}, got)
}

func TestTree(t *testing.T) {
	doc := parse(t)
	ul := doc.Query("#todos")

	tmpl := ul.FirstChild()
	require.NotNil(t, tmpl)
	clone := tmpl.Clone().(*dom.Element)
	assert.NotSame(t, tmpl, clone)
	assert.False(t, clone.Attached())

	ul.RemoveChildren()
	assert.Nil(t, ul.FirstChild())

	ul.AppendChild(clone)
	assert.True(t, clone.Attached())
	assert.Same(t, clone, ul.FirstChild())

	ul.RemoveChild(clone)
	assert.False(t, clone.Attached())
}

func TestStyles(t *testing.T) {
	doc := parse(t)

	rule, err := doc.ResolveRule(distlink.Equals("app"), distlink.Equals(".accent"))
	require.NoError(t, err)
	assert.Equal(t, "red", rule.Style("color"))

	rule.SetStyle("color", "blue")
	rule.SetStyle("padding", "1px")
	assert.Contains(t, doc.String(), "color: blue")
	assert.Contains(t, doc.String(), "padding: 1px")

	grouped, err := doc.ResolveRule(nil, distlink.CSVContains(".b"))
	require.NoError(t, err)
	assert.Equal(t, ".a, .b", grouped.Selector())

	_, err = doc.ResolveRule(distlink.EndsWith(".css"), nil)
	assert.ErrorIs(t, err, distlink.ErrNotFound)

	sheet, err := doc.AddStylesheet("theme.css", "body { background: white; }")
	require.NoError(t, err)
	body, err := doc.ResolveRule(distlink.EndsWith(".css"), nil)
	require.NoError(t, err)
	assert.Same(t, sheet.Rule("body"), body)
}

func TestFingerprint(t *testing.T) {
	doc := parse(t)
	before := doc.Fingerprint()
	assert.Equal(t, before, doc.Fingerprint())

	doc.Query(".name").SetText("changed")
	assert.NotEqual(t, before, doc.Fingerprint())
}
