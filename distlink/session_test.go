package distlink_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
	"github.com/delaneyj/linkparty/value"
)

func TestSingleLinkPerValue(t *testing.T) {
	_, s := setup(t)

	t.Run("shared", func(t *testing.T) {
		shared := value.New("n", 1)
		root, err := s.Bind(value.New("a", shared, "b", shared))
		require.NoError(t, err)
		assert.Same(t, root.Object("a"), root.Object("b"))

		again, err := s.Link(shared)
		require.NoError(t, err)
		assert.Same(t, root.Object("a"), again)
	})

	t.Run("cycle", func(t *testing.T) {
		self := value.New("name", "loop")
		self.Store("self", self)
		root, err := s.Bind(self)
		require.NoError(t, err)
		assert.Same(t, root, root.Object("self"))
		assert.Same(t, root, root.Object("self").Object("self"))
	})

	t.Run("cycle through list", func(t *testing.T) {
		list := value.NewList()
		node := value.New("children", list)
		list.AppendRaw(node)
		root, err := s.Bind(node)
		require.NoError(t, err)
		assert.Same(t, root, root.Array("children").Item(0))
	})

	t.Run("rebind", func(t *testing.T) {
		o := value.New("x", 1)
		a, err := s.Bind(o)
		require.NoError(t, err)
		b, err := s.Bind(o)
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.NotEmpty(t, o.Token())
	})
}

func TestIdentityTokensAreUnique(t *testing.T) {
	_, s := setup(t)
	seen := map[string]bool{}
	for range 100 {
		o := value.New("x", 1)
		_, err := s.Bind(o)
		require.NoError(t, err)
		require.False(t, seen[o.Token()])
		seen[o.Token()] = true
	}
	assert.Equal(t, 100, s.Registry().Len())
}

func TestUnsupportedType(t *testing.T) {
	_, s := setup(t)

	_, err := s.Bind(value.New("fn", func() {}))
	assert.ErrorIs(t, err, distlink.ErrUnsupportedType)
	assert.Equal(t, 0, s.Registry().Len(), "failed links must not stay registered")

	_, err = s.Link(struct{}{})
	assert.ErrorIs(t, err, distlink.ErrUnsupportedType)

	_, err = s.Bind(nil)
	assert.ErrorIs(t, err, distlink.ErrUnsupportedType)
}

func TestObjectPropagate(t *testing.T) {
	doc, s := setup(t)
	inner := value.New("name", "Ada", "age", 36)
	model := value.New("user", inner)
	root, err := s.Bind(model)
	require.NoError(t, err)

	user := root.Object("user")
	require.NoError(t, user.Select("#user"))
	name := user.Primitive("name")
	require.NoError(t, name.Select("span"))
	_, err = name.BindText()
	require.NoError(t, err)

	require.NoError(t, model.Set("user", value.New("name", "Grace", "age", 40)))
	assert.Equal(t, "Grace", doc.Query(".name").Text())
	assert.Same(t, inner, model.Get("user"), "assignment flows into the linked object")
	assert.Equal(t, 40, inner.Get("age"))

	require.NoError(t, user.Set(map[string]any{"name": "Linus"}))
	assert.Equal(t, "Linus", inner.Get("name"))
	assert.Nil(t, inner.Get("age"))

	require.NoError(t, user.Set(nil))
	assert.Equal(t, "", doc.Query(".name").Text())

	err = model.Set("user", []any{1})
	assert.True(t, distlink.IsTypeMismatch(err))
	var le *distlink.LinkError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "user", le.Path)
}

func TestStandaloneScalar(t *testing.T) {
	doc, s := setup(t)
	l, err := s.Link("hi")
	require.NoError(t, err)
	p := l.(*distlink.PrimitiveLink)
	require.NoError(t, p.Select("#status"))
	_, err = p.BindText()
	require.NoError(t, err)
	require.NoError(t, p.Set("there"))
	assert.Equal(t, "there", doc.Query("#status").Text())
}

func TestClose(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	s := distlink.NewSession(doc)

	list := value.NewList(todo("a"), todo("b"))
	model := value.New("name", "n", "todos", list)
	root, err := s.Bind(model)
	require.NoError(t, err)
	name := root.Primitive("name")
	require.NoError(t, name.Select(".name-input"))
	_, err = name.BindTwoWay("change")
	require.NoError(t, err)
	todos := root.Array("todos")
	require.NoError(t, todos.Select("#todos"))
	require.NoError(t, todos.Each(renderTodo))
	require.Len(t, doc.Query("#todos").Children(), 2)

	s.Close()
	assert.Equal(t, 0, s.Registry().Len())
	assert.Equal(t, 0, doc.Query(".name-input").Listeners("change"))
	assert.Empty(t, doc.Query("#todos").Children())
	assert.False(t, model.Intercepted("name"))

	require.NoError(t, model.Set("name", "raw"))
	assert.Equal(t, "raw", model.Get("name"))
	require.NoError(t, list.Append(todo("c")))
	assert.Equal(t, 3, list.Len())

	_, err = s.Link(value.New())
	assert.ErrorIs(t, err, distlink.ErrSessionClosed)
	_, err = s.Bind(value.New())
	assert.ErrorIs(t, err, distlink.ErrSessionClosed)
	s.Close()
}

func TestCloseCycle(t *testing.T) {
	_, s := setup(t)
	a := value.New()
	b := value.New("a", a)
	a.Store("b", b)
	_, err := s.Bind(a)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Registry().Len())
	s.Close()
	assert.Equal(t, 0, s.Registry().Len())
}

func TestSessionsAreIndependent(t *testing.T) {
	docA, a := setup(t)
	docB, b := setup(t)

	shared := value.New("name", "x")
	la, err := a.Bind(shared)
	require.NoError(t, err)
	require.NoError(t, la.Primitive("name").Select("#status"))
	_, err = la.Primitive("name").BindText()
	require.NoError(t, err)

	other := value.New("name", "y")
	lb, err := b.Bind(other)
	require.NoError(t, err)
	require.NoError(t, lb.Primitive("name").Select("#status"))
	_, err = lb.Primitive("name").BindText()
	require.NoError(t, err)

	a.Close()
	assert.Equal(t, 0, a.Registry().Len())
	assert.Equal(t, 1, b.Registry().Len())

	require.NoError(t, other.Set("name", "z"))
	assert.Equal(t, "z", docB.Query("#status").Text())
	assert.Equal(t, "x", docA.Query("#status").Text())
}

func TestBindings(t *testing.T) {
	_, s := setup(t)
	root, err := s.Bind(value.New("name", "a", "url", "u"))
	require.NoError(t, err)
	name := root.Primitive("name")
	require.NoError(t, name.Select("#user .name"))
	b, err := name.BindText()
	require.NoError(t, err)
	b.Filter(distlink.Upper)
	url := root.Primitive("url")
	require.NoError(t, url.Select(".link"))
	_, err = url.BindHref()
	require.NoError(t, err)

	assert.Equal(t, []distlink.BindingInfo{
		{Path: "name", Kind: distlink.ToText, Target: "span.name", Filters: 1},
		{Path: "url", Kind: distlink.ToAttribute, Target: "a.link [href]"},
	}, s.Bindings())
	assert.Equal(t, "attribute", distlink.ToAttribute.String())
}
