package distlink_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
)

const page = `<!doctype html>
<html><head><style id="app">.accent { color: red; }</style></head>
<body>
  <div id="user">
    <span class="name"></span>
    <input class="name-input" value="">
    <input class="age" value="">
    <a class="link"></a>
  </div>
  <p id="status"></p>
  <ul id="todos"><li><span class="title"></span><input class="title-input"></li></ul>
  <ol id="tags"><li></li></ol>
  <div id="empty"></div>
</body></html>`

func setup(t *testing.T) (*dom.Document, *distlink.Session) {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	s := distlink.NewSession(doc)
	t.Cleanup(s.Close)
	return doc, s
}

// spy counts the writes made to an element.
type spy struct {
	*dom.Element
	texts  int
	values int
}

func (s *spy) SetText(text string) {
	s.texts++
	s.Element.SetText(text)
}

func (s *spy) SetValue(value string) {
	s.values++
	s.Element.SetValue(value)
}

func spyOn(t *testing.T, doc *dom.Document, query string) *spy {
	t.Helper()
	el := doc.Query(query)
	require.NotNil(t, el, query)
	return &spy{Element: el}
}
