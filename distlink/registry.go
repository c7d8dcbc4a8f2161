package distlink

import (
	"github.com/oklog/ulid/v2"

	"github.com/delaneyj/linkparty/value"
)

// tokened values carry the identity token the registry keys links by.
type tokened interface {
	Token() string
	SetToken(token string)
}

// Registry maps value identity tokens to links so a value reached through
// several paths, or through a cycle, always resolves to the same link.
type Registry struct {
	session *Session
	links   map[string]Link
	order   []string
}

func newRegistry(s *Session) *Registry {
	return &Registry{
		session: s,
		links:   map[string]Link{},
	}
}

// Len is the number of live compound links.
func (r *Registry) Len() int { return len(r.links) }

// Lookup returns the live link for an object or list, if any.
func (r *Registry) Lookup(v any) (Link, bool) {
	t, ok := v.(tokened)
	if !ok || t.Token() == "" {
		return nil, false
	}
	l, ok := r.links[t.Token()]
	if !ok || l.Value() != v {
		return nil, false
	}
	return l, true
}

func (r *Registry) snapshot() []Link {
	links := make([]Link, 0, len(r.order))
	for _, tok := range r.order {
		links = append(links, r.links[tok])
	}
	return links
}

// token returns the token of v, assigning a fresh collision checked one on
// first sight.
func (r *Registry) token(v tokened) string {
	if tok := v.Token(); tok != "" {
		return tok
	}
	tok := ulid.Make().String()
	for r.links[tok] != nil {
		tok = ulid.Make().String()
	}
	v.SetToken(tok)
	return tok
}

func (r *Registry) register(tok string, l Link) {
	r.links[tok] = l
	r.order = append(r.order, tok)
}

func (r *Registry) forget(tok string) {
	if _, ok := r.links[tok]; !ok {
		return
	}
	delete(r.links, tok)
	for i, t := range r.order {
		if t == tok {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// linkOf returns the link for v as held by o. Compound values are registered
// before their members are traversed so cycles resolve to the link under
// construction.
func (r *Registry) linkOf(o owner, v any) (Link, error) {
	switch v := v.(type) {
	case *value.Object:
		if l, ok := r.Lookup(v); ok {
			l.(*ObjectLink).refs++
			r.intercept(o, l)
			return l, nil
		}
		tok := r.token(v)
		l := newObjectLink(r.session, o, tok, v)
		r.register(tok, l)
		if err := l.build(); err != nil {
			abandon(l)
			return nil, err
		}
		r.intercept(o, l)
		r.session.log.V(1).Info("linked object", "path", l.Path(), "keys", len(l.keys))
		return l, nil
	case *value.List:
		if l, ok := r.Lookup(v); ok {
			l.(*ArrayLink).refs++
			r.intercept(o, l)
			return l, nil
		}
		tok := r.token(v)
		l := newArrayLink(r.session, o, tok, v)
		r.register(tok, l)
		if err := l.build(); err != nil {
			abandon(l)
			return nil, err
		}
		r.intercept(o, l)
		r.session.log.V(1).Info("linked list", "path", l.Path(), "items", len(l.items))
		return l, nil
	}
	if !value.IsScalar(v) {
		return nil, linkErrf("link", o.path(), ErrUnsupportedType, "%T", v)
	}
	return newPrimitiveLink(r.session, o, v), nil
}

// intercept routes assignments to the owning object member into l.
func (r *Registry) intercept(o owner, l Link) {
	if o.object == nil {
		return
	}
	o.object.Intercept(o.key, func(v any) error {
		return propagate(l, nil, v)
	})
}
