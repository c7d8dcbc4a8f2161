// Package value holds the mutable value graph that links mirror: ordered
// keyed objects, ordered lists and scalars.
package value

// Intercept receives assignments made through Object.Set once a link owns the
// member.
type Intercept func(v any) error

// Object is an ordered keyed record. Key order is insertion order and is the
// order links traverse children in.
type Object struct {
	token      string
	keys       []string
	fields     map[string]any
	intercepts map[string]Intercept
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{
		fields: map[string]any{},
	}
}

// New builds an object from alternating key, value pairs.
func New(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("value.New: odd number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic("value.New: key is not a string")
		}
		o.Store(key, kv[i+1])
	}
	return o
}

// Token returns the identity token assigned by a registry, or "".
func (o *Object) Token() string { return o.token }

// SetToken assigns the identity token. It can only be set once.
func (o *Object) SetToken(token string) {
	if o.token != "" {
		panic("value: object token already assigned")
	}
	o.token = token
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len is the number of members.
func (o *Object) Len() int { return len(o.keys) }

// Has reports whether key is a member.
func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// Get returns the member value, nil when absent.
func (o *Object) Get(key string) any {
	return o.fields[key]
}

// Set assigns a member. When a link has intercepted the member the assignment
// is routed into it, otherwise the value is stored directly.
func (o *Object) Set(key string, v any) error {
	if fn, ok := o.intercepts[key]; ok {
		return fn(v)
	}
	o.Store(key, v)
	return nil
}

// Store writes a member without going through an intercept.
func (o *Object) Store(key string, v any) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Intercept installs fn as the receiver of assignments to key. A later call
// replaces the previous intercept.
func (o *Object) Intercept(key string, fn Intercept) {
	if o.intercepts == nil {
		o.intercepts = map[string]Intercept{}
	}
	o.intercepts[key] = fn
}

// Intercepted reports whether assignments to key are routed into a link.
func (o *Object) Intercepted(key string) bool {
	_, ok := o.intercepts[key]
	return ok
}

// ReleaseIntercept removes the intercept for key.
func (o *Object) ReleaseIntercept(key string) {
	delete(o.intercepts, key)
}
