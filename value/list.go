package value

// Hook receives mutations made through the List methods once a link owns the
// list.
type Hook interface {
	SetItem(index int, v any) error
	Append(v any) error
	Insert(index int, v any) error
	Remove(index, count int) error
}

// List is an ordered sequence of values.
type List struct {
	token string
	items []any
	hook  Hook
}

// NewList returns a list holding items.
func NewList(items ...any) *List {
	l := &List{items: make([]any, 0, len(items))}
	l.items = append(l.items, items...)
	return l
}

// Token returns the identity token assigned by a registry, or "".
func (l *List) Token() string { return l.token }

// SetToken assigns the identity token. It can only be set once.
func (l *List) SetToken(token string) {
	if l.token != "" {
		panic("value: list token already assigned")
	}
	l.token = token
}

func (l *List) Len() int { return len(l.items) }

// At returns the item at i, nil when out of range.
func (l *List) At(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Items returns a copy of the items.
func (l *List) Items() []any {
	items := make([]any, len(l.items))
	copy(items, l.items)
	return items
}

// SetHook routes subsequent mutations into h. A nil h restores raw mutation.
func (l *List) SetHook(h Hook) { l.hook = h }

func (l *List) Set(i int, v any) error {
	if l.hook != nil {
		return l.hook.SetItem(i, v)
	}
	l.StoreAt(i, v)
	return nil
}

func (l *List) Append(v any) error {
	if l.hook != nil {
		return l.hook.Append(v)
	}
	l.AppendRaw(v)
	return nil
}

func (l *List) Insert(i int, v any) error {
	if l.hook != nil {
		return l.hook.Insert(i, v)
	}
	l.InsertRaw(i, v)
	return nil
}

func (l *List) Remove(i, count int) error {
	if l.hook != nil {
		return l.hook.Remove(i, count)
	}
	l.SpliceRaw(i, count)
	return nil
}

// StoreAt overwrites item i without going through the hook. Out of range
// indexes are ignored.
func (l *List) StoreAt(i int, v any) {
	if i < 0 || i >= len(l.items) {
		return
	}
	l.items[i] = v
}

// AppendRaw appends without going through the hook.
func (l *List) AppendRaw(v any) {
	l.items = append(l.items, v)
}

// InsertRaw inserts before i without going through the hook. i is clamped to
// the list bounds.
func (l *List) InsertRaw(i int, v any) {
	if i < 0 {
		i = 0
	}
	if i >= len(l.items) {
		l.items = append(l.items, v)
		return
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
}

// SpliceRaw removes count items starting at i without going through the hook.
func (l *List) SpliceRaw(i, count int) {
	if i < 0 || i >= len(l.items) || count <= 0 {
		return
	}
	count = min(count, len(l.items)-i)
	end := i + count
	l.items = append(l.items[:i], l.items[end:]...)
}

// Truncate drops every item from n onwards.
func (l *List) Truncate(n int) {
	if n < 0 || n >= len(l.items) {
		return
	}
	clear(l.items[n:])
	l.items = l.items[:n]
}
