package distlink_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
	"github.com/delaneyj/linkparty/value"
)

func TestProperty_ReconcileReusesInstances(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		doc, err := dom.ParseString(page)
		require.NoError(rt, err)
		s := distlink.NewSession(doc)
		defer s.Close()

		n := rapid.IntRange(0, 6).Draw(rt, "initial")
		items := make([]any, n)
		for i := range items {
			items[i] = todo(fmt.Sprint("t", i))
		}
		list := value.NewList(items...)
		root, err := s.Bind(value.New("todos", list))
		require.NoError(rt, err)
		todos := root.Array("todos")
		require.NoError(rt, todos.Select("#todos"))

		rendered := map[distlink.Link]distlink.ElementHandle{}
		require.NoError(rt, todos.Each(func(item any, instance distlink.ElementHandle, _ int, _ distlink.ElementHandle) error {
			rendered[item.(distlink.Link)] = instance
			return renderTodo(item, instance, 0, nil)
		}))

		next := n
		steps := rapid.IntRange(1, 12).Draw(rt, "steps")
		for step := range steps {
			before := map[distlink.Link]distlink.ElementHandle{}
			for k, v := range rendered {
				before[k] = v
			}

			switch rapid.IntRange(0, 2).Draw(rt, fmt.Sprint("op", step)) {
			case 0:
				i := rapid.IntRange(0, todos.Len()).Draw(rt, fmt.Sprint("insert", step))
				require.NoError(rt, todos.Insert(i, todo(fmt.Sprint("t", next))))
				next++
			case 1:
				i := rapid.IntRange(-1, todos.Len()).Draw(rt, fmt.Sprint("remove", step))
				count := rapid.IntRange(0, 3).Draw(rt, fmt.Sprint("count", step))
				require.NoError(rt, list.Remove(i, count))
			case 2:
				if todos.Len() == 0 {
					continue
				}
				i := rapid.IntRange(0, todos.Len()-1).Draw(rt, fmt.Sprint("set", step))
				require.NoError(rt, list.Set(i, todo(fmt.Sprint("t", next))))
				next++
			}

			children := doc.Query("#todos").Children()
			require.Len(rt, children, todos.Len())
			require.Equal(rt, list.Len(), todos.Len())
			for i, item := range todos.Items() {
				instance := rendered[item]
				require.Same(rt, children[i], instance)
				if old, ok := before[item]; ok {
					require.Same(rt, old, instance, "item %d was re-rendered", i)
				}
				require.Equal(rt, list.At(i).(*value.Object).Get("title"), children[i].Children()[0].Text())
			}
		}
	})
}

func TestProperty_SourceExclusion(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		doc, err := dom.ParseString(page)
		require.NoError(rt, err)
		s := distlink.NewSession(doc)
		defer s.Close()

		model := value.New("v", "")
		root, err := s.Bind(model)
		require.NoError(rt, err)
		v := root.Primitive("v")

		targets := []string{"#status", "#user .name", ".link", "#empty"}
		n := rapid.IntRange(1, len(targets)).Draw(rt, "targets")
		spies := make([]*spy, n)
		for i := range spies {
			spies[i] = &spy{Element: doc.Query(targets[i])}
			require.NoError(rt, v.Select(spies[i]))
			_, err := v.BindText()
			require.NoError(rt, err)
		}
		input := &spy{Element: doc.Query(".name-input")}
		require.NoError(rt, v.Select(input))
		_, err = v.BindTwoWay("change")
		require.NoError(rt, err)

		text := rapid.StringMatching(`[a-z]{0,8}`).Draw(rt, "text")
		writes := make([]int, n)
		for i, sp := range spies {
			writes[i] = sp.texts
		}
		values := input.values

		input.Element.SetValue(text)
		require.NoError(rt, input.Dispatch("change"))

		require.Equal(rt, values, input.values)
		require.Equal(rt, text, model.Get("v"))
		for i, sp := range spies {
			require.Equal(rt, writes[i]+1, sp.texts)
			require.Equal(rt, text, sp.Text())
		}
	})
}
