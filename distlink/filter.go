package distlink

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/delaneyj/linkparty/value"
)

// FilterFunc transforms a value on its way to the surface. Filters run in the
// order they were added and never touch the stored value.
type FilterFunc func(v any) any

func stringFilter(fn func(string) string) FilterFunc {
	return func(v any) any {
		return fn(value.String(v))
	}
}

var (
	Upper = stringFilter(strings.ToUpper)
	Lower = stringFilter(strings.ToLower)
	Trim  = stringFilter(strings.TrimSpace)
	Title = stringFilter(func(s string) string {
		return cases.Title(language.Und).String(s)
	})
)

func Prefix(p string) FilterFunc {
	return stringFilter(func(s string) string { return p + s })
}

func Suffix(x string) FilterFunc {
	return stringFilter(func(s string) string { return s + x })
}

// Default renders fallback in place of nil or empty values.
func Default(fallback string) FilterFunc {
	return func(v any) any {
		if v == nil || value.String(v) == "" {
			return fallback
		}
		return v
	}
}

// Format renders the value with a fmt verb, e.g. "%.2f".
func Format(verb string) FilterFunc {
	return func(v any) any {
		return fmt.Sprintf(verb, v)
	}
}
