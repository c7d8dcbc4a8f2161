package manifest

import (
	"fmt"
	"strings"

	"github.com/delaneyj/linkparty/distlink"
)

var namedFilters = map[string]distlink.FilterFunc{
	"upper": distlink.Upper,
	"lower": distlink.Lower,
	"trim":  distlink.Trim,
	"title": distlink.Title,
}

var argFilters = map[string]func(string) distlink.FilterFunc{
	"prefix":  distlink.Prefix,
	"suffix":  distlink.Suffix,
	"default": distlink.Default,
	"format":  distlink.Format,
}

// ParseFilter resolves a filter name such as "upper" or "prefix:#".
func ParseFilter(spec string) (distlink.FilterFunc, error) {
	name, arg, hasArg := strings.Cut(spec, ":")
	if f, ok := namedFilters[name]; ok && !hasArg {
		return f, nil
	}
	if f, ok := argFilters[name]; ok && hasArg {
		return f(arg), nil
	}
	return nil, fmt.Errorf("unknown filter %q", spec)
}
