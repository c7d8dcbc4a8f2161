package value

import (
	"strings"

	"github.com/spf13/cast"
)

// IsScalar reports whether v is a leaf value: nil, string, bool or a number.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// String is the display form of a scalar. nil renders as "".
func String(v any) string {
	return cast.ToString(v)
}

// Truthy follows the usual scripting rules: false, zero, "" and nil are off.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float32:
		return v != 0 && v == v
	case float64:
		return v != 0 && v == v
	}
	if IsScalar(v) {
		return cast.ToInt64(v) != 0
	}
	return v != nil
}

// Coerce converts s, typically read back from an input control, to the
// scalar kind of like. When s does not parse as that kind s is returned
// unchanged. Integers are read as decimal only, so "010" is 10.
func Coerce(s string, like any) any {
	var (
		v   any
		err error
	)
	in := s
	switch like.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		var ok bool
		if s, ok = decimal(s); !ok {
			return in
		}
	}
	switch like.(type) {
	case bool:
		v, err = cast.ToBoolE(s)
	case int:
		v, err = cast.ToIntE(s)
	case int8:
		v, err = cast.ToInt8E(s)
	case int16:
		v, err = cast.ToInt16E(s)
	case int32:
		v, err = cast.ToInt32E(s)
	case int64:
		v, err = cast.ToInt64E(s)
	case uint:
		v, err = cast.ToUintE(s)
	case uint8:
		v, err = cast.ToUint8E(s)
	case uint16:
		v, err = cast.ToUint16E(s)
	case uint32:
		v, err = cast.ToUint32E(s)
	case uint64:
		v, err = cast.ToUint64E(s)
	case float32:
		v, err = cast.ToFloat32E(s)
	case float64:
		v, err = cast.ToFloat64E(s)
	default:
		return in
	}
	if err != nil {
		return in
	}
	return v
}

// decimal strips leading zeros from a signed run of decimal digits. Anything
// else, such as hex or octal prefixes and digit separators, is rejected.
func decimal(s string) (string, bool) {
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	if s == "" || strings.Trim(s, "0123456789") != "" {
		return "", false
	}
	if s = strings.TrimLeft(s, "0"); s == "" {
		s = "0"
	}
	return sign + s, true
}
