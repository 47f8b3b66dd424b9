package violation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/value"
)

// format renders an expected or actual value for a message.
func format(x any) string {
	switch x := x.(type) {
	case nil:
		return "none"
	case reflect.Type:
		return x.String()
	case descriptor.Descriptor:
		return x.String()
	case []reflect.Type:
		parts := make([]string, len(x))
		for i, t := range x {
			parts[i] = format(t)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []descriptor.Descriptor:
		parts := make([]string, len(x))
		for i, d := range x {
			parts[i] = format(d)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []any:
		return "[" + descriptor.FormatLiterals(x) + "]"
	case value.FrozenSet:
		return "{" + descriptor.FormatLiterals(x.Items()) + "}"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", x)
}

func isMulti(x any) bool {
	switch x.(type) {
	case []reflect.Type, []descriptor.Descriptor, []any, value.FrozenSet:
		return true
	}
	return false
}
