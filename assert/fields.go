package assert

import (
	"fmt"
	"sort"
	"strings"
)

// Fields the context of an assertion, printed next to the failure message
type Fields map[string]interface{}

// String returns the fields as comma separated key:value pairs sorted by key
func (f Fields) String() string {
	if len(f) == 0 {
		return ""
	}
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, fmt.Sprintf("%v:%v", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
