package query

import (
	"strings"

	"github.com/yashagw/relcore/internal/value"
)

// Row gives expressions access to the values of one record. Lookups are
// case-insensitive on the field name.
type Row interface {
	Lookup(name string) (value.Value, bool)
}

// MapRow is a Row backed by a map, mostly used for grouped rows and tests.
type MapRow map[string]value.Value

func (m MapRow) Lookup(name string) (value.Value, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return value.Value{}, false
}
