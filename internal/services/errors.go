package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports per-field constraint failures for a create or
// update operation. No persistence side effect has occurred when one is
// returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(names, ", "))
}
