// Package enums holds the closed string sets stored in the database and
// accepted over the API.
package enums

import (
	"fmt"
	"slices"
)

type stringEnum interface {
	~string
}

func parse[T stringEnum](kind, value string, known []T) (T, error) {
	if v := T(value); slices.Contains(known, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
