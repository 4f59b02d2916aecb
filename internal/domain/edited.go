package domain

import (
	"sort"
	"strings"
)

// EditedFields maps dot-delimited form paths to whether the user touched
// them. Only true flags count.
type EditedFields map[string]bool

// Paths returns the flagged paths in sorted order.
func (e EditedFields) Paths() []string {
	paths := make([]string, 0, len(e))
	for path, edited := range e {
		if edited {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Merge copies other into e. Later flags overwrite earlier ones.
func (e EditedFields) Merge(other EditedFields) {
	for path, edited := range other {
		e[path] = edited
	}
}

// SelectEditedValues copies the leaf of every flagged path from values into
// a new tree of the same shape.
//
// Unflagged siblings of a flagged leaf are never copied. Paths that resolve
// to nothing or cross a non-map value are skipped.
func SelectEditedValues(values map[string]any, edited EditedFields) map[string]any {
	out := make(map[string]any)

	for _, path := range edited.Paths() {
		segments := strings.Split(path, ".")
		leaf, ok := lookupPath(values, segments)
		if !ok {
			continue
		}
		setPath(out, segments, cloneValue(leaf))
	}

	return out
}

func lookupPath(values map[string]any, segments []string) (any, bool) {
	var current any = values
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok || segment == "" {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func setPath(dst map[string]any, segments []string, leaf any) {
	current := dst
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = leaf
}
