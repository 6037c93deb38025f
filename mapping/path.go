// Package mapping applies rename/default/drop/require rules to a data
// object, addressed by dotted identifier paths, in a fixed deterministic
// order.
package mapping

import (
	"strings"
	"unicode"
)

// ValidPath reports whether path is a mapping path: one or more dot-joined
// identifier segments. Array syntax is deliberately not part of this
// grammar; it belongs to the schema walkers only.
func ValidPath(path string) bool {
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return false
	}
	for _, part := range strings.Split(path, ".") {
		if !identifier(part) {
			return false
		}
	}
	return true
}

func identifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// Get walks path through nested maps. Missing segments or non-map
// intermediates report found=false; the tree is never modified.
func Get(tree map[string]any, path string) (any, bool) {
	var current any = tree
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores value at path, creating intermediate maps as needed. A non-map
// intermediate is replaced by a fresh map, matching create-on-set
// semantics.
func Set(tree map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := tree
	for _, key := range parts[:len(parts)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Delete removes the value at path and reports whether it was present.
func Delete(tree map[string]any, path string) bool {
	parts := strings.Split(path, ".")
	current := tree
	for _, key := range parts[:len(parts)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	last := parts[len(parts)-1]
	if _, ok := current[last]; !ok {
		return false
	}
	delete(current, last)
	return true
}
