// Package ids assigns short, stable integer labels to data-file paths.
//
// A data file's simple id is the number shown to the user instead of a long
// warehouse path. Ids are assigned in one upfront pass over the model, in
// model traversal order, before any row-level processing happens: delete
// rows later resolve their target files by path string alone and must find
// the id already registered.
//
// Registration is alias-aware. Recorded references ("file:///wh/data/a.parquet"),
// local variants ("/wh/data/a.parquet"), and Windows-style separators all
// normalize to one canonical form, and assigning any variant makes every
// variant resolvable.
package ids

import (
	"net/url"
	"strings"
)

// Registry maps data-file paths to small stable integers.
// Ids start at 1, strictly increase, and are never reused within one
// registry. A registry belongs to a single table load and is not safe for
// concurrent use.
type Registry struct {
	next   int
	byPath map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]int)}
}

// Normalize canonicalizes a data-file path for alias matching:
// whitespace is trimmed, a leading "file:" scheme is stripped (via URI
// parsing, with a literal-prefix fallback), and backslashes become forward
// slashes.
func Normalize(path string) string {
	p := strings.TrimSpace(path)

	if strings.HasPrefix(p, "file:") {
		if u, err := url.Parse(p); err == nil && u.Path != "" {
			p = u.Path
		} else {
			p = strings.TrimPrefix(p, "file:")
		}
	}

	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimSpace(p)
}

// Assign returns the id for path, allocating the next integer on first
// sight. Assign is idempotent: if the trimmed path or its normalized form
// is already registered, the existing id is returned and the missing
// variant is added as an alias.
func (r *Registry) Assign(path string) int {
	trimmed := strings.TrimSpace(path)
	norm := Normalize(path)

	if id, ok := r.byPath[trimmed]; ok {
		r.byPath[norm] = id
		return id
	}
	if id, ok := r.byPath[norm]; ok {
		r.byPath[trimmed] = id
		return id
	}

	r.next++
	r.byPath[trimmed] = r.next
	r.byPath[norm] = r.next
	return r.next
}

// Lookup resolves path to its assigned id without allocating.
// The raw trimmed form is checked before the normalized form.
func (r *Registry) Lookup(path string) (int, bool) {
	if id, ok := r.byPath[strings.TrimSpace(path)]; ok {
		return id, true
	}
	id, ok := r.byPath[Normalize(path)]
	return id, ok
}

// Len returns the number of distinct ids assigned.
func (r *Registry) Len() int { return r.next }
