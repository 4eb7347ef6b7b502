// Package pointer implements RFC 6901 JSON Pointer resolution against the
// shared tree model, plus the reverse operation (finding the pointer to a
// node given a root and a target). Object-key matching deliberately folds
// case, a long-standing deviation carried forward from
// cJSONUtils_Pstrcasecmp in the original C implementation.
package pointer

import "errors"

// ErrNotFound is returned when a pointer does not resolve to any node in
// the tree (array index out of range, missing object key, or the pointer
// traverses through a leaf).
var ErrNotFound = errors.New("pointer: not found")

// ErrMalformed is returned for a syntactically invalid pointer: one that
// does not start with "/" (and is not the empty string), or whose array
// index token contains non-digit characters.
var ErrMalformed = errors.New("pointer: malformed")
