package pointer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vibraphone/cjson-bson/tree"
)

// Resolve walks ptr from root and returns the node it addresses. The empty
// string addresses root itself. Object member lookup is case-insensitive,
// mirroring cJSONUtils_GetPointer's use of cJSONUtils_Pstrcasecmp in
// original_source/cJSON_Utils.c; array lookup requires an all-digit token.
func Resolve(root *tree.Node, ptr string) (*tree.Node, error) {
	if ptr == "" {
		return root, nil
	}
	if ptr[0] != '/' {
		return nil, fmt.Errorf("%w: pointer must start with '/': %q", ErrMalformed, ptr)
	}

	cur := root
	for _, tok := range strings.Split(ptr[1:], "/") {
		if cur == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, ptr)
		}
		name := unescapeToken(tok)

		switch cur.Kind {
		case tree.KindArray:
			idx, ok := parseIndexToken(tok)
			if !ok {
				return nil, fmt.Errorf("%w: bad array index %q in %q", ErrMalformed, tok, ptr)
			}
			child, ok := cur.ArrayItem(idx)
			if !ok {
				return nil, fmt.Errorf("%w: index %d in %q", ErrNotFound, idx, ptr)
			}
			cur = child

		case tree.KindObject:
			child, ok := cur.ObjectItem(name, false)
			if !ok {
				return nil, fmt.Errorf("%w: key %q in %q", ErrNotFound, name, ptr)
			}
			cur = child

		default:
			return nil, fmt.Errorf("%w: %q addresses a leaf", ErrNotFound, ptr)
		}
	}
	return cur, nil
}

// parseIndexToken requires the raw (still-escaped, though array tokens
// never contain '~' or '/') token to consist solely of ASCII digits, as
// cJSONUtils_GetPointer's inline strtol-style loop does; any trailing
// non-digit fails the lookup rather than silently truncating.
func parseIndexToken(tok string) (int, bool) {
	if tok == "" {
		return 0, false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Unescape decodes the RFC 6901 escapes "~1" -> "/" and "~0" -> "~" in one
// pointer token. Exported for the patch package, which splits a pointer's
// final token off by hand to locate the parent container.
func Unescape(tok string) string {
	return unescapeToken(tok)
}

// unescapeToken decodes the RFC 6901 escapes "~1" -> "/" and "~0" -> "~".
// It is a single left-to-right pass, so the output of one escape is never
// re-read as part of another: "~01" decodes to "~1", not "/".
func unescapeToken(tok string) string {
	if !strings.Contains(tok, "~") {
		return tok
	}
	var b strings.Builder
	b.Grow(len(tok))
	for i := 0; i < len(tok); i++ {
		if tok[i] == '~' && i+1 < len(tok) {
			switch tok[i+1] {
			case '0':
				b.WriteByte('~')
				i++
				continue
			case '1':
				b.WriteByte('/')
				i++
				continue
			}
		}
		b.WriteByte(tok[i])
	}
	return b.String()
}

// Escape encodes a raw object key as one pointer token: "~" -> "~0",
// "/" -> "~1". Exported for the patch package's diff generator, which
// builds pointer strings incrementally as it walks two trees.
func Escape(s string) string {
	return escapeToken(s)
}

// escapeToken encodes a raw object key as one pointer token: "~" -> "~0",
// "/" -> "~1".
func escapeToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '~':
			b.WriteString("~0")
		case '/':
			b.WriteString("~1")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ReversePointer finds the pointer addressing target within the subtree
// rooted at root, performing a pre-order search identical in shape to
// cJSONUtils_FindPointerFromObjectTo. It reports ok=false if target is not
// reachable from root.
func ReversePointer(root *tree.Node, target *tree.Node) (string, bool) {
	if root == target {
		return "", true
	}
	if !root.IsContainer() {
		return "", false
	}
	for i, c := range root.Children {
		found, ok := ReversePointer(c, target)
		if !ok {
			continue
		}
		if root.Kind == tree.KindArray {
			return "/" + strconv.Itoa(i) + found, true
		}
		return "/" + escapeToken(c.Key) + found, true
	}
	return "", false
}
