package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vibraphone/cjson-bson/tree"
	"github.com/vibraphone/cjson-bson/pointer"
)

// Apply mutates root in place according to patches, an Array of Object
// nodes each shaped like {"op":..., "path":..., "from":..., "value":...}
// per RFC 6902. It stops at the first error; prior operations are NOT
// rolled back, matching cJSONUtils_ApplyPatches in
// original_source/cJSON_Utils.c.
//
// Unlike the source, the top-level-array check is a real boolean test —
// the source's "if (!patches->type==cJSON_Array)" is an operator-precedence
// bug that always evaluates false and never rejects anything.
func Apply(root *tree.Node, patches *tree.Node) error {
	if patches.Kind != tree.KindArray {
		return fmt.Errorf("%w: patch document must be an array", ErrMalformed)
	}
	for _, p := range patches.Children {
		if err := applyOne(root, p); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(root *tree.Node, p *tree.Node) error {
	if p.Kind != tree.KindObject {
		return fmt.Errorf("%w: patch entry is not an object", ErrMalformed)
	}
	opNode, ok := p.ObjectItem("op", true)
	if !ok || opNode.Kind != tree.KindString {
		return fmt.Errorf("%w: missing \"op\"", ErrMalformed)
	}
	pathNode, ok := p.ObjectItem("path", true)
	if !ok || pathNode.Kind != tree.KindString {
		return fmt.Errorf("%w: missing \"path\"", ErrMalformed)
	}
	path := pathNode.StrVal

	switch opNode.StrVal {
	case "test":
		valueNode, ok := p.ObjectItem("value", true)
		if !ok {
			return fmt.Errorf("%w: missing \"value\" for test", ErrMalformed)
		}
		target, err := pointer.Resolve(root, path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTargetMissing, err)
		}
		if kind := compare(target, valueNode); kind != 0 {
			return &TestMismatchError{Path: path, Kind: kind}
		}
		return nil

	case "remove":
		_, err := detach(root, path)
		return err

	case "replace":
		if _, err := detach(root, path); err != nil {
			return err
		}
		valueNode, ok := p.ObjectItem("value", true)
		if !ok {
			return fmt.Errorf("%w: missing \"value\" for replace", ErrMalformed)
		}
		return insert(root, path, valueNode.Duplicate())

	case "add":
		valueNode, ok := p.ObjectItem("value", true)
		if !ok {
			return fmt.Errorf("%w: missing \"value\" for add", ErrMalformed)
		}
		return insert(root, path, valueNode.Duplicate())

	case "move":
		fromNode, ok := p.ObjectItem("from", true)
		if !ok || fromNode.Kind != tree.KindString {
			return fmt.Errorf("%w: missing \"from\" for move", ErrMalformed)
		}
		moved, err := detach(root, fromNode.StrVal)
		if err != nil {
			return err
		}
		return insert(root, path, moved)

	case "copy":
		fromNode, ok := p.ObjectItem("from", true)
		if !ok || fromNode.Kind != tree.KindString {
			return fmt.Errorf("%w: missing \"from\" for copy", ErrMalformed)
		}
		src, err := pointer.Resolve(root, fromNode.StrVal)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTargetMissing, err)
		}
		return insert(root, path, src.Duplicate())

	default:
		return fmt.Errorf("%w: unknown op %q", ErrMalformed, opNode.StrVal)
	}
}

// splitParentPath divides a pointer into its parent pointer and its final,
// still-escaped token, mirroring the strrchr('/') split in
// cJSONUtils_PatchDetach / cJSONUtils_ApplyPatch.
func splitParentPath(path string) (parentPath, lastToken string, ok bool) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

// detach removes and returns the node addressed by path.
func detach(root *tree.Node, path string) (*tree.Node, error) {
	parentPath, lastToken, ok := splitParentPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no parent", ErrTargetMissing, path)
	}
	parent, err := pointer.Resolve(root, parentPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTargetMissing, err)
	}
	key := pointer.Unescape(lastToken)

	switch parent.Kind {
	case tree.KindArray:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: bad array index %q", ErrTargetMissing, key)
		}
		return parent.DetachAt(idx)
	case tree.KindObject:
		child, ok := parent.DetachKey(key)
		if !ok {
			return nil, fmt.Errorf("%w: key %q", ErrTargetMissing, key)
		}
		return child, nil
	default:
		return nil, fmt.Errorf("%w: parent of %q is not a container", ErrTargetMissing, path)
	}
}

// insert adds value at the position addressed by path, which must name an
// array index in [0, len] (later elements shift right), the array
// end-of-sequence token "-", or any object key (overwriting any existing value at that key, matching the
// delete-then-add behavior of cJSONUtils_ApplyPatch's Object branch).
func insert(root *tree.Node, path string, value *tree.Node) error {
	parentPath, lastToken, ok := splitParentPath(path)
	if !ok {
		return fmt.Errorf("%w: %q has no parent", ErrTargetMissing, path)
	}
	parent, err := pointer.Resolve(root, parentPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTargetMissing, err)
	}
	key := pointer.Unescape(lastToken)

	switch parent.Kind {
	case tree.KindArray:
		if lastToken == "-" {
			return parent.Append(value)
		}
		idx, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: bad array index %q", ErrTargetMissing, key)
		}
		return parent.InsertAt(idx, value)
	case tree.KindObject:
		parent.DeleteKey(key)
		value.Key = key
		return parent.Append(value)
	default:
		return fmt.Errorf("%w: parent of %q is not a container", ErrTargetMissing, path)
	}
}

// compare implements the "test" operation's equality rule, returning the
// TestMismatchKind responsible for the first difference found (the zero
// value means a and b are equal), mirroring cJSONUtils_Compare's distinct
// -1..-6 return codes in original_source/cJSON_Utils.c. A mismatch nested
// inside a container propagates its own kind unchanged, the same way the
// source's recursive call returns its inner err as-is.
func compare(a, b *tree.Node) TestMismatchKind {
	if a.Kind != b.Kind {
		return MismatchType
	}
	switch a.Kind {
	case tree.KindNull:
		return 0
	case tree.KindBool:
		if a.BoolVal != b.BoolVal {
			return MismatchType
		}
		return 0
	case tree.KindNumber:
		if a.NumVal.Int != b.NumVal.Int || a.NumVal.Float != b.NumVal.Float {
			return MismatchNumber
		}
		return 0
	case tree.KindString:
		if a.StrVal != b.StrVal {
			return MismatchString
		}
		return 0
	case tree.KindArray:
		if len(a.Children) != len(b.Children) {
			return MismatchArrayLength
		}
		for i := range a.Children {
			if k := compare(a.Children[i], b.Children[i]); k != 0 {
				return k
			}
		}
		return 0
	case tree.KindObject:
		if len(a.Children) != len(b.Children) {
			return MismatchObjectLength
		}
		for _, ac := range a.Children {
			bc, ok := b.ObjectItem(ac.Key, true)
			if !ok {
				return MismatchObjectKey
			}
			if k := compare(ac, bc); k != 0 {
				return k
			}
		}
		return 0
	case tree.KindBinary:
		if a.BinSubtype != b.BinSubtype || len(a.BinVal) != len(b.BinVal) {
			return MismatchType
		}
		for i := range a.BinVal {
			if a.BinVal[i] != b.BinVal[i] {
				return MismatchType
			}
		}
		return 0
	case tree.KindUUID:
		if a.UUIDVal != b.UUIDVal {
			return MismatchType
		}
		return 0
	default:
		return MismatchType
	}
}
