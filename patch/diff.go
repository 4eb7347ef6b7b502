package patch

import (
	"strconv"

	"github.com/vibraphone/cjson-bson/pointer"
	"github.com/vibraphone/cjson-bson/tree"
)

// Diff computes an Array of RFC 6902 operations that transforms from into
// to, grounded on cJSONUtils_GeneratePatches /
// cJSONUtils_CompareToPatch in original_source/cJSON_Utils.c.
//
// Unlike the source, array removals are emitted against the concrete
// current index ("/parent/<idx>") rather than bare "/parent" — the source
// emits "remove" at the parent path itself, which is asymmetric with its
// own "add" (which does include an index/"-" token) and would desync a
// replayed patch sequence against an array of more than one trailing
// element.
func Diff(from, to *tree.Node) *tree.Node {
	patches := tree.NewArray()
	compareToPatch(patches, "", from, to)
	return patches
}

func compareToPatch(patches *tree.Node, path string, from, to *tree.Node) {
	if from.Kind != to.Kind {
		addPatch(patches, "replace", path, to)
		return
	}

	switch from.Kind {
	case tree.KindNull:
		return

	case tree.KindBool:
		if from.BoolVal != to.BoolVal {
			addPatch(patches, "replace", path, to)
		}
		return

	case tree.KindNumber:
		if from.NumVal.Int != to.NumVal.Int || from.NumVal.Float != to.NumVal.Float {
			addPatch(patches, "replace", path, to)
		}
		return

	case tree.KindString:
		if from.StrVal != to.StrVal {
			addPatch(patches, "replace", path, to)
		}
		return

	case tree.KindArray:
		diffArray(patches, path, from, to)
		return

	case tree.KindObject:
		diffObject(patches, path, from, to)
		return

	case tree.KindBinary:
		if from.BinSubtype != to.BinSubtype || string(from.BinVal) != string(to.BinVal) {
			addPatch(patches, "replace", path, to)
		}
		return

	case tree.KindUUID:
		if from.UUIDVal != to.UUIDVal {
			addPatch(patches, "replace", path, to)
		}
		return
	}
}

func diffArray(patches *tree.Node, path string, from, to *tree.Node) {
	n := len(from.Children)
	if len(to.Children) < n {
		n = len(to.Children)
	}
	for i := 0; i < n; i++ {
		compareToPatch(patches, path+"/"+strconv.Itoa(i), from.Children[i], to.Children[i])
	}

	// Trailing elements only in from: remove from the tail so each
	// removal's index still names the element at the time it is applied.
	for i := len(from.Children) - 1; i >= n; i-- {
		addPatchNoValue(patches, "remove", path+"/"+strconv.Itoa(i))
	}

	// Trailing elements only in to: append in order.
	for i := n; i < len(to.Children); i++ {
		addPatch(patches, "add", path+"/-", to.Children[i])
	}
}

func diffObject(patches *tree.Node, path string, from, to *tree.Node) {
	for _, a := range from.Children {
		if _, ok := to.ObjectItem(a.Key, true); !ok {
			addPatchNoValue(patches, "remove", path+"/"+pointer.Escape(a.Key))
		}
	}
	for _, b := range to.Children {
		other, ok := from.ObjectItem(b.Key, true)
		if !ok {
			addPatch(patches, "add", path+"/"+pointer.Escape(b.Key), b)
			continue
		}
		compareToPatch(patches, path+"/"+pointer.Escape(b.Key), other, b)
	}
}

func addPatch(patches *tree.Node, op, path string, value *tree.Node) {
	p := tree.NewObject()
	opNode := tree.NewString(op)
	opNode.Key = "op"
	_ = p.Append(opNode)
	pathNode := tree.NewString(path)
	pathNode.Key = "path"
	_ = p.Append(pathNode)
	v := value.Duplicate()
	v.Key = "value"
	_ = p.Append(v)
	_ = patches.Append(p)
}

func addPatchNoValue(patches *tree.Node, op, path string) {
	p := tree.NewObject()
	opNode := tree.NewString(op)
	opNode.Key = "op"
	_ = p.Append(opNode)
	pathNode := tree.NewString(path)
	pathNode.Key = "path"
	_ = p.Append(pathNode)
	_ = patches.Append(p)
}
