package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibraphone/cjson-bson/tree"
)

func objWith(pairs ...*tree.Node) *tree.Node {
	o := tree.NewObject()
	for _, p := range pairs {
		_ = o.Append(p)
	}
	return o
}

func keyed(key string, n *tree.Node) *tree.Node {
	n.Key = key
	return n
}

func TestDiffFixpointIsEmpty(t *testing.T) {
	doc := objWith(keyed("a", tree.NewInt(1)), keyed("b", tree.NewString("x")))
	patches := Diff(doc, doc.Duplicate())
	assert.Empty(t, patches.Children)
}

func TestDiffFixpointApplyIsNoop(t *testing.T) {
	doc := objWith(keyed("a", tree.NewInt(1)))
	dup := doc.Duplicate()
	patches := Diff(doc, dup)
	require.NoError(t, Apply(doc, patches))
	assert.Equal(t, int64(1), doc.Children[0].NumVal.Int)
}

func TestDiffObjectAddAndRemove(t *testing.T) {
	// S6
	from := objWith(keyed("a", tree.NewInt(1)), keyed("b", tree.NewInt(2)))
	to := objWith(keyed("a", tree.NewInt(1)), keyed("c", tree.NewInt(3)))

	patches := Diff(from, to)
	require.NoError(t, Apply(from, patches))

	require.Len(t, from.Children, 2)
	got := map[string]int64{}
	for _, c := range from.Children {
		got[c.Key] = c.NumVal.Int
	}
	assert.Equal(t, map[string]int64{"a": 1, "c": 3}, got)
}

func TestDiffObjectReplace(t *testing.T) {
	from := objWith(keyed("a", tree.NewString("old")))
	to := objWith(keyed("a", tree.NewString("new")))

	patches := Diff(from, to)
	require.Len(t, patches.Children, 1)
	require.NoError(t, Apply(from, patches))
	assert.Equal(t, "new", from.Children[0].StrVal)
}

func TestDiffArrayShrink(t *testing.T) {
	from := tree.NewArray()
	require.NoError(t, from.Append(tree.NewInt(1)))
	require.NoError(t, from.Append(tree.NewInt(2)))
	require.NoError(t, from.Append(tree.NewInt(3)))

	to := tree.NewArray()
	require.NoError(t, to.Append(tree.NewInt(1)))

	patches := Diff(from, to)
	require.NoError(t, Apply(from, patches))
	require.Len(t, from.Children, 1)
	assert.Equal(t, int64(1), from.Children[0].NumVal.Int)
}

func TestDiffArrayGrow(t *testing.T) {
	from := tree.NewArray()
	require.NoError(t, from.Append(tree.NewInt(1)))

	to := tree.NewArray()
	require.NoError(t, to.Append(tree.NewInt(1)))
	require.NoError(t, to.Append(tree.NewInt(2)))
	require.NoError(t, to.Append(tree.NewInt(3)))

	patches := Diff(from, to)
	require.NoError(t, Apply(from, patches))
	require.Len(t, from.Children, 3)
	assert.Equal(t, int64(2), from.Children[1].NumVal.Int)
	assert.Equal(t, int64(3), from.Children[2].NumVal.Int)
}

func TestDiffArrayElementReplace(t *testing.T) {
	from := tree.NewArray()
	require.NoError(t, from.Append(tree.NewInt(1)))
	require.NoError(t, from.Append(tree.NewInt(2)))

	to := tree.NewArray()
	require.NoError(t, to.Append(tree.NewInt(1)))
	require.NoError(t, to.Append(tree.NewInt(99)))

	patches := Diff(from, to)
	require.NoError(t, Apply(from, patches))
	assert.Equal(t, int64(99), from.Children[1].NumVal.Int)
}

func TestApplyDiffGeneralCorrectness(t *testing.T) {
	from := objWith(
		keyed("name", tree.NewString("alice")),
		keyed("tags", func() *tree.Node {
			a := tree.NewArray()
			_ = a.Append(tree.NewString("x"))
			_ = a.Append(tree.NewString("y"))
			return a
		}()),
	)
	to := objWith(
		keyed("name", tree.NewString("bob")),
		keyed("tags", func() *tree.Node {
			a := tree.NewArray()
			_ = a.Append(tree.NewString("x"))
			_ = a.Append(tree.NewString("z"))
			_ = a.Append(tree.NewString("w"))
			return a
		}()),
		keyed("age", tree.NewInt(30)),
	)

	patches := Diff(from, to)
	require.NoError(t, Apply(from, patches))

	nameNode, ok := from.ObjectItem("name", true)
	require.True(t, ok)
	assert.Equal(t, "bob", nameNode.StrVal)

	ageNode, ok := from.ObjectItem("age", true)
	require.True(t, ok)
	assert.Equal(t, int64(30), ageNode.NumVal.Int)

	tagsNode, ok := from.ObjectItem("tags", true)
	require.True(t, ok)
	require.Len(t, tagsNode.Children, 3)
	assert.Equal(t, "x", tagsNode.Children[0].StrVal)
	assert.Equal(t, "z", tagsNode.Children[1].StrVal)
	assert.Equal(t, "w", tagsNode.Children[2].StrVal)
}

func TestDiffEscapesSlashAndTilde(t *testing.T) {
	from := tree.NewObject()
	to := objWith(keyed("a/b~c", tree.NewInt(1)))

	patches := Diff(from, to)
	require.Len(t, patches.Children, 1)
	pathNode, ok := patches.Children[0].ObjectItem("path", true)
	require.True(t, ok)
	assert.Equal(t, "/a~1b~0c", pathNode.StrVal)
}
