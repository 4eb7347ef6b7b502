// Package tree implements the shared in-memory document model used by the
// bson, pointer and patch packages: a tagged variant over the JSON kinds
// plus two BSON-only extensions (opaque binary blobs and UUIDs).
package tree

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Kind tags the variant a Node holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindBinary
	KindUUID
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindBinary:
		return "binary"
	case KindUUID:
		return "uuid"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Number carries both a double and an integer view of a numeric value, per
// the BSON encoder's int64-vs-double element selection.
type Number struct {
	Float float64
	Int   int64
}

// NewIntNumber builds a Number from an exact integer view.
func NewIntNumber(i int64) Number {
	return Number{Float: float64(i), Int: i}
}

// NewFloatNumber builds a Number from a double view. The integer view is
// derived by truncation and is only meaningful when IsIntegral is true.
func NewFloatNumber(f float64) Number {
	return Number{Float: f, Int: int64(f)}
}

// IsIntegral reports whether the double view has no fractional part, the
// same test the encoder uses to choose between a BSON double and an int64.
func (n Number) IsIntegral() bool {
	return math.Mod(n.Float, 1) == 0
}

// Node is a node in the shared document tree. Every node carries a Kind tag
// and, when it is a direct child of an Object, a Key. Only the fields that
// correspond to Kind are meaningful; the rest are zero.
type Node struct {
	Kind Kind
	Key  string

	BoolVal bool
	NumVal  Number
	StrVal  string

	Children []*Node

	BinVal     []byte
	BinSubtype byte

	UUIDVal uuid.UUID
}

// NewNull creates a Null leaf.
func NewNull() *Node { return &Node{Kind: KindNull} }

// NewBool creates a Bool leaf.
func NewBool(v bool) *Node { return &Node{Kind: KindBool, BoolVal: v} }

// NewInt creates a Number leaf from an exact integer.
func NewInt(v int64) *Node { return &Node{Kind: KindNumber, NumVal: NewIntNumber(v)} }

// NewFloat creates a Number leaf from a double.
func NewFloat(v float64) *Node { return &Node{Kind: KindNumber, NumVal: NewFloatNumber(v)} }

// NewString creates a String leaf.
func NewString(v string) *Node { return &Node{Kind: KindString, StrVal: v} }

// NewBinary creates a Binary leaf. subtype is the BSON binary subtype code.
func NewBinary(data []byte, subtype byte) *Node {
	return &Node{Kind: KindBinary, BinVal: data, BinSubtype: subtype}
}

// NewUUID creates a UUID leaf.
func NewUUID(id uuid.UUID) *Node { return &Node{Kind: KindUUID, UUIDVal: id} }

// NewArray creates an empty Array container.
func NewArray() *Node { return &Node{Kind: KindArray, Children: nil} }

// NewObject creates an empty Object container.
func NewObject() *Node { return &Node{Kind: KindObject, Children: nil} }

// IsContainer reports whether n owns a child list.
func (n *Node) IsContainer() bool {
	return n.Kind == KindArray || n.Kind == KindObject
}

// Append adds child to the end of n's child list. child.Key should already
// be set by the caller when n is an Object; it is ignored when n is an
// Array (the array position is the key).
func (n *Node) Append(child *Node) error {
	if !n.IsContainer() {
		return fmt.Errorf("tree: cannot append to a %s node", n.Kind)
	}
	n.Children = append(n.Children, child)
	return nil
}

// InsertAt inserts child at index i, shifting later children right. i may
// equal len(n.Children) to append.
func (n *Node) InsertAt(i int, child *Node) error {
	if !n.IsContainer() {
		return fmt.Errorf("tree: cannot insert into a %s node", n.Kind)
	}
	if i < 0 || i > len(n.Children) {
		return fmt.Errorf("tree: index %d out of range [0,%d]", i, len(n.Children))
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	return nil
}

// DetachAt removes and returns the child at index i, transferring ownership
// of the returned subtree to the caller.
func (n *Node) DetachAt(i int) (*Node, error) {
	if !n.IsContainer() {
		return nil, fmt.Errorf("tree: cannot detach from a %s node", n.Kind)
	}
	if i < 0 || i >= len(n.Children) {
		return nil, fmt.Errorf("tree: index %d out of range [0,%d)", i, len(n.Children))
	}
	child := n.Children[i]
	n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
	return child, nil
}

// DetachKey removes and returns the first Object child whose Key matches
// (case-sensitively). Returns ok=false if no such child exists.
func (n *Node) DetachKey(key string) (child *Node, ok bool) {
	if n.Kind != KindObject {
		return nil, false
	}
	for i, c := range n.Children {
		if c.Key == key {
			c, _ = n.DetachAt(i)
			return c, true
		}
	}
	return nil, false
}

// DeleteAt detaches and discards the child at index i.
func (n *Node) DeleteAt(i int) error {
	_, err := n.DetachAt(i)
	return err
}

// DeleteKey detaches and discards the first Object child with the given key.
// Reports whether a child was found.
func (n *Node) DeleteKey(key string) bool {
	_, ok := n.DetachKey(key)
	return ok
}

// ArrayItem returns the i'th child of an Array node.
func (n *Node) ArrayItem(i int) (*Node, bool) {
	if n.Kind != KindArray || i < 0 || i >= len(n.Children) {
		return nil, false
	}
	return n.Children[i], true
}

// ObjectItem looks up a direct child of an Object node by key. When
// caseSensitive is false, matching folds ASCII/Unicode case (used by the
// Pointer resolver's deliberate RFC 6901 deviation); otherwise it is an
// exact byte-for-byte match.
func (n *Node) ObjectItem(key string, caseSensitive bool) (*Node, bool) {
	if n.Kind != KindObject {
		return nil, false
	}
	for _, c := range n.Children {
		if caseSensitive {
			if c.Key == key {
				return c, true
			}
		} else if equalFoldUnicode(c.Key, key) {
			return c, true
		}
	}
	return nil, false
}

// Duplicate returns a deep copy of the subtree rooted at n. The copy shares
// no storage with n (Children is a new slice of new Nodes; BinVal is copied).
func (n *Node) Duplicate() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.BinVal != nil {
		cp.BinVal = append([]byte(nil), n.BinVal...)
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Duplicate()
		}
	}
	return &cp
}
