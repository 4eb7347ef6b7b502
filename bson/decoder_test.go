package bson

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibraphone/cjson-bson/tree"
)

func TestDecodeEmptyObject(t *testing.T) {
	// S1: an empty document has no non-index key, so the array-retype
	// heuristic holds vacuously and it decodes as an empty Array.
	root, err := Decode([]byte{0x05, 0x00, 0x00, 0x00, 0x00}, CodecOptions{})
	require.NoError(t, err)
	assert.Equal(t, tree.KindArray, root.Kind)
	assert.Empty(t, root.Children)
}

func TestDecodeSimpleInt(t *testing.T) {
	// S2
	data := []byte{
		0x10, 0x00, 0x00, 0x00,
		0x12,
		0x61, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00,
	}
	root, err := Decode(data, CodecOptions{})
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	c := root.Children[0]
	assert.Equal(t, "a", c.Key)
	assert.Equal(t, tree.KindNumber, c.Kind)
	assert.Equal(t, int64(1), c.NumVal.Int)
}

func TestDecodeRetypesSequentialIntKeysAsArray(t *testing.T) {
	// S3: {"0":"x","1":"y"} decodes back as an Array.
	obj := tree.NewObject()
	k0 := tree.NewString("x")
	k0.Key = "0"
	k1 := tree.NewString("y")
	k1.Key = "1"
	require.NoError(t, obj.Append(k0))
	require.NoError(t, obj.Append(k1))

	encoded, err := Encode(obj, CodecOptions{})
	require.NoError(t, err)

	root, err := Decode(encoded, CodecOptions{})
	require.NoError(t, err)
	assert.Equal(t, tree.KindArray, root.Kind)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "x", root.Children[0].StrVal)
	assert.Equal(t, "y", root.Children[1].StrVal)
}

func TestDecodeNonConsecutiveAscendingKeysStillRetypeAsArray(t *testing.T) {
	// Keys "0" and "2" are not consecutive but are strictly ascending, so
	// the retype heuristic still fires (it requires strict increase, not
	// consecutiveness).
	obj := tree.NewObject()
	k0 := tree.NewInt(10)
	k0.Key = "0"
	k2 := tree.NewInt(20)
	k2.Key = "2"
	require.NoError(t, obj.Append(k0))
	require.NoError(t, obj.Append(k2))

	encoded, err := Encode(obj, CodecOptions{})
	require.NoError(t, err)

	root, err := Decode(encoded, CodecOptions{})
	require.NoError(t, err)
	assert.Equal(t, tree.KindArray, root.Kind)
}

func TestDecodeDescendingKeysStayObject(t *testing.T) {
	obj := tree.NewObject()
	k1 := tree.NewInt(1)
	k1.Key = "1"
	k0 := tree.NewInt(0)
	k0.Key = "0"
	require.NoError(t, obj.Append(k1))
	require.NoError(t, obj.Append(k0))

	encoded, err := Encode(obj, CodecOptions{})
	require.NoError(t, err)

	root, err := Decode(encoded, CodecOptions{})
	require.NoError(t, err)
	assert.Equal(t, tree.KindObject, root.Kind)
}

func TestEncodeDecodeRoundTripObject(t *testing.T) {
	obj := tree.NewObject()
	s := tree.NewString("hello")
	s.Key = "greeting"
	require.NoError(t, obj.Append(s))
	b := tree.NewBool(true)
	b.Key = "ok"
	require.NoError(t, obj.Append(b))
	f := tree.NewFloat(2.5)
	f.Key = "pi-ish"
	require.NoError(t, obj.Append(f))
	nested := tree.NewObject()
	nested.Key = "nested"
	inner := tree.NewInt(42)
	inner.Key = "answer"
	require.NoError(t, nested.Append(inner))
	require.NoError(t, obj.Append(nested))

	encoded, err := Encode(obj, CodecOptions{})
	require.NoError(t, err)

	decoded, err := Decode(encoded, CodecOptions{})
	require.NoError(t, err)

	require.Len(t, decoded.Children, 4)
	assert.Equal(t, "hello", decoded.Children[0].StrVal)
	assert.Equal(t, true, decoded.Children[1].BoolVal)
	assert.Equal(t, 2.5, decoded.Children[2].NumVal.Float)
	assert.Equal(t, tree.KindObject, decoded.Children[3].Kind)
	assert.Equal(t, int64(42), decoded.Children[3].Children[0].NumVal.Int)
}

func TestUUIDRoundTripAsExtendedType(t *testing.T) {
	id := uuid.New()
	obj := tree.NewObject()
	u := tree.NewUUID(id)
	u.Key = "id"
	require.NoError(t, obj.Append(u))

	encoded, err := Encode(obj, CodecOptions{})
	require.NoError(t, err)

	decoded, err := Decode(encoded, CodecOptions{UseExtendedTypes: true})
	require.NoError(t, err)
	require.Len(t, decoded.Children, 1)
	assert.Equal(t, tree.KindUUID, decoded.Children[0].Kind)
	assert.Equal(t, id, decoded.Children[0].UUIDVal)
}

func TestUUIDDecodesAsStringWithoutExtendedTypes(t *testing.T) {
	id := uuid.New()
	obj := tree.NewObject()
	u := tree.NewUUID(id)
	u.Key = "id"
	require.NoError(t, obj.Append(u))

	encoded, err := Encode(obj, CodecOptions{})
	require.NoError(t, err)

	decoded, err := Decode(encoded, CodecOptions{})
	require.NoError(t, err)
	require.Len(t, decoded.Children, 1)
	assert.Equal(t, tree.KindString, decoded.Children[0].Kind)
	assert.Equal(t, id.String(), decoded.Children[0].StrVal)
}

func TestDetectedUUIDStringRoundTrip(t *testing.T) {
	s := tree.NewString("550e8400-e29b-41d4-a716-446655440000")
	s.Key = "id"
	obj := tree.NewObject()
	require.NoError(t, obj.Append(s))

	encoded, err := Encode(obj, CodecOptions{DetectUUIDsInStrings: true})
	require.NoError(t, err)

	decoded, err := Decode(encoded, CodecOptions{})
	require.NoError(t, err)
	assert.Equal(t, tree.KindString, decoded.Children[0].Kind)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", decoded.Children[0].StrVal)
}

func TestDecodeRegexBecomesTwoStringArray(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x00, // length, filled below
		0x0B,                   // regex type byte
		0x72, 0x00,             // "r\0"
		0x61, 0x2B, 0x00,       // "a+\0" pattern
		0x69, 0x00,             // "i\0" options
		0x00, // terminator
	}
	binaryPutLength(data)

	root, err := Decode(data, CodecOptions{})
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	regexNode := root.Children[0]
	assert.Equal(t, tree.KindArray, regexNode.Kind)
	require.Len(t, regexNode.Children, 2)
	assert.Equal(t, "a+", regexNode.Children[0].StrVal)
	assert.Equal(t, "i", regexNode.Children[1].StrVal)
}

func TestDecodeObjectIdIsUnsupported(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x00,
		0x07, // ObjectId type byte
		0x69, 0x64, 0x00, // "id\0"
		0,0,0,0,0,0,0,0,0,0,0,0, // 12 bytes of ObjectId
		0x00,
	}
	binaryPutLength(data)

	_, err := Decode(data, CodecOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedElement)
}

func TestDecodeBufferTooShortIsMalformed(t *testing.T) {
	_, err := Decode([]byte{0x10, 0x00, 0x00, 0x00, 0x12}, CodecOptions{})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestDecodeLengthMismatch(t *testing.T) {
	data := []byte{0x05, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF}
	_, err := Decode(data, CodecOptions{})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

// binaryPutLength fills in data[0:4] with len(data) in little-endian, for
// hand-built test fixtures above.
func binaryPutLength(data []byte) {
	n := uint32(len(data))
	data[0] = byte(n)
	data[1] = byte(n >> 8)
	data[2] = byte(n >> 16)
	data[3] = byte(n >> 24)
}
