package bson

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/vibraphone/cjson-bson/tree"
)

// Encode writes root (an Array or Object) as a self-contained BSON document.
// The returned slice is exactly Size(root, opts) bytes.
func Encode(root *tree.Node, opts CodecOptions) ([]byte, error) {
	switch root.Kind {
	case tree.KindObject:
		return encodeObjectDocument(root, opts)
	case tree.KindArray:
		return encodeArrayDocument(root, opts)
	default:
		return nil, ErrNotADocument
	}
}

// EncodeInto writes root into buf, which must be at least Size(root, opts)
// bytes long. A short buffer is reported as ErrBufferTooSmall rather than
// silently producing a truncated element.
func EncodeInto(buf []byte, root *tree.Node, opts CodecOptions) error {
	want, err := Size(root, opts)
	if err != nil {
		return err
	}
	if len(buf) < want {
		return fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, want, len(buf))
	}
	encoded, err := Encode(root, opts)
	if err != nil {
		return err
	}
	copy(buf, encoded)
	return nil
}

// encodeObjectDocument encodes doc's children as a BSON document, each child
// keyed by its own Key field.
func encodeObjectDocument(doc *tree.Node, opts CodecOptions) ([]byte, error) {
	buf := make([]byte, 4, 4)
	var err error
	for _, c := range doc.Children {
		buf, err = encodeElement(buf, c.Key, c, opts)
		if err != nil {
			return nil, err
		}
	}
	buf = append(buf, typeDocumentTerm)
	binary.LittleEndian.PutUint32(buf, uint32(len(buf)))
	return buf, nil
}

// encodeArrayDocument encodes arr's children as a BSON document keyed by
// their ordinal decimal index.
func encodeArrayDocument(arr *tree.Node, opts CodecOptions) ([]byte, error) {
	buf := make([]byte, 4, 4)
	var err error
	for i, c := range arr.Children {
		buf, err = encodeElement(buf, strconv.Itoa(i), c, opts)
		if err != nil {
			return nil, err
		}
	}
	buf = append(buf, typeDocumentTerm)
	binary.LittleEndian.PutUint32(buf, uint32(len(buf)))
	return buf, nil
}

// encodeElement appends one (type byte, key, payload) element to buf.
func encodeElement(buf []byte, key string, n *tree.Node, opts CodecOptions) ([]byte, error) {
	switch n.Kind {
	case tree.KindNull:
		buf = append(buf, typeNull)
		buf = writeCstring(buf, key)

	case tree.KindBool:
		buf = append(buf, typeBool)
		buf = writeCstring(buf, key)
		if n.BoolVal {
			buf = append(buf, 0x01)
		} else {
			buf = append(buf, 0x00)
		}

	case tree.KindNumber:
		if n.NumVal.IsIntegral() {
			buf = append(buf, typeInt64)
			buf = writeCstring(buf, key)
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(n.NumVal.Int))
			buf = append(buf, b[:]...)
		} else {
			buf = append(buf, typeDouble)
			buf = writeCstring(buf, key)
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(n.NumVal.Float))
			buf = append(buf, b[:]...)
		}

	case tree.KindString:
		if opts.DetectUUIDsInStrings && looksLikeUUID(n.StrVal) {
			id, err := parseUUID(n.StrVal)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
			}
			buf = appendUUIDBinary(buf, typeBinary, key, id)
		} else {
			buf = append(buf, typeString)
			buf = writeCstring(buf, key)
			buf = writeString(buf, n.StrVal)
		}

	case tree.KindArray:
		buf = append(buf, typeArray)
		buf = writeCstring(buf, key)
		sub, err := encodeArrayDocument(n, opts)
		if err != nil {
			return nil, err
		}
		buf = append(buf, sub...)

	case tree.KindObject:
		buf = append(buf, typeDocument)
		buf = writeCstring(buf, key)
		sub, err := encodeObjectDocument(n, opts)
		if err != nil {
			return nil, err
		}
		buf = append(buf, sub...)

	case tree.KindBinary:
		buf = append(buf, typeBinary)
		buf = writeCstring(buf, key)
		var lb [4]byte
		binary.LittleEndian.PutUint32(lb[:], uint32(len(n.BinVal)))
		buf = append(buf, lb[:]...)
		buf = append(buf, n.BinSubtype)
		buf = append(buf, n.BinVal...)

	case tree.KindUUID:
		buf = appendUUIDBinary(buf, typeBinary, key, n.UUIDVal)

	default:
		return nil, fmt.Errorf("%w: unknown tree.Kind %v", ErrMalformedInput, n.Kind)
	}
	return buf, nil
}

// appendUUIDBinary appends a complete binary element (type byte, key, and a
// 16-byte subtype-0x04 payload) for a UUID node or a detected-UUID string.
func appendUUIDBinary(buf []byte, typeByte byte, key string, id [16]byte) []byte {
	buf = append(buf, typeByte)
	buf = writeCstring(buf, key)
	var lb [4]byte
	binary.LittleEndian.PutUint32(lb[:], 16)
	buf = append(buf, lb[:]...)
	buf = append(buf, subtypeUUID)
	buf = append(buf, id[:]...)
	return buf
}
