package bson

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/vibraphone/cjson-bson/tree"

	"github.com/google/uuid"
)

// maxDocLen bounds how large a single BSON document this decoder will
// attempt to read, guarding against a corrupt or hostile length header
// driving an enormous allocation.
const maxDocLen = 64 * 1024 * 1024

// Decode parses a complete BSON byte slice into a tree.Node. The whole
// slice must be resident; this decoder does not stream.
func Decode(data []byte, opts CodecOptions) (root *tree.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			root, err = nil, fmt.Errorf("%w: %v", ErrMalformedInput, r)
		}
	}()
	rd := bufio.NewReader(bytes.NewReader(data))
	node, consumed, err := decodeDocument(rd, opts)
	if err != nil {
		return nil, err
	}
	if consumed != len(data) {
		return nil, fmt.Errorf("%w: declared length %d, got %d bytes of input",
			ErrLengthMismatch, consumed, len(data))
	}
	return node, nil
}

// decodeDocument reads one length-prefixed BSON document and returns its
// declared length (which counts the 4-byte header and the terminator) so
// Decode can check it against the size of the input.
func decodeDocument(rdTop *bufio.Reader, opts CodecOptions) (*tree.Node, int, error) {
	declared, err := readInt32(rdTop)
	if err != nil {
		return nil, 0, err
	}
	if declared < 5 || int64(declared) > maxDocLen {
		return nil, 0, fmt.Errorf("%w: implausible document length %d", ErrMalformedInput, declared)
	}
	rd := bufio.NewReader(io.LimitReader(rdTop, int64(declared)-4))

	dst := tree.NewObject()
	allIndicesAscending := true
	lastKey := -1

	for {
		eType, err := rd.ReadByte()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: truncated document: %v", ErrMalformedInput, err)
		}
		if eType == typeDocumentTerm {
			break
		}
		name, err := readCstring(rd)
		if err != nil {
			return nil, 0, err
		}
		child, err := decodeElement(rd, eType, opts)
		if err != nil {
			return nil, 0, err
		}
		child.Key = name
		if err := dst.Append(child); err != nil {
			return nil, 0, err
		}

		if allIndicesAscending {
			// Strict monotonic increase, not necessarily consecutive,
			// mirrors bson_parse_doc's "idx <= lastKey" rejection in
			// original_source/cJSON_BSON.c — gaps in the key sequence do
			// not by themselves disqualify the array retype.
			if idx, ok := strictAscendingIndex(name); ok && idx > lastKey {
				lastKey = idx
			} else {
				allIndicesAscending = false
			}
		}
	}

	if allIndicesAscending {
		dst.Kind = tree.KindArray
	}
	return dst, int(declared), nil
}

// strictAscendingIndex reports whether s is the canonical decimal form of a
// non-negative integer (no sign, no leading zeros except "0" itself).
func strictAscendingIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// decodeElement reads one element's payload (the type byte and key have
// already been consumed) and returns the resulting leaf or container node.
func decodeElement(rd *bufio.Reader, eType byte, opts CodecOptions) (*tree.Node, error) {
	switch eType {
	case typeDouble:
		b, err := readN(rd, 8)
		if err != nil {
			return nil, err
		}
		return tree.NewFloat(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil

	case typeString, typeJSCode, typeSymbol:
		s, err := readString(rd)
		if err != nil {
			return nil, err
		}
		return tree.NewString(s), nil

	case typeDocument, typeArray:
		// Both wire types recurse into the same document grammar; the
		// array-vs-object classification is decided by the key-shape
		// heuristic in decodeDocument regardless of which type byte was
		// on the wire, matching bson_parse_document's handling of 0x03
		// and 0x04 identically in original_source/cJSON_BSON.c.
		child, _, err := decodeDocument(rd, opts)
		if err != nil {
			return nil, err
		}
		return child, nil

	case typeBinary:
		return decodeBinary(rd, opts)

	case typeUndefined, typeNull, typeMinKey, typeMaxKey:
		return tree.NewNull(), nil

	case typeBool:
		b, err := rd.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated bool: %v", ErrMalformedInput, err)
		}
		return tree.NewBool(b == 0x01), nil

	case typeUTCDateTime, typeTimestamp, typeInt64:
		v, err := readInt64(rd)
		if err != nil {
			return nil, err
		}
		return tree.NewInt(v), nil

	case typeInt32:
		v, err := readInt32(rd)
		if err != nil {
			return nil, err
		}
		return tree.NewInt(int64(v)), nil

	case typeRegex:
		pattern, err := readCstring(rd)
		if err != nil {
			return nil, err
		}
		options, err := readCstring(rd)
		if err != nil {
			return nil, err
		}
		arr := tree.NewArray()
		_ = arr.Append(tree.NewString(pattern))
		_ = arr.Append(tree.NewString(options))
		return arr, nil

	case typeObjectID, typeDBPointer, typeJSCodeScope:
		return nil, fmt.Errorf("%w: type 0x%02X", ErrUnsupportedElement, eType)

	default:
		return nil, fmt.Errorf("%w: type 0x%02X", ErrMalformedInput, eType)
	}
}

// decodeBinary reads a BSON binary element. Subtype 0x04 (UUID) with a
// 16-byte payload becomes a UUID node or a canonical-hex String node
// depending on opts.UseExtendedTypes; every other element (including a
// subtype 0x04 payload of another length) becomes a Binary node or a
// plain-hex String node the same way.
func decodeBinary(rd *bufio.Reader, opts CodecOptions) (*tree.Node, error) {
	n, err := readInt32(rd)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative binary length %d", ErrMalformedInput, n)
	}
	subtype, err := rd.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated binary subtype: %v", ErrMalformedInput, err)
	}
	data, err := readN(rd, int(n))
	if err != nil {
		return nil, err
	}

	if subtype == subtypeUUID && len(data) == 16 {
		var id uuid.UUID
		copy(id[:], data)
		if opts.UseExtendedTypes {
			return tree.NewUUID(id), nil
		}
		return tree.NewString(id.String()), nil
	}

	if opts.UseExtendedTypes {
		return tree.NewBinary(append([]byte(nil), data...), subtype), nil
	}
	return tree.NewString(hex.EncodeToString(data)), nil
}

// readN reads exactly n bytes from rd.
func readN(rd io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rd, b); err != nil {
		return nil, fmt.Errorf("%w: truncated payload: %v", ErrMalformedInput, err)
	}
	return b, nil
}
