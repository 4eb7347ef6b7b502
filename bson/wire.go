package bson

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// BSON element type bytes, per the wire grammar in cJSON_BSON.h.
const (
	typeDouble       = 0x01
	typeString       = 0x02
	typeDocument     = 0x03
	typeArray        = 0x04
	typeBinary       = 0x05
	typeUndefined    = 0x06
	typeObjectID     = 0x07
	typeBool         = 0x08
	typeUTCDateTime  = 0x09
	typeNull         = 0x0A
	typeRegex        = 0x0B
	typeDBPointer    = 0x0C
	typeJSCode       = 0x0D
	typeSymbol       = 0x0E
	typeJSCodeScope  = 0x0F
	typeInt32        = 0x10
	typeTimestamp    = 0x11
	typeInt64        = 0x12
	typeMinKey       = 0xFF
	typeMaxKey       = 0x7F
	typeDocumentTerm = 0x00
)

// subtypeUUID is the BSON binary subtype used for UUID values.
const subtypeUUID = 0x04

// writeCstring writes a NUL-terminated BSON e_name. Adapted from
// sbunce-bson/encode.go's writeCstring.
func writeCstring(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0x00)
	return buf
}

// writeString writes a BSON string: an int32 length (including the NUL
// terminator) followed by the bytes and the terminator itself. Adapted from
// sbunce-bson/encode.go's writeString.
func writeString(buf []byte, s string) []byte {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)+1))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, s...)
	buf = append(buf, 0x00)
	return buf
}

// readCstring reads a NUL-terminated BSON e_name. Adapted from
// sbunce-bson/decode.go's readCstring.
func readCstring(rd *bufio.Reader) (string, error) {
	s, err := rd.ReadString(0x00)
	if err != nil {
		return "", fmt.Errorf("%w: truncated cstring: %v", ErrMalformedInput, err)
	}
	return s[:len(s)-1], nil
}

// readInt32 reads a little-endian int32.
func readInt32(rd io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return 0, fmt.Errorf("%w: truncated int32: %v", ErrMalformedInput, err)
	}
	return int32(binary.LittleEndian.Uint32(b[:])), nil
}

// readInt64 reads a little-endian int64.
func readInt64(rd io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return 0, fmt.Errorf("%w: truncated int64: %v", ErrMalformedInput, err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// readString reads a BSON string: an int32 length (including terminator)
// followed by that many bytes, the last of which is the NUL terminator.
func readString(rd io.Reader) (string, error) {
	n, err := readInt32(rd)
	if err != nil {
		return "", err
	}
	if n < 1 {
		return "", fmt.Errorf("%w: string length %d is not positive", ErrMalformedInput, n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rd, b); err != nil {
		return "", fmt.Errorf("%w: truncated string: %v", ErrMalformedInput, err)
	}
	return string(b[:n-1]), nil
}
