package bson

import "github.com/vibraphone/cjson-bson/tree"

// Size returns the exact number of bytes EncodeInto will write for root,
// which must be an Array or Object (the two kinds BSON can serialize as a
// top-level document).
func Size(root *tree.Node, opts CodecOptions) (int, error) {
	switch root.Kind {
	case tree.KindObject:
		return sizeObjectDocument(root, opts)
	case tree.KindArray:
		return sizeArrayDocument(root, opts)
	default:
		return 0, ErrNotADocument
	}
}

// sizeObjectDocument computes the size of an Object serialized as a BSON
// document: 4-byte length header, one (type byte + key + payload) triple per
// child, and a 1-byte terminator.
func sizeObjectDocument(doc *tree.Node, opts CodecOptions) (int, error) {
	total := 5 // length header + terminator
	for _, c := range doc.Children {
		payload, err := sizeElementPayload(c, opts)
		if err != nil {
			return 0, err
		}
		total += 1 + len(c.Key) + 1 + payload
	}
	return total, nil
}

// sizeArrayDocument computes the size of an Array serialized as a BSON
// document whose keys are the decimal index strings "0", "1", .... The
// digit-width total is computed with bucket arithmetic (ported from
// bson_get_array_size in original_source/cJSON_BSON.c) rather than summing
// len(strconv.Itoa(i)) per element.
func sizeArrayDocument(arr *tree.Node, opts CodecOptions) (int, error) {
	n := len(arr.Children)
	total := 5 // length header + terminator
	for _, c := range arr.Children {
		payload, err := sizeElementPayload(c, opts)
		if err != nil {
			return 0, err
		}
		total += payload
	}
	total += 2 * n // one type byte + one key terminator per element
	total += indexDigitSum(n)
	return total, nil
}

// indexDigitSum returns Σ digits(i) for i in [0,n), the total character
// count of the decimal index keys "0".."n-1", using the same bucket
// accounting as bson_get_array_size: 10 keys of width 1, 90 of width 2, 900
// of width 3, and so on.
func indexDigitSum(n int) int {
	total := 0
	remaining := n
	bucket := 10
	for remaining > 0 {
		total += remaining
		if remaining > bucket {
			remaining -= bucket
		} else {
			remaining = 0
		}
		if bucket == 10 {
			bucket = 90
		} else {
			bucket *= 10
		}
	}
	return total
}

// sizeElementPayload returns the size of a single element's value, excluding
// the leading type byte and the key (including its terminator), which the
// caller accounts for.
func sizeElementPayload(n *tree.Node, opts CodecOptions) (int, error) {
	switch n.Kind {
	case tree.KindNull:
		return 0, nil
	case tree.KindBool:
		return 1, nil
	case tree.KindNumber:
		return 8, nil
	case tree.KindString:
		if opts.DetectUUIDsInStrings && looksLikeUUID(n.StrVal) {
			return 21, nil
		}
		return 4 + len(n.StrVal) + 1, nil
	case tree.KindArray:
		return sizeArrayDocument(n, opts)
	case tree.KindObject:
		return sizeObjectDocument(n, opts)
	case tree.KindBinary:
		return 4 + 1 + len(n.BinVal), nil
	case tree.KindUUID:
		return 21, nil
	default:
		return 0, ErrMalformedInput
	}
}
