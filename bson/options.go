package bson

// CodecOptions replaces the two process-wide toggles the reference
// implementation relied on (cJSON_BSON_SetDetectUUIDs,
// cJSON_BSON_SetUseExtendedTypes) with an explicit per-call value, so two
// callers using different options never interfere with each other.
type CodecOptions struct {
	// DetectUUIDsInStrings makes Size and Encode recognize a String node
	// whose value is a canonical 8-4-4-4-12 hex UUID and encode it as a
	// binary subtype 0x04 element instead of a plain string.
	DetectUUIDsInStrings bool

	// UseExtendedTypes makes Decode produce Binary/UUID tree nodes for BSON
	// binary elements. When false (the default), binary data surfaces as a
	// hex-encoded string (a canonical UUID string for subtype 0x04, plain
	// hex for everything else), which keeps the decoded tree representable
	// as plain JSON.
	UseExtendedTypes bool
}
