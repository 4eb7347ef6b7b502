package bson

import (
	"regexp"

	"github.com/google/uuid"
)

// canonicalUUIDPattern matches exactly the 8-4-4-4-12 hyphenated hex form
// ("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"). This is deliberately stricter
// than uuid.Parse, which also accepts braces, a urn: prefix, and a bare
// 32-hex-digit form — none of which the original bson_is_string_uuid
// recognized, and widening the match would change which strings silently
// turn into binary on encode.
var canonicalUUIDPattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// looksLikeUUID reports whether s is in canonical 8-4-4-4-12 form.
func looksLikeUUID(s string) bool {
	return len(s) == 36 && canonicalUUIDPattern.MatchString(s)
}

// parseUUID parses a canonical UUID string into its 16 raw bytes.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
