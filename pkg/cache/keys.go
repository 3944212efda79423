package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// KeyPrefix namespaces every key produced by Key.
const KeyPrefix = "venuehub"

// Key derives a cache key from an operation name and its normalized arguments.
// Each part is query-escaped so the ':' separator can never appear inside a part;
// distinct argument lists therefore never collide.
func Key(op string, args ...any) string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteByte(':')
	b.WriteString(url.QueryEscape(op))

	for _, arg := range args {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(fmt.Sprint(arg)))
	}

	return b.String()
}
