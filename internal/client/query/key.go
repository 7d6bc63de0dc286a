package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a cached resource as an ordered tuple of comparable scalars,
// e.g. Key{"posts", "ada"}. Elements compare by dynamic type and value, so
// Key{"user", 1} and Key{"user", int64(1)} are different keys.
type Key []any

// HasPrefix reports whether the first len(prefix) elements of k equal prefix.
// The empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// String returns a stable encoding of k, used as the cache map key. Two keys
// encode equally exactly when they are element-wise equal. Strings are
// quoted, other elements are tagged with their type.
func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range k {
		if i > 0 {
			b.WriteByte(',')
		}
		if s, ok := v.(string); ok {
			b.WriteString(strconv.Quote(s))
			continue
		}
		fmt.Fprintf(&b, "%T(%v)", v, v)
	}
	b.WriteByte(']')
	return b.String()
}
