package headers

import (
	"strings"
)

// ParseHeaders turns repeated -H "Key: Value" flag values into the
// header map a browser session takes. Entries without a colon are
// dropped silently.
func ParseHeaders(h []string) map[string]string {
	m := make(map[string]string)
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) == 2 {
			m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return m
}
