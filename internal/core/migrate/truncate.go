package migrate

import (
	"bytes"
	"encoding/json"
)

// PreviewLength is the maximum number of characters of a preview before
// quoting.
const PreviewLength = 80

const ellipsis = "…"

// Truncate shortens s to PreviewLength characters, replacing the tail with an
// ellipsis when it is longer, and returns it as a JSON string literal.
func Truncate(s string) string {
	if r := []rune(s); len(r) > PreviewLength {
		s = string(r[:PreviewLength-1]) + ellipsis
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
