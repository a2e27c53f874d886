package djedi

import "strings"

// Node actions appended to the encoded node address.
const (
	ActionLoad    = "/load"
	ActionEditor  = "/editor"
	ActionPublish = "%23draft/publish"

	nodePath = "/djedi/cms/node/"

	// encodePasses is the number of times the node address is percent-encoded.
	// The admin routes decode the captured segment that many times.
	encodePasses = 3
)

const upperHex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes every byte of s except the characters
// A-Z a-z 0-9 - _ . ! ~ * ' ( ), matching encodeURIComponent in browsers.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// EncodeNodeURI applies the admin API's triple percent-encoding to uri.
func EncodeNodeURI(uri string) string {
	encoded := uri
	for i := 0; i < encodePasses; i++ {
		encoded = EncodeURIComponent(encoded)
	}
	return encoded
}

// NodeURL builds the admin endpoint for action on uri below adminURL.
func NodeURL(adminURL, uri, action string) string {
	return strings.TrimRight(adminURL, "/") + nodePath + EncodeNodeURI(uri) + action
}
