package djedi

import "strings"

// URI separators and defaults of the djedi node addressing scheme:
//
//	scheme://namespace@path.ext#version
const (
	schemeSeparator    = "://"
	namespaceSeparator = "@"
	pathSeparator      = "/"
	extSeparator       = "."
	versionSeparator   = "#"

	DefaultScheme = "i18n"
	DefaultExt    = "txt"

	// ImageSuffix marks image nodes. Their payload lives in the media storage,
	// not in the node data, so they are never migrated.
	ImageSuffix = ".img"

	languagePlaceholder = "{language}"
)

var namespaceByScheme = map[string]string{
	"i18n": languagePlaceholder,
	"l10n": "local",
	"g11n": "global",
}

// URI is a parsed node address. Every part is optional when parsing.
type URI struct {
	Scheme    string
	Namespace string
	Path      string
	Ext       string
	Version   string
}

// ParseURI splits a raw node address into its parts without applying defaults.
func ParseURI(raw string) URI {
	var u URI
	rest := raw

	if i := strings.Index(rest, schemeSeparator); i >= 0 {
		u.Scheme = rest[:i]
		rest = rest[i+len(schemeSeparator):]
	}
	if i := strings.Index(rest, versionSeparator); i >= 0 {
		u.Version = rest[i+len(versionSeparator):]
		rest = rest[:i]
	}
	if i := strings.Index(rest, namespaceSeparator); i >= 0 {
		u.Namespace = rest[:i]
		rest = rest[i+len(namespaceSeparator):]
	}

	// the extension belongs to the last path segment only
	segmentStart := strings.LastIndex(rest, pathSeparator) + 1
	if i := strings.Index(rest[segmentStart:], extSeparator); i >= 0 {
		u.Ext = rest[segmentStart+i+len(extSeparator):]
		rest = rest[:segmentStart+i]
	}
	u.Path = rest
	return u
}

// String joins the parts back together, leaving out empty namespace,
// extension and version.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString(schemeSeparator)
	if u.Namespace != "" {
		b.WriteString(u.Namespace)
		b.WriteString(namespaceSeparator)
	}
	b.WriteString(u.Path)
	if u.Ext != "" {
		b.WriteString(extSeparator)
		b.WriteString(u.Ext)
	}
	if u.Version != "" {
		b.WriteString(versionSeparator)
		b.WriteString(u.Version)
	}
	return b.String()
}

// Normalize applies the scheme, namespace and extension defaults to raw for
// the given language. It returns "" for input that does not address a node
// (blank lines, addresses without a path).
func Normalize(raw, language string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u := ParseURI(raw)
	if u.Path == "" {
		return ""
	}
	if u.Scheme == "" {
		u.Scheme = DefaultScheme
	}
	if u.Namespace == "" {
		u.Namespace = strings.ReplaceAll(namespaceByScheme[u.Scheme], languagePlaceholder, language)
	}
	if u.Ext == "" {
		u.Ext = DefaultExt
	}
	return u.String()
}

// IsImage reports whether uri addresses an image node.
func IsImage(uri string) bool {
	return strings.HasSuffix(uri, ImageSuffix)
}
