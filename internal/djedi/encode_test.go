package djedi

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeURIComponent(t *testing.T) {
	cases := map[string]string{
		"abcXYZ019":         "abcXYZ019",
		"-_.!~*'()":         "-_.!~*'()",
		"a b":               "a%20b",
		"i18n://en@a/b.txt": "i18n%3A%2F%2Fen%40a%2Fb.txt",
		"a+b=c&d":           "a%2Bb%3Dc%26d",
		"#?;,$":             "%23%3F%3B%2C%24",
		"å":                 "%C3%A5",
		"%":                 "%25",
	}
	for in, want := range cases {
		assert.Equal(t, want, EncodeURIComponent(in), in)
	}
}

func TestEncodeNodeURIIsAppliedThreeTimes(t *testing.T) {
	got := EncodeNodeURI("i18n://en@a/b.txt")
	assert.Equal(t, "i18n%25253A%25252F%25252Fen%252540a%25252Fb.txt", got)
}

func TestEncodeNodeURIRoundTrip(t *testing.T) {
	uris := []string{
		"i18n://en@page/title.txt",
		"i18n://en@start/hero/body with space.md",
		"l10n://local@a/b/c.txt#draft",
		"i18n://sv@åäö/ö.txt",
	}
	for _, uri := range uris {
		encoded := EncodeNodeURI(uri)
		assert.NotContains(t, encoded, "/")

		decoded := encoded
		for i := 0; i < 3; i++ {
			var err error
			decoded, err = url.PathUnescape(decoded)
			require.NoError(t, err)
		}
		assert.Equal(t, uri, decoded)
	}
}

func TestNodeURL(t *testing.T) {
	enc := EncodeNodeURI("i18n://en@a.txt")

	assert.Equal(t, "https://cms.example.com/admin/djedi/cms/node/"+enc+"/load",
		NodeURL("https://cms.example.com/admin", "i18n://en@a.txt", ActionLoad))
	assert.Equal(t, "https://cms.example.com/admin/djedi/cms/node/"+enc+"/editor",
		NodeURL("https://cms.example.com/admin/", "i18n://en@a.txt", ActionEditor))

	publish := NodeURL("https://cms.example.com/admin", "i18n://en@a.txt", ActionPublish)
	assert.True(t, strings.HasSuffix(publish, enc+"%23draft/publish"), publish)
}
