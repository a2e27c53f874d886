package uris

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadNormalizesAndDropsBlankLines(t *testing.T) {
	in := "page/title\n\n   \n  page/body.md  \r\nl10n://footer\n\nhero/logo.img\n"
	got, err := Read(strings.NewReader(in), Options{Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"i18n://en@page/title.txt",
		"i18n://en@page/body.md",
		"l10n://local@footer.txt",
		"i18n://en@hero/logo.img",
	}, got)
}

func TestReadEmptyInput(t *testing.T) {
	got, err := Read(strings.NewReader("\n\n"), Options{Language: "en"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadKeepsDuplicatesByDefault(t *testing.T) {
	got, err := Read(strings.NewReader("a\nb\na\n"), Options{Language: "en"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestReadDedupe(t *testing.T) {
	got, err := Read(strings.NewReader("a\nb\na\ni18n://en@b.txt\n"), Options{Language: "en", Dedupe: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"i18n://en@a.txt", "i18n://en@b.txt"}, got)
}

func TestReadMatchPreservesInputOrder(t *testing.T) {
	in := "start/hero/title\nfooter/address\nstart/hero/body\nabout/team\n"
	got, err := Read(strings.NewReader(in), Options{Language: "en", Match: "hero"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"i18n://en@start/hero/title.txt",
		"i18n://en@start/hero/body.txt",
	}, got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestReadPropagatesReaderError(t *testing.T) {
	_, err := Read(failingReader{}, Options{Language: "en"})
	assert.ErrorContains(t, err, "broken pipe")
}
