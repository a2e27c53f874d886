package uris

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sahilm/fuzzy"

	"djedi-migrate/internal/djedi"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Options controls how raw input lines become node URIs.
type Options struct {
	Language string
	// Match keeps only URIs that fuzzy-match this query when non-empty.
	Match string
	// Dedupe drops repeated URIs, keeping the first occurrence.
	Dedupe bool
}

// Read returns the normalized URIs found in r, one per non-blank line, in
// input order.
func Read(r io.Reader, opts Options) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []string
	for scanner.Scan() {
		if uri := djedi.Normalize(scanner.Text(), opts.Language); uri != "" {
			out = append(out, uri)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read uris: %w", err)
	}

	if opts.Dedupe {
		out = dedupe(out)
	}
	if opts.Match != "" {
		out = filterByFuzzy(opts.Match, out)
	}
	return out, nil
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, uri := range list {
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}
		out = append(out, uri)
	}
	return out
}

// filterByFuzzy keeps the entries matching q. fuzzy.Find ranks by score, so
// the matched indexes are mapped back to restore input order.
func filterByFuzzy(q string, list []string) []string {
	matches := fuzzy.Find(q, list)
	keep := make([]bool, len(list))
	for _, m := range matches {
		keep[m.Index] = true
	}
	out := make([]string, 0, len(matches))
	for i, uri := range list {
		if keep[i] {
			out = append(out, uri)
		}
	}
	return out
}
