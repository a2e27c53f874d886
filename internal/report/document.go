package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"djedi-migrate/internal/core/migrate"
	"djedi-migrate/internal/djedi"
)

// Format selects the encoding of an exported report.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// FormatFor picks the format from the file extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("report %q: unsupported extension, use .json, .yaml or .md", path)
}

// Group is the outcomes of one category.
type Group struct {
	Category migrate.Category `json:"category" yaml:"category"`
	Outcomes []migrate.Outcome `json:"outcomes" yaml:"outcomes"`
}

// Document is the exported form of a run.
type Document struct {
	Language    string                 `json:"language" yaml:"language"`
	DryRun      bool                   `json:"dryRun" yaml:"dry_run"`
	StartedAt   time.Time              `json:"startedAt" yaml:"started_at"`
	FinishedAt  time.Time              `json:"finishedAt" yaml:"finished_at"`
	Interrupted bool                   `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	Counts      migrate.Counts         `json:"counts" yaml:"counts"`
	Groups      []Group                `json:"groups" yaml:"groups"`
	Metrics     *djedi.MetricsSnapshot `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// NewDocument flattens res. Empty categories are left out.
func NewDocument(res *migrate.Result) Document {
	doc := Document{
		Language:    res.Language,
		DryRun:      res.DryRun,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		Interrupted: res.Interrupted,
		Counts:      res.Counts(),
		Groups:      []Group{},
		Metrics:     res.Metrics,
	}
	for _, cat := range migrate.Categories {
		if outcomes := res.Get(cat); len(outcomes) > 0 {
			doc.Groups = append(doc.Groups, Group{Category: cat, Outcomes: outcomes})
		}
	}
	return doc
}

// Encode writes the document to w in the given format.
func (d Document) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		return d.writeMarkdown(w)
	}
	return fmt.Errorf("unsupported report format: %s", f)
}

// Dump writes the document to path, choosing the format by extension.
func (d Document) Dump(path string) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := d.Encode(&buf, f); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
