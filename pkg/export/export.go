// Package export renders tracker state into portable and printable documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatReport Format = "report"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatReport:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (json, yaml, report)", s)
	}
}

// FileName returns the default output file for a format.
func (f Format) FileName() string {
	switch f {
	case FormatYAML:
		return "ai-usage-data.yaml"
	case FormatReport:
		return "ai-usage-report.txt"
	default:
		return "ai-usage-data.json"
	}
}

// JSON writes snap as an indented JSON document.
func JSON(w io.Writer, snap *model.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// YAML writes snap as a YAML document.
func YAML(w io.Writer, snap *model.Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode yaml export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush yaml export: %w", err)
	}
	return nil
}

// Write encodes data in format f.
func Write(w io.Writer, f Format, data ReportData) error {
	switch f {
	case FormatYAML:
		return YAML(w, data.Snapshot)
	case FormatReport:
		return Report(w, data)
	default:
		return JSON(w, data.Snapshot)
	}
}
