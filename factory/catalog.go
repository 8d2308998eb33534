/*
Package factory provides catalog file to Go conversion.

PURPOSE:
  Converts catalog files into rewards.Catalog values. This lets a family
  adjust point values and grade thresholds without a rebuild; the tables
  are read once at startup and stay fixed while the program runs.

FILE SCHEMA (JSON shown; YAML and TOML use the same keys):
  {
    "subjects": [
      {"subject": "Math", "min": 55, "target": 65}
    ],
    "deductions": [
      {"label": "Late", "points": -2}
    ],
    "bonuses": [
      {"label": "Positive feedback", "points": 5}
    ]
  }

DEFAULTS:
  A table missing from the file keeps the built-in default. A table that is
  present (even empty) replaces it.

VALIDATION:
  - Unknown keys are rejected
  - Deductions must be negative, bonuses positive
  - min <= target, no duplicate subjects or labels

USAGE:
  f := factory.NewCatalogFactory()
  cat, err := f.LoadFile("catalog.yaml")

SEE ALSO:
  - rewards/catalog.go: Built-in tables
  - rewards/factory.go: Rendering catalogs as JSON
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/warp/points-engine/rewards"
)

// =============================================================================
// FILE SCHEMA TYPES
// =============================================================================

// Format names a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// CatalogFile is the on-disk representation of a catalog.
// Nil slices mean "not present in the file".
type CatalogFile struct {
	Subjects   *[]ThresholdFile `json:"subjects,omitempty" yaml:"subjects,omitempty" toml:"subjects,omitempty"`
	Deductions *[]ItemFile      `json:"deductions,omitempty" yaml:"deductions,omitempty" toml:"deductions,omitempty"`
	Bonuses    *[]ItemFile      `json:"bonuses,omitempty" yaml:"bonuses,omitempty" toml:"bonuses,omitempty"`
}

// ThresholdFile is one subject's grade expectation.
type ThresholdFile struct {
	Subject string `json:"subject" yaml:"subject" toml:"subject"`
	Min     int    `json:"min" yaml:"min" toml:"min"`
	Target  int    `json:"target" yaml:"target" toml:"target"`
}

// ItemFile is one deduction or bonus.
type ItemFile struct {
	Label  string `json:"label" yaml:"label" toml:"label"`
	Points int    `json:"points" yaml:"points" toml:"points"`
}

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// CatalogFactory converts catalog files to rewards.Catalog.
type CatalogFactory struct {
	defaults rewards.Catalog
}

// NewCatalogFactory creates a factory that falls back to the built-in tables.
func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{defaults: rewards.DefaultCatalog()}
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q", filepath.Ext(path))
	}
}

// LoadFile reads and parses a catalog file.
func (f *CatalogFactory) LoadFile(path string) (rewards.Catalog, error) {
	format, err := FormatFor(path)
	if err != nil {
		return rewards.Catalog{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rewards.Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	return f.ParseCatalog(data, format)
}

// ParseCatalog decodes data in the given format and validates the result.
func (f *CatalogFactory) ParseCatalog(data []byte, format Format) (rewards.Catalog, error) {
	var cf CatalogFile
	if err := decode(data, format, &cf); err != nil {
		return rewards.Catalog{}, fmt.Errorf("failed to parse %s catalog: %w", format, err)
	}
	return f.FromFile(cf)
}

// FromFile converts a decoded file to a Catalog, filling absent tables from
// the defaults.
func (f *CatalogFactory) FromFile(cf CatalogFile) (rewards.Catalog, error) {
	cat := rewards.Catalog{
		Subjects:   f.defaults.Subjects,
		Deductions: f.defaults.Deductions,
		Bonuses:    f.defaults.Bonuses,
	}

	if cf.Subjects != nil {
		cat.Subjects = make([]rewards.Threshold, 0, len(*cf.Subjects))
		for _, t := range *cf.Subjects {
			cat.Subjects = append(cat.Subjects, rewards.Threshold{Subject: t.Subject, Min: t.Min, Target: t.Target})
		}
	}
	if cf.Deductions != nil {
		cat.Deductions = parseItems(*cf.Deductions, rewards.CategoryDeduction)
	}
	if cf.Bonuses != nil {
		cat.Bonuses = parseItems(*cf.Bonuses, rewards.CategoryBonus)
	}

	if err := cat.Validate(); err != nil {
		return rewards.Catalog{}, err
	}
	return cat, nil
}

func parseItems(items []ItemFile, category rewards.Category) []rewards.Item {
	out := make([]rewards.Item, 0, len(items))
	for _, it := range items {
		out = append(out, rewards.Item{Label: it.Label, Points: it.Points, Category: category})
	}
	return out
}

// ToFile converts a Catalog to its file representation with every table present.
func ToFile(c rewards.Catalog) CatalogFile {
	subjects := make([]ThresholdFile, 0, len(c.Subjects))
	for _, t := range c.Subjects {
		subjects = append(subjects, ThresholdFile{Subject: t.Subject, Min: t.Min, Target: t.Target})
	}
	deductions := itemFiles(c.Deductions)
	bonuses := itemFiles(c.Bonuses)
	return CatalogFile{Subjects: &subjects, Deductions: &deductions, Bonuses: &bonuses}
}

func itemFiles(items []rewards.Item) []ItemFile {
	out := make([]ItemFile, 0, len(items))
	for _, it := range items {
		out = append(out, ItemFile{Label: it.Label, Points: it.Points})
	}
	return out
}

// EncodeCatalog renders a catalog in the given format. The output parses
// back to the same catalog.
func EncodeCatalog(c rewards.Catalog, format Format) ([]byte, error) {
	cf := ToFile(c)
	var buf bytes.Buffer

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cf); err != nil {
			return nil, err
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cf); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(cf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// DECODERS
// =============================================================================

func decode(data []byte, format Format, v *CatalogFile) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)

	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil

	case FormatTOML:
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil

	default:
		return fmt.Errorf("unsupported catalog format %q", format)
	}
}
