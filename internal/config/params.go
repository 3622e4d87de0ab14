package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ColumnName is a table header in the source script and its canonical English form.
type ColumnName struct {
	Chinese string `yaml:"chinese"`
	English string `yaml:"english"`
}

// GazetteerEntry lists the trigger keywords for one relation label.
type GazetteerEntry struct {
	Label    string
	Keywords []string
}

// Gazetteer maps relation labels to keywords, in the order they were configured.
// Order matters: equal-length keyword matches resolve to the first one seen.
type Gazetteer []GazetteerEntry

// UnmarshalYAML decodes a YAML mapping while keeping key order.
func (g *Gazetteer) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("familial_gazetteer: expected mapping, got %s", nodeKind(value))
	}
	entries := make(Gazetteer, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		entry := GazetteerEntry{Label: key.Value}
		switch val.Kind {
		case yaml.SequenceNode:
			if err := val.Decode(&entry.Keywords); err != nil {
				return fmt.Errorf("familial_gazetteer.%s: %w", key.Value, err)
			}
		case yaml.ScalarNode:
			entry.Keywords = []string{val.Value}
		default:
			return fmt.Errorf("familial_gazetteer.%s: expected list of keywords, got %s", key.Value, nodeKind(val))
		}
		entries = append(entries, entry)
	}
	*g = entries
	return nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "document"
}

// Normalization selects the unicode normal form applied to extracted page text.
type Normalization string

const (
	NormalizeNone Normalization = "none"
	NormalizeNFC  Normalization = "nfc"
	NormalizeNFKC Normalization = "nfkc"
)

// Params holds the extraction parameters for one pipeline.
type Params struct {
	TableColumnNames struct {
		Name     ColumnName `yaml:"name"`
		Position ColumnName `yaml:"position"`
	} `yaml:"table_column_names"`

	BoardMembersPositionsRegex string        `yaml:"board_members_positions_regex"`
	OptimalPDFPageHeight       float64       `yaml:"optimal_pdf_page_height"`
	PersonLabel                string        `yaml:"person_label"`
	Normalization              Normalization `yaml:"normalization"`
	FamilialGazetteer          Gazetteer     `yaml:"familial_gazetteer"`

	positions *regexp.Regexp
}

// LoadParams reads and validates an extraction parameters file.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}
	return ParseParams(data)
}

// ParseParams decodes and validates extraction parameters from YAML.
func ParseParams(data []byte) (*Params, error) {
	var p Params
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	applyParamDefaults(&p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func applyParamDefaults(p *Params) {
	if p.TableColumnNames.Name.English == "" {
		p.TableColumnNames.Name.English = "name"
	}
	if p.TableColumnNames.Position.English == "" {
		p.TableColumnNames.Position.English = "position"
	}
	if p.PersonLabel == "" {
		p.PersonLabel = "PERSON"
	}
	if p.Normalization == "" {
		p.Normalization = NormalizeNFC
	}
}

// Validate checks required fields and compiles the positions regex.
func (p *Params) Validate() error {
	if p.TableColumnNames.Name.Chinese == "" {
		return fmt.Errorf("table_column_names.name.chinese is required")
	}
	if p.TableColumnNames.Position.Chinese == "" {
		return fmt.Errorf("table_column_names.position.chinese is required")
	}
	if p.BoardMembersPositionsRegex == "" {
		return fmt.Errorf("board_members_positions_regex is required")
	}
	re, err := regexp.Compile(p.BoardMembersPositionsRegex)
	if err != nil {
		return fmt.Errorf("board_members_positions_regex: %w", err)
	}
	p.positions = re
	if p.OptimalPDFPageHeight <= 0 {
		return fmt.Errorf("optimal_pdf_page_height must be positive")
	}
	switch p.Normalization {
	case NormalizeNone, NormalizeNFC, NormalizeNFKC:
	default:
		return fmt.Errorf("normalization: unknown form %q", p.Normalization)
	}
	return nil
}

// Positions returns the compiled board-positions regex. Validate must have succeeded.
func (p *Params) Positions() *regexp.Regexp {
	return p.positions
}
