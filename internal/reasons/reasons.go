package reasons

// Package reasons holds the enumerated cancellation reasons the storefront
// offers. The catalog ships embedded; deployments can override it with
// their own YAML file.

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed reasons.yaml
var defaultCatalogYAML []byte

type Reason struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
	// RequiresNote marks reasons that need a free-text elaboration,
	// currently only "Other".
	RequiresNote bool `yaml:"requires_note" json:"requires_note"`
}

type Catalog struct {
	reasons []Reason
	byCode  map[string]Reason
}

type catalogFile struct {
	Reasons []Reason `yaml:"reasons"`
}

// Default returns the embedded catalog. The embedded file is validated by
// tests, so a parse failure here is a programming error.
func Default() *Catalog {
	catalog, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded reason catalog is invalid: %v", err))
	}
	return catalog
}

// LoadFile reads a catalog override from disk.
func LoadFile(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reason catalog: %w", err)
	}
	return Parse(content)
}

func Parse(content []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse reason catalog: %w", err)
	}
	if len(file.Reasons) == 0 {
		return nil, fmt.Errorf("reason catalog has no reasons")
	}

	byCode := make(map[string]Reason, len(file.Reasons))
	for i, reason := range file.Reasons {
		if reason.Code == "" {
			return nil, fmt.Errorf("reason %d has no code", i)
		}
		if reason.Label == "" {
			return nil, fmt.Errorf("reason %q has no label", reason.Code)
		}
		if _, exists := byCode[reason.Code]; exists {
			return nil, fmt.Errorf("duplicate reason code %q", reason.Code)
		}
		byCode[reason.Code] = reason
	}

	return &Catalog{reasons: file.Reasons, byCode: byCode}, nil
}

// Reasons lists the catalog in display order.
func (c *Catalog) Reasons() []Reason {
	out := make([]Reason, len(c.reasons))
	copy(out, c.reasons)
	return out
}

func (c *Catalog) Valid(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

func (c *Catalog) RequiresNote(code string) bool {
	reason, ok := c.byCode[code]
	return ok && reason.RequiresNote
}
