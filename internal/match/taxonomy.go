// Package match scores grant opportunities against project descriptions
// using a fixed keyword and category taxonomy.
package match

import (
	"embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed config/taxonomy.yaml
var taxonomyYAML embed.FS

// KeywordRule maps a regex family to the search tag it produces.
type KeywordRule struct {
	Tag     string `yaml:"tag"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// CategoryRule maps a regex to a Grants.gov funding-category code.
type CategoryRule struct {
	Code    string `yaml:"code"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Taxonomy is the compiled keyword/category vocabulary. Rules keep their
// file order: keyword families all contribute, category rules are
// first-match-wins.
type Taxonomy struct {
	Keywords   []KeywordRule  `yaml:"keywords"`
	Fallback   []string       `yaml:"fallback"`
	Categories []CategoryRule `yaml:"categories"`
}

// LoadTaxonomy parses and compiles the embedded taxonomy.
func LoadTaxonomy() (*Taxonomy, error) {
	data, err := taxonomyYAML.ReadFile("config/taxonomy.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded taxonomy: %w", err)
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}

	for i := range tax.Keywords {
		re, err := regexp.Compile("(?i)" + tax.Keywords[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("keyword rule %q: %w", tax.Keywords[i].Tag, err)
		}
		tax.Keywords[i].re = re
	}
	for i := range tax.Categories {
		re, err := regexp.Compile("(?i)" + tax.Categories[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("category rule %q: %w", tax.Categories[i].Code, err)
		}
		tax.Categories[i].re = re
	}

	return &tax, nil
}

// defaultTaxonomy is compiled once at startup; the file is embedded, so a
// failure here is a build defect.
var defaultTaxonomy = func() *Taxonomy {
	tax, err := LoadTaxonomy()
	if err != nil {
		panic(err)
	}
	return tax
}()
