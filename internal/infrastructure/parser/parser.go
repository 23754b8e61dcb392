package parser

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
)

// document is the envelope of an export file
type document struct {
	Export *models.ImportTree `yaml:"export"`
}

// Parse decodes an export document. JSON documents are accepted as well since JSON is YAML.
func Parse(r io.Reader) (*models.ImportTree, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, validation.NewValidationError("export document is empty")
		}
		return nil, validation.NewValidationError("malformed export document: %v", err)
	}
	if doc.Export == nil {
		return nil, validation.NewValidationError("export document has no 'export' section")
	}
	if doc.Export.Version != models.SupportedExportVersion {
		return nil, validation.NewValidationError("unsupported export version '%s', expected '%s'",
			doc.Export.Version, models.SupportedExportVersion)
	}
	if err := check(doc.Export); err != nil {
		return nil, err
	}
	return doc.Export, nil
}

// ParseFile reads and decodes an export file
func ParseFile(path string) (*models.ImportTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open export '%s'", path)
	}
	defer f.Close()
	tree, err := Parse(f)
	return tree, errors.WithMessagef(err, "parse '%s'", path)
}

// check rejects objects whose natural key would be empty
func check(tree *models.ImportTree) error {
	for _, g := range tree.Groups {
		if g.Name == "" {
			return validation.NewValidationError("group without a name")
		}
	}
	for _, list := range [][]models.ImportedHost{tree.Templates, tree.Hosts} {
		for _, h := range list {
			if h.Host == "" {
				return validation.NewValidationError("host or template without a host name")
			}
			for _, it := range h.Items {
				if it.Key == "" {
					return validation.NewValidationError("'%s': item '%s' has no key", h.Host, it.Name)
				}
			}
			for _, r := range h.DiscoveryRules {
				if r.Key == "" {
					return validation.NewValidationError("'%s': discovery rule '%s' has no key", h.Host, r.Name)
				}
				for _, it := range r.ItemPrototypes {
					if it.Key == "" {
						return validation.NewValidationError("'%s': item prototype '%s' has no key", h.Host, it.Name)
					}
				}
			}
			for _, m := range h.Macros {
				if m.Macro == "" {
					return validation.NewValidationError("'%s': macro without a name", h.Host)
				}
			}
		}
	}
	for _, t := range tree.Triggers {
		if t.Name == "" || t.Expression == "" {
			return validation.NewValidationError("trigger '%s' needs a name and an expression", t.Name)
		}
	}
	for _, g := range tree.Graphs {
		if g.Name == "" {
			return validation.NewValidationError("graph without a name")
		}
	}
	for _, m := range tree.Maps {
		if m.Name == "" {
			return validation.NewValidationError("map without a name")
		}
	}
	for _, s := range tree.Screens {
		if s.Name == "" {
			return validation.NewValidationError("screen without a name")
		}
	}
	return nil
}
