package config

import (
	"fmt"

	"moncfg-backend/internal/domain/models"
)

// ImportConfig holds the default sync policies of imports
type ImportConfig struct {
	// Rules per-kind policies; when empty every kind is created and updated
	Rules map[models.Kind]models.SyncPolicy `yaml:"rules"`
}

// Policies returns the configured policies
func (c ImportConfig) Policies() models.Policies {
	if len(c.Rules) == 0 {
		return models.CreateAndUpdateAll()
	}
	ret := make(models.Policies, len(c.Rules))
	for k, p := range c.Rules {
		ret[k] = p
	}
	return ret
}

// Validate validates the import configuration
func (c ImportConfig) Validate() error {
	for k := range c.Rules {
		if !importable(k) {
			return fmt.Errorf("rules: kind '%s' cannot be imported", k)
		}
	}
	return nil
}

func importable(kind models.Kind) bool {
	for _, k := range models.ProcessingOrder {
		if k == kind {
			return true
		}
	}
	return false
}
