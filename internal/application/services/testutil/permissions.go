package testutil

import (
	"context"

	"moncfg-backend/internal/domain/models"
)

// DenyHosts is a permission checker refusing writes to the given host records
type DenyHosts struct {
	IDs []models.ID
}

// CanWrite denies any host kind write touching a denied id
func (d DenyHosts) CanWrite(_ context.Context, kind models.Kind, ids []models.ID) (bool, error) {
	if kind.Storage() != models.KindHost {
		return true, nil
	}
	for _, id := range ids {
		if models.ContainsID(d.IDs, id) {
			return false, nil
		}
	}
	return true, nil
}
