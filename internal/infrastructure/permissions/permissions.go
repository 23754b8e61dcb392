package permissions

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

// AllowAll permits every write
type AllowAll struct{}

// CanWrite always allows
func (AllowAll) CanWrite(context.Context, models.Kind, []models.ID) (bool, error) {
	return true, nil
}

// ReadOnlyHosts refuses writes to the named hosts or templates and to the records they own.
// Names that do not exist are ignored.
type ReadOnlyHosts struct {
	registry ports.Registry
	names    []string
}

var _ ports.PermissionChecker = (*ReadOnlyHosts)(nil)

// NewReadOnlyHosts creates a new ReadOnlyHosts checker
func NewReadOnlyHosts(registry ports.Registry, names []string) *ReadOnlyHosts {
	return &ReadOnlyHosts{
		registry: registry,
		names:    names,
	}
}

// CanWrite implements ports.PermissionChecker
func (p *ReadOnlyHosts) CanWrite(ctx context.Context, kind models.Kind, ids []models.ID) (bool, error) {
	if len(ids) == 0 || len(p.names) == 0 || !(kind.Storage() == models.KindHost || kind.HostOwned()) {
		return true, nil
	}
	reader, err := p.registry.Reader(ctx)
	if err != nil {
		return false, errors.WithMessage(err, "open reader")
	}
	defer reader.Close()

	keys := make([]models.NaturalKey, 0, len(p.names))
	for _, n := range p.names {
		keys = append(keys, models.HostKey(n))
	}
	found, err := reader.FindIDs(ctx, models.KindHost, keys)
	if err != nil {
		return false, errors.WithMessage(err, "find read-only hosts")
	}
	protected := make(map[models.ID]string, len(found))
	for k, id := range found {
		protected[id] = k.Name
	}
	if len(protected) == 0 {
		return true, nil
	}

	if kind.Storage() == models.KindHost {
		for _, id := range ids {
			if name, ok := protected[id]; ok {
				klog.V(2).Infof("write to read-only %s '%s' refused", kind, name)
				return false, nil
			}
		}
		return true, nil
	}

	allowed := true
	err = reader.List(ctx, kind, func(rec models.Record) error {
		if name, ok := protected[rec.GetHostID()]; ok {
			klog.V(2).Infof("write to %s on read-only host '%s' refused", rec.Key(), name)
			allowed = false
		}
		return nil
	}, ports.NewIDScope(ids...))
	if err != nil {
		return false, errors.WithMessagef(err, "list %s", kind)
	}
	return allowed, nil
}
