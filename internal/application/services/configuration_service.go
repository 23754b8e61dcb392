package services

import (
	"context"
	"time"

	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

// ConfigurationService imports configuration trees and manages template links.
// Every call runs in one transaction: it either applies everything or nothing.
type ConfigurationService struct {
	registry ports.Registry
	perms    ports.PermissionChecker
}

// NewConfigurationService creates a new ConfigurationService; a nil checker allows everything
func NewConfigurationService(registry ports.Registry, perms ports.PermissionChecker) *ConfigurationService {
	return &ConfigurationService{
		registry: registry,
		perms:    perms,
	}
}

// ImportConfiguration synchronizes every kind of the tree the policies select and makes
// linked hosts inherit the template-level changes
func (s *ConfigurationService) ImportConfiguration(ctx context.Context, tree *models.ImportTree, policies models.Policies) (*models.Result, error) {
	if tree == nil {
		return nil, validation.NewValidationError("import tree is empty")
	}
	return s.run(ctx, "import", policies, func(ctx context.Context, op *operation) error {
		refs := Collect(tree, policies)
		klog.V(2).Infof("[%s] collected %d key(s) of %d kind(s)", op.runID, refs.Len(), len(refs.Kinds()))
		op.resolver.SeedSets(refs)
		if err := op.resolver.ResolveBatch(ctx); err != nil {
			return err
		}
		if err := op.validateLinks(ctx, tree); err != nil {
			return err
		}
		if _, err := validation.BuildDependencyGraph(op.triggerDependencyEdges(tree)); err != nil {
			return err
		}
		return op.syncAll(ctx, tree)
	})
}

// LinkTemplates links every template to every host; the hosts inherit the templates' entities
func (s *ConfigurationService) LinkTemplates(ctx context.Context, templateIDs, hostIDs []models.ID) (*models.Result, error) {
	return s.run(ctx, "link", nil, func(ctx context.Context, op *operation) error {
		templates, hosts, err := op.linkTargets(ctx, templateIDs, hostIDs)
		if err != nil {
			return err
		}
		if err = op.checkWrite(ctx, models.KindHost, hostIDs); err != nil {
			return err
		}
		edges := op.existingEdges()
		links := make(map[hostLink]bool)
		var changed []*models.Host
		for _, h := range hosts {
			c := h.DeepCopy().(*models.Host)
			for _, t := range templates {
				if c.LinksTo(t.ID) {
					continue
				}
				c.TemplateIDs = append(c.TemplateIDs, t.ID)
				links[hostLink{host: c.ID, template: t.ID}] = true
				edges = append(edges, linkEdge(c, t.Name))
			}
			if len(c.TemplateIDs) != len(h.TemplateIDs) {
				changed = append(changed, c)
			}
		}
		if len(changed) == 0 {
			return nil
		}
		g, err := validation.BuildLinkGraph(edges)
		if err != nil {
			return err
		}
		klog.V(2).Infof("[%s] %d link(s) checked, chain depth %d", op.runID, len(edges), g.Depth())
		if err = op.updateHosts(ctx, changed); err != nil {
			return err
		}
		return op.inheritLinks(ctx, links)
	})
}

// UnlinkTemplates removes the links between the templates and the hosts. The hosts keep
// their inherited copies as local records unless clear is set, which deletes them.
func (s *ConfigurationService) UnlinkTemplates(ctx context.Context, templateIDs, hostIDs []models.ID, clear bool) (*models.Result, error) {
	return s.run(ctx, "unlink", nil, func(ctx context.Context, op *operation) error {
		_, hosts, err := op.linkTargets(ctx, templateIDs, hostIDs)
		if err != nil {
			return err
		}
		if err = op.checkWrite(ctx, models.KindHost, hostIDs); err != nil {
			return err
		}
		links := make(map[hostLink]bool)
		var changed []*models.Host
		for _, h := range hosts {
			c := h.DeepCopy().(*models.Host)
			c.TemplateIDs = c.TemplateIDs[:0]
			for _, tid := range h.TemplateIDs {
				if models.ContainsID(templateIDs, tid) {
					links[hostLink{host: c.ID, template: tid}] = true
					continue
				}
				c.TemplateIDs = append(c.TemplateIDs, tid)
			}
			if len(c.TemplateIDs) != len(h.TemplateIDs) {
				changed = append(changed, c)
			}
		}
		if len(changed) == 0 {
			return nil
		}
		if err = op.updateHosts(ctx, changed); err != nil {
			return err
		}
		return op.detach(ctx, links, clear)
	})
}

// run executes fn in one transaction; any error aborts the transaction
func (s *ConfigurationService) run(ctx context.Context, name string, policies models.Policies,
	fn func(ctx context.Context, op *operation) error) (*models.Result, error) {
	writer, err := s.registry.Writer(ctx)
	if err != nil {
		return nil, validation.NewStoreError(err, "open writer")
	}
	defer writer.Abort()
	reader, err := s.registry.ReaderFromWriter(ctx, writer)
	if err != nil {
		return nil, validation.NewStoreError(err, "open reader")
	}
	defer reader.Close()

	op := newOperation(writer, reader, s.perms, policies)
	klog.Infof("[%s] %s started", op.runID, name)
	if err = fn(ctx, op); err != nil {
		klog.Errorf("[%s] %s aborted (%s): %v", op.runID, name, validation.ErrorKind(err), err)
		return nil, err
	}
	if err = writer.Commit(); err != nil {
		return nil, validation.NewStoreError(err, "commit %s", name)
	}
	op.result.Success = true
	op.result.Duration = time.Since(op.result.StartedAt)
	klog.Infof("[%s] %s committed in %s: created %v, updated %v, deleted %v, %d resolver queries",
		op.runID, name, op.result.Duration, op.result.Created, op.result.Updated, op.result.Deleted,
		op.resolver.Queries())
	return op.result, nil
}

// linkTargets loads the templates and hosts of a link or unlink call
func (o *operation) linkTargets(ctx context.Context, templateIDs, hostIDs []models.ID) ([]*models.Host, []*models.Host, error) {
	if len(templateIDs) == 0 || len(hostIDs) == 0 {
		return nil, nil, validation.NewValidationError("templates and hosts are required")
	}
	if err := o.loadHosts(ctx); err != nil {
		return nil, nil, err
	}
	var templates, hosts []*models.Host
	for _, id := range templateIDs {
		t, ok := o.hosts[id]
		if !ok {
			return nil, nil, validation.NewValidationError("template #%d does not exist", id)
		}
		if !t.IsTemplate() {
			return nil, nil, validation.NewValidationError("'%s' is not a template", t.Name)
		}
		templates = append(templates, t)
	}
	for _, id := range hostIDs {
		h, ok := o.hosts[id]
		if !ok {
			return nil, nil, validation.NewValidationError("host #%d does not exist", id)
		}
		hosts = append(hosts, h)
	}
	return templates, hosts, nil
}

// updateHosts writes changed link sets, counting templates and hosts apart
func (o *operation) updateHosts(ctx context.Context, hosts []*models.Host) error {
	byKind := make(map[models.Kind][]models.Record)
	for _, h := range hosts {
		byKind[hostKind(h)] = append(byKind[hostKind(h)], h)
	}
	for _, kind := range []models.Kind{models.KindTemplate, models.KindHost} {
		if err := o.update(ctx, kind, byKind[kind], nil); err != nil {
			return err
		}
	}
	return nil
}
