package services

import (
	"context"

	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
)

// processedHost a template or host synchronized in this run, with its imported children
type processedHost struct {
	src models.ImportedHost
	id  models.ID
}

// processed lists templates then hosts that were created or updated in this run.
// Children of any other host are not synchronized.
func (o *operation) processed(tree *models.ImportTree) []processedHost {
	var ret []processedHost
	seen := make(map[string]struct{})
	for _, list := range [][]models.ImportedHost{tree.Templates, tree.Hosts} {
		for _, h := range list {
			id, ok := o.processedHosts[h.Host]
			if _, dup := seen[h.Host]; !ok || dup {
				continue
			}
			seen[h.Host] = struct{}{}
			ret = append(ret, processedHost{src: h, id: id})
		}
	}
	return ret
}

type plannedHost struct {
	src     models.ImportedHost
	rec     *models.Host
	created bool
}

// syncHosts synchronizes templates or hosts. New records are inserted without template
// links first so that templates of the same pass can link each other; links are then
// applied in the update batch and the linked hosts inherit the templates' entities.
func (o *operation) syncHosts(ctx context.Context, kind models.Kind, imported []models.ImportedHost) ([]models.Record, error) {
	p := o.newPlan(kind)
	var todo []plannedHost
	for _, ih := range imported {
		act, id, err := o.decide(p, ih.Key())
		if err != nil {
			return nil, err
		}
		if act == actionDrop {
			continue
		}
		rec := &models.Host{Name: ih.Host}
		p.add(act, id, rec)
		todo = append(todo, plannedHost{src: ih, rec: rec, created: act == actionCreate})
	}

	existing, err := o.byIDs(ctx, models.KindHost, models.IDs(p.updates))
	if err != nil {
		return nil, err
	}
	for _, t := range todo {
		if ex, ok := existing[t.rec.ID]; ok {
			stored := ex.(*models.Host)
			if stored.IsTemplate() != (kind == models.KindTemplate) {
				return nil, validation.NewValidationError("cannot import %s '%s': a %s with this name exists",
					kind, t.src.Host, hostKind(stored))
			}
			*t.rec = *stored
		}
		if err = o.fillHost(kind, t.rec, t.src); err != nil {
			return nil, err
		}
	}

	if err = o.insertPlanned(ctx, p); err != nil {
		return nil, err
	}
	var (
		fixups []models.Record
		links  = make(map[hostLink]bool)
	)
	for _, t := range todo {
		added, err := o.linkImported(t.rec, t.src)
		if err != nil {
			return nil, err
		}
		for _, l := range added {
			links[l] = true
		}
		if t.created && len(added) > 0 {
			fixups = append(fixups, t.rec)
		}
	}
	if err = o.update(ctx, kind, p.updates, fixups); err != nil {
		return nil, err
	}
	for _, t := range todo {
		o.processedHosts[t.rec.Name] = t.rec.ID
	}
	if err = o.inheritLinks(ctx, links); err != nil {
		return nil, err
	}
	return p.records(), nil
}

// fillHost applies imported fields; optional fields that are absent keep the stored value
func (o *operation) fillHost(kind models.Kind, rec *models.Host, src models.ImportedHost) error {
	if kind == models.KindTemplate {
		rec.Status = models.HostStatusTemplate
	} else if src.Status != nil {
		rec.Status = models.HostStatus(*src.Status)
	}
	if src.Name != nil {
		rec.VisibleName = *src.Name
	}
	if src.Description != nil {
		rec.Description = *src.Description
	}
	if src.Proxy != nil {
		rec.ProxyID = 0
		if src.Proxy.Name != "" {
			id, err := o.require(models.ProxyKey(src.Proxy.Name), rec.Key())
			if err != nil {
				return err
			}
			rec.ProxyID = id
		}
	}
	if len(src.Groups) > 0 {
		rec.GroupIDs = make([]models.ID, 0, len(src.Groups))
		for _, g := range src.Groups {
			id, err := o.require(models.GroupKey(g.Name), rec.Key())
			if err != nil {
				return err
			}
			if !models.ContainsID(rec.GroupIDs, id) {
				rec.GroupIDs = append(rec.GroupIDs, id)
			}
		}
	}
	return nil
}

// linkImported adds the imported template links to the stored ones and returns the new links
func (o *operation) linkImported(rec *models.Host, src models.ImportedHost) ([]hostLink, error) {
	var added []hostLink
	for _, t := range src.Templates {
		id, err := o.require(models.HostKey(t.Name), rec.Key())
		if err != nil {
			return nil, err
		}
		if rec.LinksTo(id) {
			continue
		}
		rec.TemplateIDs = append(rec.TemplateIDs, id)
		added = append(added, hostLink{host: rec.ID, template: id})
	}
	return added, nil
}

func hostKind(h *models.Host) models.Kind {
	if h.IsTemplate() {
		return models.KindTemplate
	}
	return models.KindHost
}

// importedEdges returns the template links of imported hosts that will be processed
func (o *operation) importedEdges(tree *models.ImportTree) ([]models.LinkEdge, error) {
	var ret []models.LinkEdge
	for _, part := range []struct {
		kind  models.Kind
		hosts []models.ImportedHost
	}{{models.KindTemplate, tree.Templates}, {models.KindHost, tree.Hosts}} {
		if o.policies.Skipped(part.kind) {
			continue
		}
		policy := o.policies.For(part.kind)
		linkKind := models.LinkTemplateHost
		if part.kind == models.KindTemplate {
			linkKind = models.LinkTemplateTemplate
		}
		for _, h := range part.hosts {
			id, err := o.resolver.Resolve(h.Key())
			if err != nil {
				return nil, err
			}
			if (id != 0 && !policy.UpdateExisting) || (id == 0 && !policy.CreateMissing) {
				continue
			}
			for _, t := range h.Templates {
				ret = append(ret, models.LinkEdge{Host: h.Host, Template: t.Name, Kind: linkKind})
			}
		}
	}
	return ret, nil
}

// validateLinks checks the stored link topology extended by the imported links before
// anything is written
func (o *operation) validateLinks(ctx context.Context, tree *models.ImportTree) error {
	imported, err := o.importedEdges(tree)
	if err != nil || len(imported) == 0 {
		return err
	}
	if err = o.loadHosts(ctx); err != nil {
		return err
	}
	templates := make(map[string]bool)
	for _, h := range tree.Templates {
		templates[h.Host] = true
	}
	for _, h := range tree.Hosts {
		if _, ok := templates[h.Host]; !ok {
			templates[h.Host] = false
		}
	}
	for _, e := range imported {
		isTemplate, ok := templates[e.Template]
		if !ok {
			stored, found := o.hostByName[e.Template]
			if !found {
				return validation.NewUnresolvedReferenceError(models.HostKey(e.Template), models.HostKey(e.Host))
			}
			isTemplate = stored.IsTemplate()
		}
		if !isTemplate {
			return validation.NewValidationError("'%s' cannot link '%s': not a template", e.Host, e.Template)
		}
	}
	edges := append(o.existingEdges(), imported...)
	g, err := validation.BuildLinkGraph(edges)
	if err != nil {
		return err
	}
	klog.V(2).Infof("[%s] %d link(s) checked, chain depth %d", o.runID, len(edges), g.Depth())
	return nil
}
