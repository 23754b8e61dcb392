package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
	"moncfg-backend/internal/domain/ports"
)

// operation is the state of one import, link or unlink call. It lives for one transaction.
type operation struct {
	runID    uuid.UUID
	writer   ports.Writer
	reader   ports.Reader
	resolver *Resolver
	policies models.Policies
	perms    ports.PermissionChecker
	result   *models.Result

	// host index, reloaded after host records are written
	hosts      map[models.ID]*models.Host
	hostByName map[string]*models.Host
	dependents map[models.ID][]*models.Host

	processedHosts map[string]models.ID
	processedRules map[models.NaturalKey]models.ID
	keys           map[models.Kind]map[models.ID]models.NaturalKey
	propagation    models.PropagationRecord
	pendingDeps    []pendingDependency
}

// hostLink a template linked to a host during this operation
type hostLink struct {
	host     models.ID
	template models.ID
}

func newOperation(writer ports.Writer, reader ports.Reader, perms ports.PermissionChecker, policies models.Policies) *operation {
	result := models.NewResult()
	return &operation{
		runID:          result.RunID,
		writer:         writer,
		reader:         reader,
		resolver:       NewResolver(reader),
		policies:       policies,
		perms:          perms,
		result:         result,
		processedHosts: make(map[string]models.ID),
		processedRules: make(map[models.NaturalKey]models.ID),
		keys:           make(map[models.Kind]map[models.ID]models.NaturalKey),
		propagation:    make(models.PropagationRecord),
	}
}

func (o *operation) remember(rec models.Record) {
	kind := rec.Kind().Storage()
	m, ok := o.keys[kind]
	if !ok {
		m = make(map[models.ID]models.NaturalKey)
		o.keys[kind] = m
	}
	m[rec.GetID()] = rec.Key()
}

// insert creates records, assigns their ids and writes them back to the resolver
func (o *operation) insert(ctx context.Context, kind models.Kind, recs []models.Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := o.checkHostOwned(ctx, recs); err != nil {
		return err
	}
	ids, err := o.writer.Insert(ctx, kind, recs)
	if err != nil {
		return validation.NewStoreError(err, "insert %d %s record(s)", len(recs), kind)
	}
	for i, rec := range recs {
		rec.SetID(ids[i])
		if err = o.resolver.Record(rec.Key(), ids[i]); err != nil {
			return err
		}
		o.remember(rec)
		klog.V(4).Infof("[%s] created %s #%d", o.runID, rec.Key(), ids[i])
	}
	o.result.Created.Add(kind, len(recs))
	o.touch(kind)
	return nil
}

// update writes records; fixups are rewrites of records created earlier in this operation
// and are not counted as updates
func (o *operation) update(ctx context.Context, kind models.Kind, recs []models.Record, fixups []models.Record) error {
	if len(recs) > 0 {
		if err := o.checkWrite(ctx, kind, models.IDs(recs)); err != nil {
			return err
		}
	}
	all := append(append([]models.Record(nil), recs...), fixups...)
	if len(all) == 0 {
		return nil
	}
	if err := o.writer.Update(ctx, kind, all); err != nil {
		return validation.NewStoreError(err, "update %d %s record(s)", len(all), kind)
	}
	for _, rec := range all {
		o.remember(rec)
	}
	for _, rec := range recs {
		klog.V(4).Infof("[%s] updated %s #%d", o.runID, rec.Key(), rec.GetID())
	}
	o.result.Updated.Add(kind, len(recs))
	o.touch(kind)
	return nil
}

func (o *operation) delete(ctx context.Context, kind models.Kind, recs []models.Record) error {
	if len(recs) == 0 {
		return nil
	}
	ids := models.IDs(recs)
	if err := o.checkWrite(ctx, kind, ids); err != nil {
		return err
	}
	if err := o.writer.Delete(ctx, kind, ids); err != nil {
		return validation.NewStoreError(err, "delete %d %s record(s)", len(ids), kind)
	}
	for _, rec := range recs {
		o.resolver.Forget(rec.Key())
		klog.V(4).Infof("[%s] deleted %s #%d", o.runID, rec.Key(), rec.GetID())
	}
	o.result.Deleted.Add(kind, len(recs))
	o.touch(kind)
	return nil
}

func (o *operation) touch(kind models.Kind) {
	if kind.Storage() == models.KindHost {
		o.hosts = nil
	}
}

func (o *operation) checkWrite(ctx context.Context, kind models.Kind, ids []models.ID) error {
	if o.perms == nil || len(ids) == 0 {
		return nil
	}
	ok, err := o.perms.CanWrite(ctx, kind, ids)
	if err != nil {
		return errors.WithMessage(err, "permission check")
	}
	if !ok {
		return &validation.PermissionDeniedError{Kind: kind, IDs: ids}
	}
	return nil
}

// checkHostOwned checks write access to the hosts that new records are created on
func (o *operation) checkHostOwned(ctx context.Context, recs []models.Record) error {
	var hostIDs []models.ID
	for _, rec := range recs {
		if id := rec.GetHostID(); id != 0 && !models.ContainsID(hostIDs, id) {
			hostIDs = append(hostIDs, id)
		}
	}
	return o.checkWrite(ctx, models.KindHost, hostIDs)
}

// list loads the records of a scope; a non-empty scope type without ids selects nothing
func (o *operation) list(ctx context.Context, kind models.Kind, scope ports.Scope) ([]models.Record, error) {
	if _, all := scope.(ports.EmptyScope); !all && scope.IsEmpty() {
		return nil, nil
	}
	var ret []models.Record
	err := o.reader.List(ctx, kind, func(rec models.Record) error {
		ret = append(ret, rec)
		return nil
	}, scope)
	if err != nil {
		return nil, validation.NewStoreError(err, "list %s %s", kind, scope)
	}
	for _, rec := range ret {
		o.remember(rec)
	}
	return ret, nil
}

// byIDs loads records by id with one query; no query is made for an empty id list
func (o *operation) byIDs(ctx context.Context, kind models.Kind, ids []models.ID) (map[models.ID]models.Record, error) {
	ret := make(map[models.ID]models.Record, len(ids))
	recs, err := o.list(ctx, kind, ports.NewIDScope(ids...))
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		ret[rec.GetID()] = rec
	}
	return ret, nil
}

// keysOf returns natural keys of records by id, loading the unknown ones with one query
func (o *operation) keysOf(ctx context.Context, kind models.Kind, ids []models.ID) (map[models.ID]models.NaturalKey, error) {
	kind = kind.Storage()
	known := o.keys[kind]
	var missing []models.ID
	for _, id := range ids {
		if _, ok := known[id]; !ok && id != 0 && !models.ContainsID(missing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		if _, err := o.byIDs(ctx, kind, missing); err != nil {
			return nil, err
		}
	}
	ret := make(map[models.ID]models.NaturalKey, len(ids))
	for _, id := range ids {
		if k, ok := o.keys[kind][id]; ok {
			ret[id] = k
		}
	}
	return ret, nil
}

// loadHosts builds the host index: every host and template with the hosts linking each template
func (o *operation) loadHosts(ctx context.Context) error {
	if o.hosts != nil {
		return nil
	}
	recs, err := o.list(ctx, models.KindHost, ports.EmptyScope{})
	if err != nil {
		return err
	}
	o.hosts = make(map[models.ID]*models.Host, len(recs))
	o.hostByName = make(map[string]*models.Host, len(recs))
	o.dependents = make(map[models.ID][]*models.Host)
	for _, rec := range recs {
		h := rec.(*models.Host)
		o.hosts[h.ID] = h
		o.hostByName[h.Name] = h
		for _, tid := range h.TemplateIDs {
			o.dependents[tid] = append(o.dependents[tid], h)
		}
	}
	for _, hs := range o.dependents {
		sort.Slice(hs, func(i, j int) bool { return hs[i].ID < hs[j].ID })
	}
	return nil
}

// existingEdges returns link edges of the stored host index
func (o *operation) existingEdges() []models.LinkEdge {
	var ret []models.LinkEdge
	ids := make([]models.ID, 0, len(o.hosts))
	for id := range o.hosts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		h := o.hosts[id]
		for _, tid := range h.TemplateIDs {
			if t, ok := o.hosts[tid]; ok {
				ret = append(ret, linkEdge(h, t.Name))
			}
		}
	}
	return ret
}

func linkEdge(h *models.Host, template string) models.LinkEdge {
	kind := models.LinkTemplateHost
	if h.IsTemplate() {
		kind = models.LinkTemplateTemplate
	}
	return models.LinkEdge{Host: h.Name, Template: template, Kind: kind}
}

// require resolves a reference that must exist
func (o *operation) require(ref, referrer models.NaturalKey) (models.ID, error) {
	id, err := o.resolver.Resolve(ref)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, validation.NewUnresolvedReferenceError(ref, referrer)
	}
	return id, nil
}

// requireAny resolves the first candidate that exists
func (o *operation) requireAny(referrer models.NaturalKey, candidates ...models.NaturalKey) (models.NaturalKey, models.ID, error) {
	for _, k := range candidates {
		id, err := o.resolver.Resolve(k)
		if err != nil {
			return k, 0, err
		}
		if id != 0 {
			return k, id, nil
		}
	}
	return candidates[0], 0, validation.NewUnresolvedReferenceError(candidates[0], referrer)
}
