package services

import (
	"context"

	"moncfg-backend/internal/application/validation"
	"moncfg-backend/internal/domain/models"
)

func (o *operation) syncImages(ctx context.Context, images []models.ImportedImage) ([]models.Record, error) {
	p := o.newPlan(models.KindImage)
	for _, img := range images {
		rec := &models.Image{Name: img.Name, ImageType: img.ImageType, Data: img.EncodedImage}
		if err := o.plan(p, rec); err != nil {
			return nil, err
		}
	}
	return o.apply(ctx, p)
}

type plannedMap struct {
	src     models.ImportedMap
	rec     *models.Map
	created bool
}

// syncMaps synchronizes maps. Elements may show maps of the same batch, so they are bound
// once every map has an id.
func (o *operation) syncMaps(ctx context.Context, maps []models.ImportedMap) ([]models.Record, error) {
	p := o.newPlan(models.KindMap)
	var todo []plannedMap
	for _, m := range maps {
		rec := &models.Map{Name: m.Name, Width: m.Width, Height: m.Height}
		act, id, err := o.decide(p, rec.Key())
		if err != nil {
			return nil, err
		}
		if act == actionDrop {
			continue
		}
		p.add(act, id, rec)
		todo = append(todo, plannedMap{src: m, rec: rec, created: act == actionCreate})
	}
	if err := o.insertPlanned(ctx, p); err != nil {
		return nil, err
	}
	var fixups []models.Record
	for _, t := range todo {
		if err := o.bindMapElements(t.rec, t.src); err != nil {
			return nil, err
		}
		if t.created && len(t.rec.Elements) > 0 {
			fixups = append(fixups, t.rec)
		}
	}
	if err := o.updatePlanned(ctx, p, fixups); err != nil {
		return nil, err
	}
	return p.records(), nil
}

func (o *operation) bindMapElements(rec *models.Map, src models.ImportedMap) error {
	rec.Elements = make([]models.MapElement, 0, len(src.Elements))
	for _, el := range src.Elements {
		key, ok := el.Element.Key(el.ElementType)
		if !ok {
			return validation.NewValidationError("map '%s': unknown element type %d", src.Name, el.ElementType)
		}
		me := models.MapElement{ElementType: el.ElementType, Label: el.Label, X: el.X, Y: el.Y}
		if el.ElementType != models.MapElementImage {
			if key.Name == "" {
				return validation.NewValidationError("map '%s': %s element without a target", src.Name, key.Kind)
			}
			id, err := o.require(key, rec.Key())
			if err != nil {
				return err
			}
			me.ElementID = id
		}
		if el.IconOff != nil && el.IconOff.Name != "" {
			id, err := o.require(models.ImageKey(el.IconOff.Name), rec.Key())
			if err != nil {
				return err
			}
			me.IconID = id
		}
		rec.Elements = append(rec.Elements, me)
	}
	return nil
}

func (o *operation) syncScreens(ctx context.Context, screens []models.ImportedScreen) ([]models.Record, error) {
	p := o.newPlan(models.KindScreen)
	for _, s := range screens {
		rec := &models.Screen{Name: s.Name, HSize: s.HSize, VSize: s.VSize}
		bind := func() error {
			rec.Items = make([]models.ScreenItem, 0, len(s.Items))
			for _, si := range s.Items {
				key, ok := si.Resource.Key(si.ResourceType)
				if !ok {
					return validation.NewValidationError("screen '%s': unknown resource type %d", s.Name, si.ResourceType)
				}
				id, err := o.require(key, rec.Key())
				if err != nil {
					return err
				}
				rec.Items = append(rec.Items, models.ScreenItem{
					ResourceType: si.ResourceType,
					ResourceID:   id,
					X:            si.X,
					Y:            si.Y,
					ColSpan:      si.ColSpan,
					RowSpan:      si.RowSpan,
					Width:        si.Width,
					Height:       si.Height,
				})
			}
			return nil
		}
		if err := o.plan(p, rec, bind); err != nil {
			return nil, err
		}
	}
	return o.apply(ctx, p)
}
