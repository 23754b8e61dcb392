package models

// SupportedExportVersion the only export schema version accepted by the importer
const SupportedExportVersion = "1.0"

// ImportTree is the parsed configuration export; read-only once parsed.
// Templates and hosts carry their own applications, items, discovery rules and macros;
// triggers and graphs live at the top level and find their host through item references.
type ImportTree struct {
	Version   string            `yaml:"version" json:"version"`
	Groups    []ImportedGroup   `yaml:"groups,omitempty" json:"groups,omitempty"`
	Templates []ImportedHost    `yaml:"templates,omitempty" json:"templates,omitempty"`
	Hosts     []ImportedHost    `yaml:"hosts,omitempty" json:"hosts,omitempty"`
	Triggers  []ImportedTrigger `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Graphs    []ImportedGraph   `yaml:"graphs,omitempty" json:"graphs,omitempty"`
	Images    []ImportedImage   `yaml:"images,omitempty" json:"images,omitempty"`
	Maps      []ImportedMap     `yaml:"maps,omitempty" json:"maps,omitempty"`
	Screens   []ImportedScreen  `yaml:"screens,omitempty" json:"screens,omitempty"`
}

// NameRef references an entity by name
type NameRef struct {
	Name string `yaml:"name" json:"name"`
}

// ImportedGroup host group
type ImportedGroup struct {
	Name string `yaml:"name" json:"name"`
}

// Key natural key of the group
func (g ImportedGroup) Key() NaturalKey { return GroupKey(g.Name) }

// ImportedHost host or template. Optional scalars stay nil when absent so that updates keep
// the stored value.
type ImportedHost struct {
	Host           string                  `yaml:"host" json:"host"`
	Name           *string                 `yaml:"name,omitempty" json:"name,omitempty"`
	Description    *string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Status         *int                    `yaml:"status,omitempty" json:"status,omitempty"`
	Proxy          *NameRef                `yaml:"proxy,omitempty" json:"proxy,omitempty"`
	Groups         []NameRef               `yaml:"groups,omitempty" json:"groups,omitempty"`
	Templates      []NameRef               `yaml:"templates,omitempty" json:"templates,omitempty"`
	Macros         []ImportedMacro         `yaml:"macros,omitempty" json:"macros,omitempty"`
	Applications   []NameRef               `yaml:"applications,omitempty" json:"applications,omitempty"`
	Items          []ImportedItem          `yaml:"items,omitempty" json:"items,omitempty"`
	DiscoveryRules []ImportedDiscoveryRule `yaml:"discovery_rules,omitempty" json:"discovery_rules,omitempty"`
}

// Key natural key of the host
func (h ImportedHost) Key() NaturalKey { return HostKey(h.Host) }

// ImportedMacro user macro
type ImportedMacro struct {
	Macro string `yaml:"macro" json:"macro"`
	Value string `yaml:"value" json:"value"`
}

// ImportedItem item or item prototype
type ImportedItem struct {
	Name         string    `yaml:"name" json:"name"`
	Key          string    `yaml:"key" json:"key"`
	Type         int       `yaml:"type,omitempty" json:"type,omitempty"`
	ValueType    int       `yaml:"value_type,omitempty" json:"value_type,omitempty"`
	Delay        string    `yaml:"delay,omitempty" json:"delay,omitempty"`
	History      string    `yaml:"history,omitempty" json:"history,omitempty"`
	Trends       string    `yaml:"trends,omitempty" json:"trends,omitempty"`
	Units        string    `yaml:"units,omitempty" json:"units,omitempty"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	Status       int       `yaml:"status,omitempty" json:"status,omitempty"`
	Applications []NameRef `yaml:"applications,omitempty" json:"applications,omitempty"`
}

// ImportedDiscoveryRule discovery rule with its prototypes nested below it
type ImportedDiscoveryRule struct {
	ImportedItem      `yaml:",inline"`
	Filter            string            `yaml:"filter,omitempty" json:"filter,omitempty"`
	Lifetime          string            `yaml:"lifetime,omitempty" json:"lifetime,omitempty"`
	ItemPrototypes    []ImportedItem    `yaml:"item_prototypes,omitempty" json:"item_prototypes,omitempty"`
	TriggerPrototypes []ImportedTrigger `yaml:"trigger_prototypes,omitempty" json:"trigger_prototypes,omitempty"`
	GraphPrototypes   []ImportedGraph   `yaml:"graph_prototypes,omitempty" json:"graph_prototypes,omitempty"`
}

// TriggerRef references a trigger by description and expression
type TriggerRef struct {
	Name       string `yaml:"name" json:"name"`
	Expression string `yaml:"expression" json:"expression"`
}

// ImportedTrigger trigger or trigger prototype
type ImportedTrigger struct {
	Name         string       `yaml:"name" json:"name"`
	Expression   string       `yaml:"expression" json:"expression"`
	Priority     int          `yaml:"priority,omitempty" json:"priority,omitempty"`
	Comments     string       `yaml:"comments,omitempty" json:"comments,omitempty"`
	URL          string       `yaml:"url,omitempty" json:"url,omitempty"`
	Status       int          `yaml:"status,omitempty" json:"status,omitempty"`
	Dependencies []TriggerRef `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Owner returns the host owning the trigger
func (t ImportedTrigger) Owner() string { return ExpressionOwner(t.Expression) }

// ImportedGraphItem one graph item
type ImportedGraphItem struct {
	Item      ItemRef `yaml:"item" json:"item"`
	Color     string  `yaml:"color" json:"color"`
	SortOrder int     `yaml:"sortorder,omitempty" json:"sortorder,omitempty"`
	DrawType  int     `yaml:"drawtype,omitempty" json:"drawtype,omitempty"`
	CalcFnc   int     `yaml:"calc_fnc,omitempty" json:"calc_fnc,omitempty"`
	YAxisSide int     `yaml:"yaxisside,omitempty" json:"yaxisside,omitempty"`
}

// ImportedGraph graph or graph prototype
type ImportedGraph struct {
	Name     string              `yaml:"name" json:"name"`
	Width    int                 `yaml:"width,omitempty" json:"width,omitempty"`
	Height   int                 `yaml:"height,omitempty" json:"height,omitempty"`
	Type     int                 `yaml:"type,omitempty" json:"type,omitempty"`
	YMinType int                 `yaml:"ymin_type,omitempty" json:"ymin_type,omitempty"`
	YMaxType int                 `yaml:"ymax_type,omitempty" json:"ymax_type,omitempty"`
	YMinItem *ItemRef            `yaml:"ymin_item,omitempty" json:"ymin_item,omitempty"`
	YMaxItem *ItemRef            `yaml:"ymax_item,omitempty" json:"ymax_item,omitempty"`
	Items    []ImportedGraphItem `yaml:"graph_items" json:"graph_items"`
}

// Owner returns the host owning the graph, the host of its first graph item
func (g ImportedGraph) Owner() string {
	if len(g.Items) == 0 {
		return ""
	}
	return g.Items[0].Item.Host
}

// ItemRefs returns every item reference of the graph including Y axis bound items
func (g ImportedGraph) ItemRefs() []ItemRef {
	refs := make([]ItemRef, 0, len(g.Items)+2)
	for _, gi := range g.Items {
		refs = append(refs, gi.Item)
	}
	if g.YMinType == YAxisItemValue && g.YMinItem != nil {
		refs = append(refs, *g.YMinItem)
	}
	if g.YMaxType == YAxisItemValue && g.YMaxItem != nil {
		refs = append(refs, *g.YMaxItem)
	}
	return refs
}

// ImportedImage image
type ImportedImage struct {
	Name         string `yaml:"name" json:"name"`
	ImageType    int    `yaml:"imagetype,omitempty" json:"imagetype,omitempty"`
	EncodedImage string `yaml:"encodedImage" json:"encodedImage"`
}

// MapElementRef references the target of a map element; the fields used depend on the element type
type MapElementRef struct {
	Host       string `yaml:"host,omitempty" json:"host,omitempty"`
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	Expression string `yaml:"expression,omitempty" json:"expression,omitempty"`
}

// Key natural key of the referenced element, ok is false for an unknown element type
func (r MapElementRef) Key(elementType int) (NaturalKey, bool) {
	switch elementType {
	case MapElementHost:
		return HostKey(r.Host), true
	case MapElementMap:
		return MapKey(r.Name), true
	case MapElementTrigger:
		return TriggerKey(r.Name, r.Expression), true
	case MapElementGroup:
		return GroupKey(r.Name), true
	case MapElementImage:
		return NaturalKey{}, true
	}
	return NaturalKey{}, false
}

// ImportedMapElement map element
type ImportedMapElement struct {
	ElementType int           `yaml:"elementtype" json:"elementtype"`
	Element     MapElementRef `yaml:"element,omitempty" json:"element,omitempty"`
	IconOff     *NameRef      `yaml:"icon_off,omitempty" json:"icon_off,omitempty"`
	Label       string        `yaml:"label,omitempty" json:"label,omitempty"`
	X           int           `yaml:"x,omitempty" json:"x,omitempty"`
	Y           int           `yaml:"y,omitempty" json:"y,omitempty"`
}

// ImportedMap network map
type ImportedMap struct {
	Name     string               `yaml:"name" json:"name"`
	Width    int                  `yaml:"width,omitempty" json:"width,omitempty"`
	Height   int                  `yaml:"height,omitempty" json:"height,omitempty"`
	Elements []ImportedMapElement `yaml:"selements,omitempty" json:"selements,omitempty"`
}

// ScreenResourceRef references the resource shown in a screen cell
type ScreenResourceRef struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Host    string `yaml:"host,omitempty" json:"host,omitempty"`
	ItemKey string `yaml:"key,omitempty" json:"key,omitempty"`
}

// Key natural key of the referenced resource, ok is false for an unknown resource type
func (r ScreenResourceRef) Key(resourceType int) (NaturalKey, bool) {
	switch resourceType {
	case ScreenResourceGraph:
		return GraphKey(r.Host, r.Name), true
	case ScreenResourceSimpleGraph, ScreenResourcePlainText:
		return ItemKey(r.Host, r.ItemKey), true
	case ScreenResourceMap:
		return MapKey(r.Name), true
	}
	return NaturalKey{}, false
}

// ImportedScreenItem screen cell
type ImportedScreenItem struct {
	ResourceType int               `yaml:"resourcetype" json:"resourcetype"`
	Resource     ScreenResourceRef `yaml:"resource" json:"resource"`
	X            int               `yaml:"x,omitempty" json:"x,omitempty"`
	Y            int               `yaml:"y,omitempty" json:"y,omitempty"`
	ColSpan      int               `yaml:"colspan,omitempty" json:"colspan,omitempty"`
	RowSpan      int               `yaml:"rowspan,omitempty" json:"rowspan,omitempty"`
	Width        int               `yaml:"width,omitempty" json:"width,omitempty"`
	Height       int               `yaml:"height,omitempty" json:"height,omitempty"`
}

// ImportedScreen screen
type ImportedScreen struct {
	Name  string               `yaml:"name" json:"name"`
	HSize int                  `yaml:"hsize,omitempty" json:"hsize,omitempty"`
	VSize int                  `yaml:"vsize,omitempty" json:"vsize,omitempty"`
	Items []ImportedScreenItem `yaml:"screen_items,omitempty" json:"screen_items,omitempty"`
}
