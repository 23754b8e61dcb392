package models

// GraphFlags distinguishes graphs from graph prototypes
type GraphFlags int

const (
	// GraphFlagPlain plain graph
	GraphFlagPlain GraphFlags = 0

	// GraphFlagPrototype graph prototype
	GraphFlagPrototype GraphFlags = 2
)

// Y axis bound types
const (
	YAxisCalculated = 0
	YAxisFixed      = 1
	YAxisItemValue  = 2
)

// ItemLink references an item or, in graph prototypes, possibly an item prototype
type ItemLink struct {
	ID        ID   `json:"id"`
	Prototype bool `json:"prototype,omitempty"`
}

// Kind returns the kind of the referenced record
func (l ItemLink) Kind() Kind {
	if l.Prototype {
		return KindItemPrototype
	}
	return KindItem
}

// IsZero reports whether the link is unset
func (l ItemLink) IsZero() bool {
	return l.ID == 0
}

// GraphItem one drawn item of a graph
type GraphItem struct {
	Item      ItemLink `json:"item"`
	Color     string   `json:"color"`
	SortOrder int      `json:"sortOrder"`
	DrawType  int      `json:"drawType,omitempty"`
	CalcFnc   int      `json:"calcFnc,omitempty"`
	YAxisSide int      `json:"yAxisSide,omitempty"`
}

// Graph represents a graph or graph prototype owned by the host of its first item
type Graph struct {
	ID         ID          `json:"-"`
	Flags      GraphFlags  `json:"flags"`
	HostID     ID          `json:"hostId"`
	Host       string      `json:"host"`
	Name       string      `json:"name"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	GraphType  int         `json:"graphType"`
	YMinType   int         `json:"yMinType"`
	YMaxType   int         `json:"yMaxType"`
	YMinItem   ItemLink    `json:"yMinItem"`
	YMaxItem   ItemLink    `json:"yMaxItem"`
	Items      []GraphItem `json:"items"`
	RuleID     ID          `json:"ruleId,omitempty"`
	TemplateID ID          `json:"templateId,omitempty"`
}

func (g *Graph) GetID() ID { return g.ID }
func (g *Graph) SetID(id ID) { g.ID = id }
func (g *Graph) Key() NaturalKey { return KeyFor(g.Kind(), g.Host, g.Name) }
func (g *Graph) GetHostID() ID { return g.HostID }
func (g *Graph) GetTemplateID() ID { return g.TemplateID }
func (g *Graph) SetTemplateID(id ID) { g.TemplateID = id }
func (g *Graph) GetRuleID() ID { return g.RuleID }

// Kind returns the storage kind selected by the graph flags
func (g *Graph) Kind() Kind {
	if g.Flags == GraphFlagPrototype {
		return KindGraphPrototype
	}
	return KindGraph
}

// Links returns every item the graph depends on, including Y axis bound items
func (g *Graph) Links() []ItemLink {
	ret := make([]ItemLink, 0, len(g.Items)+2)
	for _, gi := range g.Items {
		ret = append(ret, gi.Item)
	}
	if !g.YMinItem.IsZero() {
		ret = append(ret, g.YMinItem)
	}
	if !g.YMaxItem.IsZero() {
		ret = append(ret, g.YMaxItem)
	}
	return ret
}

// DeepCopy creates a deep copy of Graph
func (g *Graph) DeepCopy() Record {
	c := *g
	if g.Items != nil {
		c.Items = make([]GraphItem, len(g.Items))
		copy(c.Items, g.Items)
	}
	return &c
}
