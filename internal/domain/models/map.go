package models

// Map element types
const (
	MapElementHost    = 0
	MapElementMap     = 1
	MapElementTrigger = 2
	MapElementGroup   = 3
	MapElementImage   = 4
)

// Screen resource types
const (
	ScreenResourceGraph       = 0
	ScreenResourceSimpleGraph = 1
	ScreenResourceMap         = 2
	ScreenResourcePlainText   = 3
)

// Image represents an icon or background image
type Image struct {
	ID        ID     `json:"-"`
	Name      string `json:"name"`
	ImageType int    `json:"imageType"`
	Data      string `json:"data"`
}

func (i *Image) GetID() ID { return i.ID }
func (i *Image) SetID(id ID) { i.ID = id }
func (i *Image) Key() NaturalKey { return ImageKey(i.Name) }
func (i *Image) Kind() Kind { return KindImage }
func (i *Image) GetHostID() ID { return 0 }
func (i *Image) GetTemplateID() ID { return 0 }
func (i *Image) SetTemplateID(_ ID) {}
func (i *Image) DeepCopy() Record { c := *i; return &c }

// MapElement one element placed on a map; ElementID refers to a record selected by ElementType
type MapElement struct {
	ElementType int    `json:"elementType"`
	ElementID   ID     `json:"elementId"`
	IconID      ID     `json:"iconId,omitempty"`
	Label       string `json:"label,omitempty"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

// Map represents a network map
type Map struct {
	ID       ID           `json:"-"`
	Name     string       `json:"name"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Elements []MapElement `json:"elements,omitempty"`
}

func (m *Map) GetID() ID { return m.ID }
func (m *Map) SetID(id ID) { m.ID = id }
func (m *Map) Key() NaturalKey { return MapKey(m.Name) }
func (m *Map) Kind() Kind { return KindMap }
func (m *Map) GetHostID() ID { return 0 }
func (m *Map) GetTemplateID() ID { return 0 }
func (m *Map) SetTemplateID(_ ID) {}

// DeepCopy creates a deep copy of Map
func (m *Map) DeepCopy() Record {
	c := *m
	if m.Elements != nil {
		c.Elements = make([]MapElement, len(m.Elements))
		copy(c.Elements, m.Elements)
	}
	return &c
}

// ScreenItem one cell of a screen; ResourceID refers to a record selected by ResourceType
type ScreenItem struct {
	ResourceType int `json:"resourceType"`
	ResourceID   ID  `json:"resourceId"`
	X            int `json:"x"`
	Y            int `json:"y"`
	ColSpan      int `json:"colSpan,omitempty"`
	RowSpan      int `json:"rowSpan,omitempty"`
	Width        int `json:"width,omitempty"`
	Height       int `json:"height,omitempty"`
}

// Screen represents a dashboard screen
type Screen struct {
	ID    ID           `json:"-"`
	Name  string       `json:"name"`
	HSize int          `json:"hSize"`
	VSize int          `json:"vSize"`
	Items []ScreenItem `json:"items,omitempty"`
}

func (s *Screen) GetID() ID { return s.ID }
func (s *Screen) SetID(id ID) { s.ID = id }
func (s *Screen) Key() NaturalKey { return ScreenKey(s.Name) }
func (s *Screen) Kind() Kind { return KindScreen }
func (s *Screen) GetHostID() ID { return 0 }
func (s *Screen) GetTemplateID() ID { return 0 }
func (s *Screen) SetTemplateID(_ ID) {}

// DeepCopy creates a deep copy of Screen
func (s *Screen) DeepCopy() Record {
	c := *s
	if s.Items != nil {
		c.Items = make([]ScreenItem, len(s.Items))
		copy(c.Items, s.Items)
	}
	return &c
}
