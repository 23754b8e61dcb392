package models

// HostStatus status of a host record
type HostStatus int

const (
	// HostStatusMonitored monitored host
	HostStatusMonitored HostStatus = 0

	// HostStatusNotMonitored disabled host
	HostStatusNotMonitored HostStatus = 1

	// HostStatusTemplate template
	HostStatusTemplate HostStatus = 3
)

// Group represents a host group
type Group struct {
	ID   ID     `json:"-"`
	Name string `json:"name"`
}

// NewGroup creates a new Group
func NewGroup(name string) *Group {
	return &Group{Name: name}
}

func (g *Group) GetID() ID { return g.ID }
func (g *Group) SetID(id ID) { g.ID = id }
func (g *Group) Key() NaturalKey { return GroupKey(g.Name) }
func (g *Group) Kind() Kind { return KindGroup }
func (g *Group) GetHostID() ID { return 0 }
func (g *Group) GetTemplateID() ID { return 0 }
func (g *Group) SetTemplateID(_ ID) {}
func (g *Group) DeepCopy() Record { c := *g; return &c }

// Host represents a host or, with HostStatusTemplate, a template.
// TemplateIDs is the link set: the templates this record inherits from.
type Host struct {
	ID          ID         `json:"-"`
	Name        string     `json:"name"`
	VisibleName string     `json:"visibleName,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      HostStatus `json:"status"`
	ProxyID     ID         `json:"proxyId,omitempty"`
	GroupIDs    []ID       `json:"groupIds,omitempty"`
	TemplateIDs []ID       `json:"templateIds,omitempty"`
}

// NewHost creates a new monitored Host
func NewHost(name string) *Host {
	return &Host{Name: name, Status: HostStatusMonitored}
}

// NewTemplate creates a new template Host
func NewTemplate(name string) *Host {
	return &Host{Name: name, Status: HostStatusTemplate}
}

// IsTemplate reports whether the host record is a template
func (h *Host) IsTemplate() bool {
	return h.Status == HostStatusTemplate
}

// LinksTo reports whether the host directly links the template
func (h *Host) LinksTo(templateID ID) bool {
	return ContainsID(h.TemplateIDs, templateID)
}

func (h *Host) GetID() ID { return h.ID }
func (h *Host) SetID(id ID) { h.ID = id }
func (h *Host) Key() NaturalKey { return HostKey(h.Name) }
func (h *Host) Kind() Kind { return KindHost }
func (h *Host) GetHostID() ID { return 0 }
func (h *Host) GetTemplateID() ID { return 0 }
func (h *Host) SetTemplateID(_ ID) {}

// DeepCopy creates a deep copy of Host
func (h *Host) DeepCopy() Record {
	c := *h
	c.GroupIDs = copyIDs(h.GroupIDs)
	c.TemplateIDs = copyIDs(h.TemplateIDs)
	return &c
}

// Proxy represents a monitoring proxy; the engine only references proxies
type Proxy struct {
	ID   ID     `json:"-"`
	Name string `json:"name"`
}

func (p *Proxy) GetID() ID { return p.ID }
func (p *Proxy) SetID(id ID) { p.ID = id }
func (p *Proxy) Key() NaturalKey { return ProxyKey(p.Name) }
func (p *Proxy) Kind() Kind { return KindProxy }
func (p *Proxy) GetHostID() ID { return 0 }
func (p *Proxy) GetTemplateID() ID { return 0 }
func (p *Proxy) SetTemplateID(_ ID) {}
func (p *Proxy) DeepCopy() Record { c := *p; return &c }

// Macro represents a user macro defined on a host or template
type Macro struct {
	ID     ID     `json:"-"`
	HostID ID     `json:"hostId"`
	Host   string `json:"host"`
	Macro  string `json:"macro"`
	Value  string `json:"value"`
}

func (m *Macro) GetID() ID { return m.ID }
func (m *Macro) SetID(id ID) { m.ID = id }
func (m *Macro) Key() NaturalKey { return MacroKey(m.Host, m.Macro) }
func (m *Macro) Kind() Kind { return KindMacro }
func (m *Macro) GetHostID() ID { return m.HostID }
func (m *Macro) GetTemplateID() ID { return 0 }
func (m *Macro) SetTemplateID(_ ID) {}
func (m *Macro) DeepCopy() Record { c := *m; return &c }

// Application groups items on a host
type Application struct {
	ID         ID     `json:"-"`
	HostID     ID     `json:"hostId"`
	Host       string `json:"host"`
	Name       string `json:"name"`
	TemplateID ID     `json:"templateId,omitempty"`
}

func (a *Application) GetID() ID { return a.ID }
func (a *Application) SetID(id ID) { a.ID = id }
func (a *Application) Key() NaturalKey { return ApplicationKey(a.Host, a.Name) }
func (a *Application) Kind() Kind { return KindApplication }
func (a *Application) GetHostID() ID { return a.HostID }
func (a *Application) GetTemplateID() ID { return a.TemplateID }
func (a *Application) SetTemplateID(id ID) { a.TemplateID = id }
func (a *Application) DeepCopy() Record { c := *a; return &c }
