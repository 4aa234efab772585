package permission

import (
	"encoding/json"
)

// RawModule is one node of the server's permission tree. The wire shape is
// not stable across backend versions: identifiers show up under different
// keys, items arrive as bare strings or as objects, and modules nest. The
// custom unmarshaller absorbs every shape seen in the wild; anything it
// does not recognize decodes to an empty node rather than an error, since
// "no permissions" means deny-all, not failure.
type RawModule struct {
	ID       string
	Items    []string
	Levels   []string
	Routes   []string
	Children []RawModule
}

type rawModuleWire struct {
	ID       string          `json:"id"`
	Key      string          `json:"key"`
	ModuleID string          `json:"module_id"`
	Items    []rawName       `json:"items"`
	Perms    []rawName       `json:"permissions"`
	Levels   []rawName       `json:"levels"`
	Routes   []rawRoute      `json:"routes"`
	Children json.RawMessage `json:"children"`
	Modules  json.RawMessage `json:"modules"`
}

// rawName decodes either "leave.view" or {"id": "...", "key": "...",
// "name": "..."} into its string identifier.
type rawName struct {
	value string
}

func (n *rawName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n.value = s
		return nil
	}
	var obj struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		// Unknown shape: empty identifier, dropped during normalization.
		n.value = ""
		return nil
	}
	switch {
	case obj.ID != "":
		n.value = obj.ID
	case obj.Key != "":
		n.value = obj.Key
	default:
		n.value = obj.Name
	}
	return nil
}

// rawRoute decodes either "/hr/leave" or {"path": "/hr/leave"}.
type rawRoute struct {
	value string
}

func (r *rawRoute) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.value = s
		return nil
	}
	var obj struct {
		Path  string `json:"path"`
		Route string `json:"route"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		r.value = ""
		return nil
	}
	if obj.Path != "" {
		r.value = obj.Path
	} else {
		r.value = obj.Route
	}
	return nil
}

func (m *RawModule) UnmarshalJSON(b []byte) error {
	*m = RawModule{}

	var w rawModuleWire
	if err := json.Unmarshal(b, &w); err != nil {
		// Not an object (null, number, ...): empty node.
		return nil
	}

	switch {
	case w.ID != "":
		m.ID = w.ID
	case w.Key != "":
		m.ID = w.Key
	default:
		m.ID = w.ModuleID
	}

	for _, it := range append(w.Items, w.Perms...) {
		if it.value != "" {
			m.Items = append(m.Items, it.value)
		}
	}
	for _, lv := range w.Levels {
		if lv.value != "" {
			m.Levels = append(m.Levels, lv.value)
		}
	}
	for _, rt := range w.Routes {
		if rt.value != "" {
			m.Routes = append(m.Routes, rt.value)
		}
	}

	m.Children = decodeChildren(w.Children)
	m.Children = append(m.Children, decodeChildren(w.Modules)...)
	return nil
}

func decodeChildren(raw json.RawMessage) []RawModule {
	if len(raw) == 0 {
		return nil
	}
	var children []RawModule
	if err := json.Unmarshal(raw, &children); err != nil {
		return nil
	}
	return children
}

// ParseRawModules decodes a sidebar_modules payload. A missing, null, or
// unreadable payload yields nil (deny-all), never an error.
func ParseRawModules(raw json.RawMessage) []RawModule {
	if len(raw) == 0 {
		return nil
	}
	var modules []RawModule
	if err := json.Unmarshal(raw, &modules); err != nil {
		return nil
	}
	return modules
}
