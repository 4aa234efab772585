package permission

// Serialized is the plain-data (JSON-safe) form of a Set: sets become
// sorted slices. It is the only permission shape that crosses the storage
// boundary or is handed to the application-state replica.
type Serialized struct {
	Modules []SerializedModule `json:"modules"`
}

// SerializedModule mirrors one module grant as plain data.
type SerializedModule struct {
	ID     string   `json:"id"`
	Items  []string `json:"items,omitempty"`
	Levels []string `json:"levels,omitempty"`
	Routes []string `json:"routes,omitempty"`
}

// Serialize converts the Set into its plain-data form. Output is
// deterministic (sorted) so persisted permissions diff cleanly.
// A nil Set serializes to an empty grant.
func Serialize(s *Set) *Serialized {
	out := &Serialized{Modules: []SerializedModule{}}
	if s == nil {
		return out
	}
	for _, id := range s.Modules() {
		g := s.modules[id]
		out.Modules = append(out.Modules, SerializedModule{
			ID:     id,
			Items:  sortedKeys(g.items),
			Levels: sortedKeys(g.levels),
			Routes: sortedKeys(g.routes),
		})
	}
	return out
}

// Deserialize rebuilds a Set from its plain-data form. The result is
// query-equivalent to the Set that produced it. Empty modules are pruned
// again, so the Set invariant holds even for hand-edited data. A nil
// input yields an empty Set.
func Deserialize(ser *Serialized) *Set {
	if ser == nil {
		return Normalize(nil)
	}
	raw := make([]RawModule, 0, len(ser.Modules))
	for _, m := range ser.Modules {
		raw = append(raw, RawModule{
			ID:     m.ID,
			Items:  m.Items,
			Levels: m.Levels,
			Routes: m.Routes,
		})
	}
	return Normalize(raw)
}
