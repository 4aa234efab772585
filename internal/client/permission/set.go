package permission

import "sort"

// AccessLevel is a coarse-grained capability tier attached to a module
// (e.g. "view", "edit", "admin").
type AccessLevel = string

type moduleGrant struct {
	items  map[string]struct{}
	levels map[string]struct{}
	routes map[string]struct{}
}

func (g *moduleGrant) empty() bool {
	return len(g.items) == 0 && len(g.levels) == 0
}

// Set is the normalized permission grant. It is immutable after
// construction: login and permission refresh always build a new Set and
// swap it wholesale. Every query is nil-safe and treats a nil Set as
// "nothing granted".
type Set struct {
	modules map[string]*moduleGrant

	// Flat indexes so the per-navigation checks are single map lookups
	// instead of scans over modules.
	itemIndex  map[string]struct{}
	routeIndex map[string]struct{}
}

// Normalize flattens the raw server tree into a Set. Nested modules become
// top-level entries keyed by their own identifier; the same module
// appearing twice is unioned. Modules granting neither items nor levels
// are pruned. A nil or empty input yields an empty, usable Set.
func Normalize(raw []RawModule) *Set {
	s := &Set{
		modules:    make(map[string]*moduleGrant),
		itemIndex:  make(map[string]struct{}),
		routeIndex: make(map[string]struct{}),
	}
	for i := range raw {
		s.addModule(&raw[i])
	}
	s.prune()
	return s
}

func (s *Set) addModule(m *RawModule) {
	if m.ID != "" {
		g := s.modules[m.ID]
		if g == nil {
			g = &moduleGrant{
				items:  make(map[string]struct{}),
				levels: make(map[string]struct{}),
				routes: make(map[string]struct{}),
			}
			s.modules[m.ID] = g
		}
		for _, it := range m.Items {
			g.items[it] = struct{}{}
		}
		for _, lv := range m.Levels {
			g.levels[lv] = struct{}{}
		}
		for _, rt := range m.Routes {
			g.routes[rt] = struct{}{}
		}
	}
	// Children are granted on their own behalf regardless of whether the
	// parent node carried an identifier.
	for i := range m.Children {
		s.addModule(&m.Children[i])
	}
}

func (s *Set) prune() {
	for id, g := range s.modules {
		if g.empty() {
			delete(s.modules, id)
		}
	}
	for _, g := range s.modules {
		for it := range g.items {
			s.itemIndex[it] = struct{}{}
		}
		for rt := range g.routes {
			s.routeIndex[rt] = struct{}{}
		}
	}
}

// HasItem reports whether the item is granted in any module.
func (s *Set) HasItem(itemID string) bool {
	if s == nil || itemID == "" {
		return false
	}
	_, ok := s.itemIndex[itemID]
	return ok
}

// HasRoute reports whether the exact route string is granted in any
// module. Matching is exact; any prefix or glob semantics must already be
// expanded in the grant itself.
func (s *Set) HasRoute(route string) bool {
	if s == nil || route == "" {
		return false
	}
	_, ok := s.routeIndex[route]
	return ok
}

// HasModule reports whether the module is granted at all.
func (s *Set) HasModule(moduleID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.modules[moduleID]
	return ok
}

// ModuleItems returns the sorted items of one module, or an empty slice
// when the module is absent.
func (s *Set) ModuleItems(moduleID string) []string {
	if s == nil {
		return []string{}
	}
	g, ok := s.modules[moduleID]
	if !ok {
		return []string{}
	}
	return sortedKeys(g.items)
}

// ModuleLevels returns the sorted access levels of one module, or an empty
// slice when the module is absent.
func (s *Set) ModuleLevels(moduleID string) []AccessLevel {
	if s == nil {
		return []AccessLevel{}
	}
	g, ok := s.modules[moduleID]
	if !ok {
		return []AccessLevel{}
	}
	return sortedKeys(g.levels)
}

// HasAny reports whether at least one of the items is granted.
// An empty list grants nothing and reports false.
func (s *Set) HasAny(itemIDs []string) bool {
	if s == nil || len(itemIDs) == 0 {
		return false
	}
	for _, id := range itemIDs {
		if s.HasItem(id) {
			return true
		}
	}
	return false
}

// HasAll reports whether every listed item is granted.
// An empty list grants nothing and reports false.
func (s *Set) HasAll(itemIDs []string) bool {
	if s == nil || len(itemIDs) == 0 {
		return false
	}
	for _, id := range itemIDs {
		if !s.HasItem(id) {
			return false
		}
	}
	return true
}

// Modules returns the sorted granted module identifiers.
func (s *Set) Modules() []string {
	if s == nil {
		return []string{}
	}
	return sortedKeys(s.modules)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
