package permission

import "iter"

// MenuItem is one navigation entry
type MenuItem struct {
	Label string `json:"label"`
	Route string `json:"route"`
}

// MenuSection is a module heading with its visible entries
type MenuSection struct {
	ModuleName string     `json:"moduleName"`
	ModuleSlug string     `json:"moduleSlug"`
	Items      []MenuItem `json:"items"`
}

// MenuItems yields one section per module that has at least one permission
// that is both allowed and marked for the menu, in source order. The sequence
// is recomputed on every iteration.
func MenuItems(m *Map) iter.Seq[MenuSection] {
	return func(yield func(MenuSection) bool) {
		if m == nil {
			return
		}
		for _, mod := range m.modules {
			var items []MenuItem
			for _, p := range mod.Permissions {
				if !p.ShowInMenu || !p.IsAllowed {
					continue
				}
				items = append(items, MenuItem{Label: p.Name, Route: p.Route})
			}
			if len(items) == 0 {
				continue
			}
			section := MenuSection{ModuleName: mod.Name, ModuleSlug: mod.Slug, Items: items}
			if !yield(section) {
				return
			}
		}
	}
}
