package diff

import "strings"

// Unify merges the two catalogs into one ordered, duplicate-free column
// list: every before-side name in its original order, then any after-side
// name not already seen, in after-side order. Names compare
// case-insensitively and the unified list holds the uppercased form.
func Unify(before, after []CatalogColumn) (unified []string, origin map[string]Origin) {
	origin = make(map[string]Origin, len(before)+len(after))

	for _, c := range before {
		name := strings.ToUpper(c.Name)
		if _, seen := origin[name]; seen {
			continue
		}
		origin[name] = OriginBefore
		unified = append(unified, name)
	}
	for _, c := range after {
		name := strings.ToUpper(c.Name)
		if side, seen := origin[name]; seen {
			if side == OriginBefore {
				origin[name] = OriginBoth
			}
			continue
		}
		origin[name] = OriginAfter
		unified = append(unified, name)
	}
	return unified, origin
}
