package database

import (
	"fmt"
	"strings"

	"photobroom/internal/catalog"
)

// compileFilters turns filters into a WHERE condition on the photos table
// together with its parameters. No filters match every photo.
func compileFilters(filters []catalog.Filter) (string, args, error) {
	a := args{}
	if len(filters) == 0 {
		return "1=1", a, nil
	}

	conds := make([]string, 0, len(filters))
	for i, f := range filters {
		p := fmt.Sprintf("f%d_", i)

		switch f := f.(type) {
		case catalog.FilterByTag:
			a[p+"name"] = f.Name
			cond := "tag_names.name = :" + p + "name"
			if !f.Value.IsEmpty() {
				values := storedValues(f.Value)
				params := make([]string, len(values))
				for j, v := range values {
					name := fmt.Sprintf("%sv%d", p, j)
					a[name] = v
					params[j] = ":" + name
				}
				cond += " AND tags.value IN (" + strings.Join(params, ",") + ")"
			}
			conds = append(conds, "photos.id IN (SELECT tags.photo_id FROM tags JOIN tag_names ON tag_names.id = tags.name_id WHERE "+cond+")")

		case catalog.FilterByFlag:
			a[p+"flag"] = int(f.Flag)
			a[p+"value"] = f.Value
			conds = append(conds, "COALESCE((SELECT flags.value FROM flags WHERE flags.photo_id = photos.id AND flags.flag = :"+p+"flag), 0) = :"+p+"value")

		case catalog.FilterByPath:
			a[p+"path"] = f.Path
			conds = append(conds, "photos.path = :"+p+"path")

		case catalog.FilterByIds:
			conds = append(conds, "photos.id IN ("+inList(p+"id", f.Ids, a)+")")

		case catalog.FilterNotGroupMember:
			conds = append(conds, "photos.id NOT IN (SELECT groups_members.photo_id FROM groups_members)")

		default:
			return "", nil, fmt.Errorf("unsupported filter %T", f)
		}
	}

	return strings.Join(conds, " AND "), a, nil
}
