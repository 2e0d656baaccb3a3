package catalog

import (
	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

// Filter restricts the photos returned by Backend.GetPhotos and friends.
// Multiple filters are combined with AND.
type Filter interface {
	isFilter()
}

// FilterByTag matches photos carrying tag Name. When Value is not empty the
// tag must also hold that value; list tags match when any element does.
type FilterByTag struct {
	Name  string
	Value tag.Value
}

// FilterByFlag matches photos whose Flag equals Value. Unset flags read as 0.
type FilterByFlag struct {
	Flag  photo.Flag
	Value int
}

// FilterByPath matches the photo stored under Path.
type FilterByPath struct {
	Path string
}

// FilterByIds matches the listed photos.
type FilterByIds struct {
	Ids []photo.Id
}

// FilterNotGroupMember hides photos which are members, but not
// representatives, of a group.
type FilterNotGroupMember struct{}

func (FilterByTag) isFilter()          {}
func (FilterByFlag) isFilter()         {}
func (FilterByPath) isFilter()         {}
func (FilterByIds) isFilter()          {}
func (FilterNotGroupMember) isFilter() {}

// CloneFilters copies filters deep enough that later changes to the
// caller's slices do not reach the copy.
func CloneFilters(filters []Filter) []Filter {
	if filters == nil {
		return nil
	}
	out := make([]Filter, len(filters))
	for i, f := range filters {
		if ids, ok := f.(FilterByIds); ok {
			f = FilterByIds{Ids: append([]photo.Id(nil), ids.Ids...)}
		}
		out[i] = f
	}
	return out
}
