package tag

import "sort"

// Tags is the set of tags attached to a photo.
type Tags map[NameInfo]Value

// Clone returns a copy of t. A nil Tags clones to nil.
func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Names returns the tag names in t ordered by name.
func (t Tags) Names() []NameInfo {
	names := make([]NameInfo, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.Type < b.Type
	})
	return names
}

// Get returns the value stored under the tag called name.
func (t Tags) Get(name string) (Value, bool) {
	for n, v := range t {
		if n.Name == name {
			return v, true
		}
	}
	return Value{}, false
}

func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for n, v := range t {
		ov, ok := other[n]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ChangeKind classifies one entry of a Diff.
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Removed
)

// Change is one difference between two tag sets.
type Change struct {
	Kind ChangeKind
	Name NameInfo
	Old  Value
	New  Value
}

// Diff lists the changes turning old into new: every added tag, then every
// modified tag, then every removed tag, each group ordered by tag name.
// Tags are matched by Name alone. A modified tag keeps the NameInfo of old.
// Empty values and empty lists count as absent.
func Diff(old, new Tags) []Change {
	var added, modified, removed []Change

	before := old.byName()
	after := new.byName()

	for _, n := range new.Names() {
		cur, ok := after[n.Name]
		if !ok || cur.name != n {
			continue
		}
		prev, had := before[n.Name]
		switch {
		case !had:
			added = append(added, Change{Kind: Added, Name: n, New: cur.value})
		case !prev.value.Equal(cur.value):
			modified = append(modified, Change{Kind: Modified, Name: prev.name, Old: prev.value, New: cur.value})
		}
	}
	for _, n := range old.Names() {
		prev, ok := before[n.Name]
		if !ok || prev.name != n {
			continue
		}
		if _, ok := after[n.Name]; !ok {
			removed = append(removed, Change{Kind: Removed, Name: n, Old: prev.value})
		}
	}

	changes := make([]Change, 0, len(added)+len(modified)+len(removed))
	changes = append(changes, added...)
	changes = append(changes, modified...)
	return append(changes, removed...)
}

type namedValue struct {
	name  NameInfo
	value Value
}

// byName indexes the non-blank tags of t by Name. When two keys share a
// Name the first in Names order wins.
func (t Tags) byName() map[string]namedValue {
	out := make(map[string]namedValue, len(t))
	for _, n := range t.Names() {
		v := t[n]
		if _, dup := out[n.Name]; dup || v.blank() {
			continue
		}
		out[n.Name] = namedValue{name: n, value: v}
	}
	return out
}
