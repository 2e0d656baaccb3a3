package photo

import (
	"fmt"

	"photobroom/internal/tag"
)

// Field names one part of a photo record.
type Field int

const (
	FieldPath Field = iota
	FieldTags
	FieldGeometry
	FieldChecksum
	FieldFlags
	FieldGroupInfo
)

func (f Field) String() string {
	switch f {
	case FieldPath:
		return "path"
	case FieldTags:
		return "tags"
	case FieldGeometry:
		return "geometry"
	case FieldChecksum:
		return "checksum"
	case FieldFlags:
		return "flags"
	case FieldGroupInfo:
		return "group_info"
	default:
		return fmt.Sprintf("field_%d", int(f))
	}
}

// DataDelta is a sparse patch of a photo record: an id plus the fields that
// changed. Maps stored in a delta are copied on the way in and out.
type DataDelta struct {
	id     Id
	fields map[Field]any
}

func NewDataDelta(id Id) DataDelta {
	return DataDelta{id: id}
}

// DeltaOf returns a delta carrying every field of d.
func DeltaOf(d Data) DataDelta {
	delta := NewDataDelta(d.Id)
	delta.SetPath(d.Path)
	delta.SetTags(d.Tags)
	delta.SetGeometry(d.Geometry)
	delta.SetChecksum(d.Checksum)
	delta.SetFlags(d.Flags)
	delta.SetGroupInfo(d.Group)
	return delta
}

func (d DataDelta) Id() Id { return d.id }

// SetId assigns the id. Assigning an id twice is a programming error.
func (d *DataDelta) SetId(id Id) {
	if d.id.Valid() {
		panic(fmt.Sprintf("photo: delta id already set to %d", d.id))
	}
	d.id = id
}

func (d DataDelta) Has(f Field) bool {
	_, ok := d.fields[f]
	return ok
}

// Fields returns the fields present in d in Field order.
func (d DataDelta) Fields() []Field {
	var out []Field
	for f := FieldPath; f <= FieldGroupInfo; f++ {
		if d.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Empty reports whether d carries no fields.
func (d DataDelta) Empty() bool { return len(d.fields) == 0 }

// Clear drops the id and every field.
func (d *DataDelta) Clear() {
	d.id = InvalidId
	d.fields = nil
}

// set never writes into the current map: copies of a delta share it.
func (d *DataDelta) set(f Field, v any) {
	fields := d.copyFields()
	fields[f] = v
	d.fields = fields
}

func (d *DataDelta) copyFields() map[Field]any {
	fields := make(map[Field]any, len(d.fields)+1)
	for k, v := range d.fields {
		fields[k] = v
	}
	return fields
}

func (d *DataDelta) SetPath(p string)         { d.set(FieldPath, p) }
func (d *DataDelta) SetTags(t tag.Tags)       { d.set(FieldTags, t.Clone()) }
func (d *DataDelta) SetGeometry(g Geometry)   { d.set(FieldGeometry, g) }
func (d *DataDelta) SetChecksum(sum string)   { d.set(FieldChecksum, sum) }
func (d *DataDelta) SetFlags(f Flags)         { d.set(FieldFlags, f.Clone()) }
func (d *DataDelta) SetGroupInfo(g GroupInfo) { d.set(FieldGroupInfo, g) }

// SetFlag sets a single flag, keeping the other flags already in d.
func (d *DataDelta) SetFlag(f Flag, value int) {
	flags, _ := d.Flags()
	if flags == nil {
		flags = Flags{}
	}
	flags[f] = value
	d.set(FieldFlags, flags)
}

func (d DataDelta) Path() (string, bool) {
	v, ok := d.fields[FieldPath].(string)
	return v, ok
}

func (d DataDelta) Tags() (tag.Tags, bool) {
	v, ok := d.fields[FieldTags].(tag.Tags)
	if !ok {
		return nil, false
	}
	if v == nil {
		return tag.Tags{}, true
	}
	return v.Clone(), true
}

func (d DataDelta) Geometry() (Geometry, bool) {
	v, ok := d.fields[FieldGeometry].(Geometry)
	return v, ok
}

func (d DataDelta) Checksum() (string, bool) {
	v, ok := d.fields[FieldChecksum].(string)
	return v, ok
}

func (d DataDelta) Flags() (Flags, bool) {
	v, ok := d.fields[FieldFlags].(Flags)
	if !ok {
		return nil, false
	}
	if v == nil {
		return Flags{}, true
	}
	return v.Clone(), true
}

func (d DataDelta) GroupInfo() (GroupInfo, bool) {
	v, ok := d.fields[FieldGroupInfo].(GroupInfo)
	return v, ok
}

// Merge folds other into d (the |= operation). The ids must match unless d
// has none; d takes other's id. Flags present on both sides are unioned with
// other winning on conflicting keys; every other field of other replaces the
// one in d.
func (d *DataDelta) Merge(other DataDelta) *DataDelta {
	if d.id.Valid() && d.id != other.id {
		panic(fmt.Sprintf("photo: merging delta of photo %d into delta of photo %d", other.id, d.id))
	}
	d.id = other.id

	for f, v := range other.fields {
		if f == FieldFlags && d.Has(FieldFlags) {
			flags := d.fields[FieldFlags].(Flags).Clone()
			if flags == nil {
				flags = Flags{}
			}
			for k, fv := range v.(Flags) {
				flags[k] = fv
			}
			d.set(FieldFlags, flags)
			continue
		}

		switch typed := v.(type) {
		case tag.Tags:
			d.set(f, typed.Clone())
		case Flags:
			d.set(f, typed.Clone())
		default:
			d.set(f, v)
		}
	}

	return d
}

// Less orders deltas by id.
func (d DataDelta) Less(other DataDelta) bool { return d.id < other.id }
