package photo

import (
	"strconv"

	"photobroom/internal/tag"
)

// Id identifies a photo in the catalog.
type Id int64

// InvalidId is the id of a photo which has not been stored yet.
const InvalidId Id = 0

func (id Id) Valid() bool    { return id != InvalidId }
func (id Id) String() string { return strconv.FormatInt(int64(id), 10) }

// Flag names a per-photo processing flag.
// Values are persisted, do not renumber.
type Flag int

const (
	Staged Flag = iota
	ExifLoaded
	ChecksumLoaded
	ThumbnailLoaded
	GeometryLoaded
)

func (f Flag) String() string {
	switch f {
	case Staged:
		return "staged"
	case ExifLoaded:
		return "exif_loaded"
	case ChecksumLoaded:
		return "checksum_loaded"
	case ThumbnailLoaded:
		return "thumbnail_loaded"
	case GeometryLoaded:
		return "geometry_loaded"
	default:
		return "flag_" + strconv.Itoa(int(f))
	}
}

// Flags maps flags to their values. Missing flags read as 0.
type Flags map[Flag]int

func (f Flags) Clone() Flags {
	if f == nil {
		return nil
	}
	out := make(Flags, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f Flags) Equal(other Flags) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Geometry is the pixel size of a photo.
type Geometry struct {
	Width  int
	Height int
}

func (g Geometry) Valid() bool { return g.Width > 0 && g.Height > 0 }

// GroupId identifies a group of photos.
type GroupId int64

const InvalidGroupId GroupId = 0

func (id GroupId) Valid() bool    { return id != InvalidGroupId }
func (id GroupId) String() string { return strconv.FormatInt(int64(id), 10) }

// GroupType is the kind of a group.
type GroupType int

const (
	InvalidGroup GroupType = 0
	Animation    GroupType = 1
	HDR          GroupType = 2
)

func (t GroupType) String() string {
	switch t {
	case Animation:
		return "animation"
	case HDR:
		return "hdr"
	default:
		return "invalid"
	}
}

// Role is the part a photo plays in its group. The numeric values are the
// role codes written to the change log.
type Role int

const (
	NoRole         Role = 0
	Representative Role = 1
	Member         Role = 2
)

// GroupInfo describes the group membership of a photo.
type GroupInfo struct {
	GroupId GroupId
	Role    Role
	Type    GroupType
}

// Data is a complete catalog row.
type Data struct {
	Id       Id
	Path     string
	Tags     tag.Tags
	Geometry Geometry
	Checksum string
	Flags    Flags
	Group    GroupInfo
}

// Apply overwrites the id and every field present in delta. Tags and Flags
// are replaced as a whole.
func (d *Data) Apply(delta DataDelta) *Data {
	d.Id = delta.Id()

	if v, ok := delta.Path(); ok {
		d.Path = v
	}
	if v, ok := delta.Tags(); ok {
		d.Tags = v
	}
	if v, ok := delta.Geometry(); ok {
		d.Geometry = v
	}
	if v, ok := delta.Checksum(); ok {
		d.Checksum = v
	}
	if v, ok := delta.Flags(); ok {
		d.Flags = v
	}
	if v, ok := delta.GroupInfo(); ok {
		d.Group = v
	}

	return d
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	d.Tags = d.Tags.Clone()
	d.Flags = d.Flags.Clone()
	return d
}

// Flag returns the value of f, 0 when unset.
func (d Data) Flag(f Flag) int { return d.Flags[f] }

// Less orders photos by id.
func (d Data) Less(other Data) bool { return d.Id < other.Id }

// SameAs reports whether d and other describe the same photo.
func (d Data) SameAs(other Data) bool { return d.Id == other.Id }
