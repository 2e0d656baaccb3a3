package catalog

import (
	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

// Backend is the contract a storage engine implements. Every method is
// called from the single goroutine that owns the connection; implementations
// may assume no concurrent invocation.
type Backend interface {
	// Init opens the catalog described by info. Failures carry a
	// StatusError; see StatusOf.
	Init(info ProjectInfo) error

	// Close releases the connection. Calling Close twice is allowed.
	Close() error

	// AddPhotos stores new photos and assigns their ids in place.
	AddPhotos(deltas []photo.DataDelta) error

	// Update writes the fields present in delta to an existing photo.
	Update(delta photo.DataDelta) error

	// GetPhoto loads the complete record of one photo.
	GetPhoto(id photo.Id) (photo.Data, error)

	// GetPhotos returns the ids of photos matching every filter, ordered by id.
	GetPhotos(filters []Filter) ([]photo.Id, error)

	// GetPhotosCount returns the number of photos matching every filter.
	GetPhotosCount(filters []Filter) (int, error)

	// ListTags returns every known tag name, ordered by name.
	ListTags() ([]tag.NameInfo, error)

	// ListTagValues returns the distinct values of tag name among photos
	// matching filters. List tags contribute each element separately.
	ListTagValues(name tag.NameInfo, filters []Filter) ([]tag.Value, error)

	// MarkStagedAsReviewed clears the staged flag on every staged photo
	// and returns the affected ids.
	MarkStagedAsReviewed() ([]photo.Id, error)

	// StorePerson records a person, returning the existing entry when the
	// name is already known.
	StorePerson(name string) (Person, error)

	// ListPeople returns every known person ordered by name.
	ListPeople() ([]Person, error)

	GroupOperator() GroupOperator
	PhotoOperator() PhotoOperator
	ChangeLogOperator() ChangeLogOperator

	// Events is the notification hub the backend emits to after each
	// successful mutation.
	Events() *Events
}

// GroupOperator runs the transactional group operations.
type GroupOperator interface {
	// AddGroup creates a group represented by rep. On failure the returned
	// id is invalid and no notification is emitted.
	AddGroup(rep photo.Id, t photo.GroupType) (photo.GroupId, error)

	// RemoveGroup deletes a group and all of its memberships, returning the
	// former representative. On failure nothing changes, the returned id is
	// invalid and no notification is emitted.
	RemoveGroup(gid photo.GroupId) (photo.Id, error)

	// Type returns the type of gid, InvalidGroup when it does not exist.
	Type(gid photo.GroupId) photo.GroupType
}

// PhotoOperator runs the transactional photo operations.
type PhotoOperator interface {
	// RemovePhotos deletes photos and every row referencing them as one unit.
	RemovePhotos(ids []photo.Id) error
}

// ChangeLogOperator reads the photo change log.
type ChangeLogOperator interface {
	// Entries returns the log in insertion order.
	Entries() ([]ChangeLogEntry, error)

	// DumpChangeLog returns the log rendered one line per entry.
	DumpChangeLog() ([]string, error)
}

// PersonId identifies a person.
type PersonId int64

// Person is someone who can appear in photos.
type Person struct {
	Id   PersonId
	Name string
}
