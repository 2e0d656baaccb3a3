package testutil

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

// ErrFakeFailure is returned by FakeBackend methods listed in Fail.
var ErrFakeFailure = errors.New("fake backend failure")

// FakeBackend is an in-memory catalog.Backend recording every call.
// Filters other than FilterByIds and FilterByFlag are ignored.
type FakeBackend struct {
	mu sync.Mutex

	fail    map[string]bool
	initErr error
	calls   []string
	closed  int
	photos  map[photo.Id]photo.Data
	nextId  photo.Id
	nextGid photo.GroupId
	groups  map[photo.GroupId]photo.GroupType
	people  []catalog.Person
	events  catalog.Events
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		fail:   make(map[string]bool),
		photos: make(map[photo.Id]photo.Data),
		groups: make(map[photo.GroupId]photo.GroupType),
	}
}

// FailOn makes the named method return ErrFakeFailure.
func (f *FakeBackend) FailOn(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method] = true
}

// FailInit makes Init return err.
func (f *FakeBackend) FailInit(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initErr = err
}

// Calls returns the invoked method names in order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Closed reports how many times Close ran.
func (f *FakeBackend) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Photo returns the stored record of id.
func (f *FakeBackend) Photo(id photo.Id) (photo.Data, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.photos[id]
	return d.Clone(), ok
}

// enter records a call and reports the configured failure, if any.
// The lock is held on return.
func (f *FakeBackend) enter(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return fmt.Errorf("%s: %w", name, ErrFakeFailure)
	}
	return nil
}

func (f *FakeBackend) Init(catalog.ProjectInfo) error {
	err := f.enter("Init")
	defer f.mu.Unlock()
	if err != nil {
		return catalog.NewStatusError(catalog.StatusGeneralError, err)
	}
	return f.initErr
}

func (f *FakeBackend) Close() error {
	f.enter("Close")
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *FakeBackend) AddPhotos(deltas []photo.DataDelta) error {
	err := f.enter("AddPhotos")
	if err != nil {
		f.mu.Unlock()
		return err
	}
	ids := make([]photo.Id, len(deltas))
	for i := range deltas {
		f.nextId++
		deltas[i].SetId(f.nextId)
		var d photo.Data
		f.photos[f.nextId] = *d.Apply(deltas[i])
		ids[i] = f.nextId
	}
	f.mu.Unlock()

	f.events.EmitPhotosAdded(ids)
	return nil
}

func (f *FakeBackend) Update(delta photo.DataDelta) error {
	err := f.enter("Update")
	if err == nil {
		d, ok := f.photos[delta.Id()]
		if !ok {
			err = fmt.Errorf("photo %d not found", delta.Id())
		} else {
			f.photos[delta.Id()] = *d.Apply(delta)
		}
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}

	f.events.EmitPhotoModified(delta.Id())
	return nil
}

func (f *FakeBackend) GetPhoto(id photo.Id) (photo.Data, error) {
	err := f.enter("GetPhoto")
	defer f.mu.Unlock()
	if err != nil {
		return photo.Data{}, err
	}
	d, ok := f.photos[id]
	if !ok {
		return photo.Data{}, fmt.Errorf("photo %d not found", id)
	}
	return d.Clone(), nil
}

func (f *FakeBackend) GetPhotos(filters []catalog.Filter) ([]photo.Id, error) {
	err := f.enter("GetPhotos")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.matching(filters), nil
}

func (f *FakeBackend) GetPhotosCount(filters []catalog.Filter) (int, error) {
	err := f.enter("GetPhotosCount")
	defer f.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return len(f.matching(filters)), nil
}

func (f *FakeBackend) matching(filters []catalog.Filter) []photo.Id {
	var ids []photo.Id
photos:
	for id, d := range f.photos {
		for _, filter := range filters {
			switch filter := filter.(type) {
			case catalog.FilterByIds:
				if !slices.Contains(filter.Ids, id) {
					continue photos
				}
			case catalog.FilterByFlag:
				if d.Flag(filter.Flag) != filter.Value {
					continue photos
				}
			}
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *FakeBackend) ListTags() ([]tag.NameInfo, error) {
	err := f.enter("ListTags")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return tag.BaseNames(), nil
}

func (f *FakeBackend) ListTagValues(name tag.NameInfo, filters []catalog.Filter) ([]tag.Value, error) {
	err := f.enter("ListTagValues")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var values []tag.Value
	add := func(v tag.Value) {
		for _, known := range values {
			if known.Equal(v) {
				return
			}
		}
		values = append(values, v)
	}
	for _, id := range f.matching(filters) {
		v, ok := f.photos[id].Tags.Get(name.Name)
		if !ok {
			continue
		}
		if elems, err := v.List(); err == nil {
			for _, e := range elems {
				add(e)
			}
			continue
		}
		add(v)
	}
	tag.SortValues(values)
	return values, nil
}

func (f *FakeBackend) MarkStagedAsReviewed() ([]photo.Id, error) {
	err := f.enter("MarkStagedAsReviewed")
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	ids := f.matching([]catalog.Filter{catalog.FilterByFlag{Flag: photo.Staged, Value: 1}})
	for _, id := range ids {
		d := f.photos[id]
		d.Flags = d.Flags.Clone()
		d.Flags[photo.Staged] = 0
		f.photos[id] = d
	}
	f.mu.Unlock()

	for _, id := range ids {
		f.events.EmitPhotoModified(id)
	}
	return ids, nil
}

func (f *FakeBackend) StorePerson(name string) (catalog.Person, error) {
	err := f.enter("StorePerson")
	defer f.mu.Unlock()
	if err != nil {
		return catalog.Person{}, err
	}
	for _, p := range f.people {
		if p.Name == name {
			return p, nil
		}
	}
	p := catalog.Person{Id: catalog.PersonId(len(f.people) + 1), Name: name}
	f.people = append(f.people, p)
	return p, nil
}

func (f *FakeBackend) ListPeople() ([]catalog.Person, error) {
	err := f.enter("ListPeople")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := slices.Clone(f.people)
	slices.SortFunc(out, func(a, b catalog.Person) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *FakeBackend) GroupOperator() catalog.GroupOperator         { return fakeGroups{f} }
func (f *FakeBackend) PhotoOperator() catalog.PhotoOperator         { return fakePhotos{f} }
func (f *FakeBackend) ChangeLogOperator() catalog.ChangeLogOperator { return fakeLog{f} }
func (f *FakeBackend) Events() *catalog.Events                      { return &f.events }

type fakeGroups struct{ f *FakeBackend }

func (g fakeGroups) AddGroup(rep photo.Id, t photo.GroupType) (photo.GroupId, error) {
	f := g.f
	err := f.enter("AddGroup")
	if err == nil {
		if _, ok := f.photos[rep]; !ok {
			err = fmt.Errorf("photo %d not found", rep)
		}
	}
	if err != nil {
		f.mu.Unlock()
		return photo.InvalidGroupId, err
	}
	f.nextGid++
	gid := f.nextGid
	f.groups[gid] = t
	d := f.photos[rep]
	d.Group = photo.GroupInfo{GroupId: gid, Role: photo.Representative, Type: t}
	f.photos[rep] = d
	f.mu.Unlock()

	f.events.EmitPhotoModified(rep)
	return gid, nil
}

func (g fakeGroups) RemoveGroup(gid photo.GroupId) (photo.Id, error) {
	f := g.f
	err := f.enter("RemoveGroup")
	if err == nil {
		if _, ok := f.groups[gid]; !ok {
			err = fmt.Errorf("group %d not found", gid)
		}
	}
	if err != nil {
		f.mu.Unlock()
		return photo.InvalidId, err
	}
	delete(f.groups, gid)

	rep := photo.InvalidId
	var changed []photo.Id
	for id, d := range f.photos {
		if d.Group.GroupId != gid {
			continue
		}
		if d.Group.Role == photo.Representative {
			rep = id
		}
		d.Group = photo.GroupInfo{}
		f.photos[id] = d
		changed = append(changed, id)
	}
	slices.Sort(changed)
	f.mu.Unlock()

	for _, id := range changed {
		f.events.EmitPhotoModified(id)
	}
	return rep, nil
}

func (g fakeGroups) Type(gid photo.GroupId) photo.GroupType {
	f := g.f
	f.enter("Type")
	defer f.mu.Unlock()
	return f.groups[gid]
}

type fakePhotos struct{ f *FakeBackend }

func (p fakePhotos) RemovePhotos(ids []photo.Id) error {
	f := p.f
	err := f.enter("RemovePhotos")
	if err != nil {
		f.mu.Unlock()
		return err
	}
	for _, id := range ids {
		delete(f.photos, id)
	}
	f.mu.Unlock()

	f.events.EmitPhotosRemoved(ids)
	return nil
}

type fakeLog struct{ f *FakeBackend }

func (l fakeLog) Entries() ([]catalog.ChangeLogEntry, error) {
	err := l.f.enter("Entries")
	defer l.f.mu.Unlock()
	return nil, err
}

// DumpChangeLog returns the recorded method calls, one per line.
func (l fakeLog) DumpChangeLog() ([]string, error) {
	err := l.f.enter("DumpChangeLog")
	defer l.f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return slices.Clone(l.f.calls), nil
}
