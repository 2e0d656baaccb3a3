package asyncdb

import (
	"photobroom/internal/catalog"
	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

// Every operation returns ErrStopped when the database no longer accepts
// work. A nil callback discards the result.

// Init opens the catalog. The result carries the backend status.
func (d *Database) Init(info catalog.ProjectInfo, cb Callback[catalog.BackendStatus]) error {
	return d.enqueue("init", func(w *worker) error {
		err := w.backend.Init(info)
		status := catalog.StatusOf(err)
		if cb != nil {
			cb(Result[catalog.BackendStatus]{Value: status, Err: err})
		}
		return err
	})
}

// Store adds new staged photos for paths and reports their ids in order.
func (d *Database) Store(paths []string, cb Callback[[]photo.Id]) error {
	return d.enqueue("store", func(w *worker) error {
		deltas := make([]photo.DataDelta, len(paths))
		for i, p := range paths {
			deltas[i] = photo.NewDataDelta(photo.InvalidId)
			deltas[i].SetPath(p)
			deltas[i].SetFlag(photo.Staged, 1)
		}

		err := w.backend.AddPhotos(deltas)
		var ids []photo.Id
		if err == nil {
			ids = make([]photo.Id, len(deltas))
			for i, delta := range deltas {
				ids[i] = delta.Id()
				if _, ok := w.cache.Find(ids[i]); !ok {
					var data photo.Data
					w.cache.Introduce(catalog.NewPhotoInfo(*data.Apply(delta)))
				}
			}
		}
		complete(cb, ids, err)
		return err
	})
}

// Update writes delta to its photo. Observers learn about the change.
func (d *Database) Update(delta photo.DataDelta, cb Callback[struct{}]) error {
	return d.enqueue("update", func(w *worker) error {
		err := w.backend.Update(delta)
		complete(cb, struct{}{}, err)
		return err
	})
}

// CreateGroup makes rep the representative of a new group.
func (d *Database) CreateGroup(rep photo.Id, t photo.GroupType, cb Callback[photo.GroupId]) error {
	return d.enqueue("create_group", func(w *worker) error {
		gid, err := w.backend.GroupOperator().AddGroup(rep, t)
		complete(cb, gid, err)
		return err
	})
}

// RemoveGroup dissolves gid and reports its former representative.
func (d *Database) RemoveGroup(gid photo.GroupId, cb Callback[photo.Id]) error {
	return d.enqueue("remove_group", func(w *worker) error {
		rep, err := w.backend.GroupOperator().RemoveGroup(gid)
		complete(cb, rep, err)
		return err
	})
}

func (d *Database) RemovePhotos(ids []photo.Id, cb Callback[struct{}]) error {
	ids = append([]photo.Id(nil), ids...)
	return d.enqueue("remove_photos", func(w *worker) error {
		err := w.backend.PhotoOperator().RemovePhotos(ids)
		complete(cb, struct{}{}, err)
		return err
	})
}

func (d *Database) CountPhotos(filters []catalog.Filter, cb Callback[int]) error {
	filters = catalog.CloneFilters(filters)
	return d.enqueue("count_photos", func(w *worker) error {
		n, err := w.backend.GetPhotosCount(filters)
		complete(cb, n, err)
		return err
	})
}

// GetPhotosByIds returns the shared PhotoInfo of every id, in order.
// The call fails as a whole when any id is unknown.
func (d *Database) GetPhotosByIds(ids []photo.Id, cb Callback[[]*catalog.PhotoInfo]) error {
	ids = append([]photo.Id(nil), ids...)
	return d.enqueue("get_photos", func(w *worker) error {
		infos, err := w.photosFor(ids)
		complete(cb, infos, err)
		return err
	})
}

// ListPhotos returns the photos matching filters, ordered by id.
func (d *Database) ListPhotos(filters []catalog.Filter, cb Callback[[]*catalog.PhotoInfo]) error {
	filters = catalog.CloneFilters(filters)
	return d.enqueue("list_photos", func(w *worker) error {
		ids, err := w.backend.GetPhotos(filters)
		var infos []*catalog.PhotoInfo
		if err == nil {
			infos, err = w.photosFor(ids)
		}
		complete(cb, infos, err)
		return err
	})
}

func (d *Database) ListTagNames(cb Callback[[]tag.NameInfo]) error {
	return d.enqueue("list_tag_names", func(w *worker) error {
		names, err := w.backend.ListTags()
		complete(cb, names, err)
		return err
	})
}

func (d *Database) ListTagValues(name tag.NameInfo, filters []catalog.Filter, cb Callback[[]tag.Value]) error {
	filters = catalog.CloneFilters(filters)
	return d.enqueue("list_tag_values", func(w *worker) error {
		values, err := w.backend.ListTagValues(name, filters)
		complete(cb, values, err)
		return err
	})
}

// MarkStagedAsReviewed clears the staged flag and reports the affected ids.
func (d *Database) MarkStagedAsReviewed(cb Callback[[]photo.Id]) error {
	return d.enqueue("mark_reviewed", func(w *worker) error {
		ids, err := w.backend.MarkStagedAsReviewed()
		complete(cb, ids, err)
		return err
	})
}

// ChangeLog reports the rendered change log.
func (d *Database) ChangeLog(cb Callback[[]string]) error {
	return d.enqueue("change_log", func(w *worker) error {
		lines, err := w.backend.ChangeLogOperator().DumpChangeLog()
		complete(cb, lines, err)
		return err
	})
}

func (d *Database) ListPeople(cb Callback[[]catalog.Person]) error {
	return d.enqueue("list_people", func(w *worker) error {
		people, err := w.backend.ListPeople()
		complete(cb, people, err)
		return err
	})
}

func (d *Database) StorePerson(name string, cb Callback[catalog.Person]) error {
	return d.enqueue("store_person", func(w *worker) error {
		p, err := w.backend.StorePerson(name)
		complete(cb, p, err)
		return err
	})
}
