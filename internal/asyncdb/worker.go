package asyncdb

import (
	"fmt"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
)

// worker is the state owned by the worker goroutine.
type worker struct {
	backend   catalog.Backend
	cache     catalog.PhotoInfoCache
	logger    catalog.Logger
	observers *observers
}

// photoFor returns the cached PhotoInfo of id, loading it on first use.
func (w *worker) photoFor(id photo.Id) (*catalog.PhotoInfo, error) {
	if info, ok := w.cache.Find(id); ok {
		return info, nil
	}
	data, err := w.backend.GetPhoto(id)
	if err != nil {
		return nil, fmt.Errorf("loading photo %d: %w", id, err)
	}
	info := catalog.NewPhotoInfo(data)
	w.cache.Introduce(info)
	return info, nil
}

func (w *worker) photosFor(ids []photo.Id) ([]*catalog.PhotoInfo, error) {
	out := make([]*catalog.PhotoInfo, 0, len(ids))
	for _, id := range ids {
		info, err := w.photoFor(id)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// The methods below receive the backend's events.

func (w *worker) PhotosAdded(ids []photo.Id) {
	w.observers.photosAdded(ids)
}

func (w *worker) PhotoModified(id photo.Id) {
	info, ok := w.cache.Find(id)
	if ok {
		data, err := w.backend.GetPhoto(id)
		if err != nil {
			w.logger.Error("refreshing photo", "photo_id", id, "error", err)
			w.cache.Forget(id)
			return
		}
		info.Set(data)
	} else {
		var err error
		if info, err = w.photoFor(id); err != nil {
			w.logger.Error("loading modified photo", "photo_id", id, "error", err)
			return
		}
	}
	w.observers.photoModified(info)
}

func (w *worker) PhotosRemoved(ids []photo.Id) {
	for _, id := range ids {
		w.cache.Forget(id)
	}
	w.observers.photosRemoved(ids)
}
