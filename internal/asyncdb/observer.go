package asyncdb

import (
	"sync"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
)

// Observer receives change notifications on the worker goroutine.
type Observer interface {
	PhotosAdded(ids []photo.Id)
	// PhotoModified passes the shared, already refreshed PhotoInfo.
	PhotoModified(info *catalog.PhotoInfo)
	PhotosRemoved(ids []photo.Id)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnPhotosAdded   func([]photo.Id)
	OnPhotoModified func(*catalog.PhotoInfo)
	OnPhotosRemoved func([]photo.Id)
}

func (o ObserverFuncs) PhotosAdded(ids []photo.Id) {
	if o.OnPhotosAdded != nil {
		o.OnPhotosAdded(ids)
	}
}

func (o ObserverFuncs) PhotoModified(info *catalog.PhotoInfo) {
	if o.OnPhotoModified != nil {
		o.OnPhotoModified(info)
	}
}

func (o ObserverFuncs) PhotosRemoved(ids []photo.Id) {
	if o.OnPhotosRemoved != nil {
		o.OnPhotosRemoved(ids)
	}
}

type observers struct {
	mu     sync.Mutex
	nextId int
	list   map[int]Observer
	order  []int
}

func (s *observers) add(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.list == nil {
		s.list = make(map[int]Observer)
	}
	s.nextId++
	id := s.nextId
	s.list[id] = o
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.list, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *observers) snapshot() []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.list[id])
	}
	return out
}

func (s *observers) photosAdded(ids []photo.Id) {
	for _, o := range s.snapshot() {
		o.PhotosAdded(append([]photo.Id(nil), ids...))
	}
}

func (s *observers) photoModified(info *catalog.PhotoInfo) {
	for _, o := range s.snapshot() {
		o.PhotoModified(info)
	}
}

func (s *observers) photosRemoved(ids []photo.Id) {
	for _, o := range s.snapshot() {
		o.PhotosRemoved(append([]photo.Id(nil), ids...))
	}
}
