package catalog

import (
	"sync"

	"photobroom/internal/photo"
)

// Observer receives catalog change notifications. Methods are called
// synchronously by whoever emits the event.
type Observer interface {
	PhotosAdded(ids []photo.Id)
	PhotoModified(id photo.Id)
	PhotosRemoved(ids []photo.Id)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnPhotosAdded   func([]photo.Id)
	OnPhotoModified func(photo.Id)
	OnPhotosRemoved func([]photo.Id)
}

func (o ObserverFuncs) PhotosAdded(ids []photo.Id) {
	if o.OnPhotosAdded != nil {
		o.OnPhotosAdded(ids)
	}
}

func (o ObserverFuncs) PhotoModified(id photo.Id) {
	if o.OnPhotoModified != nil {
		o.OnPhotoModified(id)
	}
}

func (o ObserverFuncs) PhotosRemoved(ids []photo.Id) {
	if o.OnPhotosRemoved != nil {
		o.OnPhotosRemoved(ids)
	}
}

// Events fans notifications out to subscribed observers in subscription
// order. The zero value is ready to use.
type Events struct {
	mu        sync.Mutex
	nextId    int
	observers []subscription
}

type subscription struct {
	id       int
	observer Observer
}

// Subscribe registers o and returns a function removing it again.
func (e *Events) Subscribe(o Observer) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextId++
	id := e.nextId
	e.observers = append(e.observers, subscription{id: id, observer: o})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.observers {
			if s.id == id {
				e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// snapshot lets observers subscribe or unsubscribe while being notified.
func (e *Events) snapshot() []Observer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Observer, len(e.observers))
	for i, s := range e.observers {
		out[i] = s.observer
	}
	return out
}

func (e *Events) EmitPhotosAdded(ids []photo.Id) {
	if len(ids) == 0 {
		return
	}
	for _, o := range e.snapshot() {
		o.PhotosAdded(append([]photo.Id(nil), ids...))
	}
}

func (e *Events) EmitPhotoModified(id photo.Id) {
	for _, o := range e.snapshot() {
		o.PhotoModified(id)
	}
}

func (e *Events) EmitPhotosRemoved(ids []photo.Id) {
	if len(ids) == 0 {
		return
	}
	for _, o := range e.snapshot() {
		o.PhotosRemoved(append([]photo.Id(nil), ids...))
	}
}
