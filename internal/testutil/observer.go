package testutil

import (
	"fmt"
	"sync"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
)

// RecordingObserver records asynchronous database notifications as
// strings: "added [1 2]", "modified 3", "removed [4]". Safe for concurrent
// use.
type RecordingObserver struct {
	mu     sync.Mutex
	events []string
	infos  []*catalog.PhotoInfo
}

func (r *RecordingObserver) PhotosAdded(ids []photo.Id) {
	r.record(fmt.Sprintf("added %v", ids), nil)
}

func (r *RecordingObserver) PhotoModified(info *catalog.PhotoInfo) {
	r.record(fmt.Sprintf("modified %d", info.Id()), info)
}

func (r *RecordingObserver) PhotosRemoved(ids []photo.Id) {
	r.record(fmt.Sprintf("removed %v", ids), nil)
}

func (r *RecordingObserver) record(event string, info *catalog.PhotoInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if info != nil {
		r.infos = append(r.infos, info)
	}
}

// Events returns the recorded notifications in order.
func (r *RecordingObserver) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Modified returns the PhotoInfo objects passed to PhotoModified.
func (r *RecordingObserver) Modified() []*catalog.PhotoInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*catalog.PhotoInfo(nil), r.infos...)
}
