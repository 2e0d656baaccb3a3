package catalog

import (
	"sync"

	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

// PhotoInfo is the live in-memory representation of one photo. Exactly one
// PhotoInfo exists per id while the photo is cached; every holder shares it.
// Readers on any goroutine see a consistent snapshot.
type PhotoInfo struct {
	mu   sync.RWMutex
	data photo.Data
}

func NewPhotoInfo(data photo.Data) *PhotoInfo {
	return &PhotoInfo{data: data.Clone()}
}

func (p *PhotoInfo) Id() photo.Id {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Id
}

// Data returns a copy of the current record.
func (p *PhotoInfo) Data() photo.Data {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Clone()
}

func (p *PhotoInfo) Path() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Path
}

func (p *PhotoInfo) Tags() tag.Tags {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Tags.Clone()
}

func (p *PhotoInfo) Geometry() photo.Geometry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Geometry
}

func (p *PhotoInfo) Group() photo.GroupInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Group
}

func (p *PhotoInfo) Flag(f photo.Flag) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Flag(f)
}

// Set replaces the record. The id must not change.
func (p *PhotoInfo) Set(data photo.Data) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.data.SameAs(data) {
		panic("catalog: PhotoInfo id cannot change")
	}
	p.data = data.Clone()
}
