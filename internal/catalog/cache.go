package catalog

import (
	"fmt"

	"photobroom/internal/photo"
)

// PhotoInfoCache maps photo ids to their single live PhotoInfo.
// Implementations need not be safe for concurrent use: the cache belongs to
// the goroutine serving the backend.
type PhotoInfoCache interface {
	Find(id photo.Id) (*PhotoInfo, bool)
	// Introduce registers info. Introducing an id twice panics.
	Introduce(info *PhotoInfo)
	Forget(id photo.Id)
	Len() int
}

type photoInfoCache struct {
	entries map[photo.Id]*PhotoInfo
}

func NewPhotoInfoCache() PhotoInfoCache {
	return &photoInfoCache{entries: make(map[photo.Id]*PhotoInfo)}
}

func (c *photoInfoCache) Find(id photo.Id) (*PhotoInfo, bool) {
	info, ok := c.entries[id]
	return info, ok
}

func (c *photoInfoCache) Introduce(info *PhotoInfo) {
	id := info.Id()
	if _, ok := c.entries[id]; ok {
		panic(fmt.Sprintf("catalog: photo %d introduced twice", id))
	}
	c.entries[id] = info
}

func (c *photoInfoCache) Forget(id photo.Id) { delete(c.entries, id) }

func (c *photoInfoCache) Len() int { return len(c.entries) }
