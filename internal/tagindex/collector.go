// Package tagindex keeps the known values of every tag, for completion.
package tagindex

import (
	"slices"
	"sync"

	"photobroom/internal/asyncdb"
	"photobroom/internal/catalog"
	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

// Source is the part of the asynchronous database a Collector needs.
type Source interface {
	Subscribe(o asyncdb.Observer) (unsubscribe func())
	ListTagNames(cb asyncdb.Callback[[]tag.NameInfo]) error
	ListTagValues(name tag.NameInfo, filters []catalog.Filter, cb asyncdb.Callback[[]tag.Value]) error
}

// Collector caches the values of every tag and refreshes them whenever
// photos change. Readers may call Get from any goroutine.
type Collector struct {
	src         Source
	logger      catalog.Logger
	unsubscribe func()

	mu      sync.RWMutex
	idle    *sync.Cond
	pending int
	names   []tag.NameInfo
	values  map[string][]tag.Value
}

func New(src Source, logger catalog.Logger) *Collector {
	if logger == nil {
		logger = catalog.NewNopLogger()
	}
	c := &Collector{
		src:    src,
		logger: logger,
		values: make(map[string][]tag.Value),
	}
	c.idle = sync.NewCond(&c.mu)
	c.unsubscribe = src.Subscribe(asyncdb.ObserverFuncs{
		OnPhotoModified: func(info *catalog.PhotoInfo) {
			c.learn(info.Tags())
			c.refresh()
		},
		OnPhotosRemoved: func([]photo.Id) { c.refresh() },
	})
	return c
}

// Load fetches the tag names and then the values of each.
func (c *Collector) Load() error {
	c.begin()
	err := c.src.ListTagNames(func(r asyncdb.Result[[]tag.NameInfo]) {
		defer c.end()
		if r.Err != nil {
			c.logger.Error("loading tag names", "error", r.Err)
			return
		}
		c.mu.Lock()
		c.names = r.Value
		c.mu.Unlock()
		c.refresh()
	})
	if err != nil {
		c.end()
	}
	return err
}

// Wait blocks until every requested load has completed. It must not be
// called from a database callback.
func (c *Collector) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pending > 0 {
		c.idle.Wait()
	}
}

func (c *Collector) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending++
}

func (c *Collector) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
	if c.pending == 0 {
		c.idle.Broadcast()
	}
}

// Close stops following database changes.
func (c *Collector) Close() {
	c.unsubscribe()
}

// learn adds the tag names of tags not seen before.
func (c *Collector) learn(tags tag.Tags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range tags.Names() {
		known := slices.ContainsFunc(c.names, func(k tag.NameInfo) bool { return k.Name == n.Name })
		if !known {
			c.names = append(c.names, n)
		}
	}
}

// Names returns the tag names known at the last Load plus those seen on
// modified photos since.
func (c *Collector) Names() []tag.NameInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.names)
}

// Get returns the sorted values of tag name.
func (c *Collector) Get(name string) []tag.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.values[name])
}

func (c *Collector) refresh() {
	for _, name := range c.Names() {
		c.begin()
		err := c.src.ListTagValues(name, nil, func(r asyncdb.Result[[]tag.Value]) {
			defer c.end()
			if r.Err != nil {
				c.logger.Error("loading tag values", "tag", name.Name, "error", r.Err)
				return
			}
			values := r.Value
			tag.SortValues(values)

			c.mu.Lock()
			c.values[name.Name] = values
			c.mu.Unlock()
		})
		if err != nil {
			c.end()
			c.logger.Warn("tag values not refreshed", "tag", name.Name, "error", err)
			return
		}
	}
}
