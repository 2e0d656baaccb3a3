package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"photobroom/internal/asyncdb"
	"photobroom/internal/catalog"
	"photobroom/internal/config"
	"photobroom/internal/database"
	"photobroom/internal/fs"
	"photobroom/internal/photo"
	"photobroom/internal/tag"
	"photobroom/internal/tagindex"
	"photobroom/internal/taskexec"
)

// App is the application layer between the CLI and the catalog.
// It constructs all dependencies from config, exposes high-level operations
// that block until the database worker answered, and shuts everything down
// on Close.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	logFile  io.Closer
	registry *prometheus.Registry
	db       *asyncdb.Database
	tasks    *taskexec.Executor
	tags     *tagindex.Collector
	crawler  *fs.Crawler
}

// New creates a fully wired App from the given config and opens the
// catalog. sessionID tags every log line of this run. The caller must call
// Close when done.
func New(cfg *config.Config, sessionID string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, logFile, err := newLogger(cfg.Log, sessionID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

func newApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.Database.Type == "sqlite" {
		if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	backend, info, err := database.NewBackendFromConfig(cfg.Database, cfg.Project.Name,
		database.WithLogger(logger.With("component", "database")))
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	registry := prometheus.NewRegistry()
	db := asyncdb.New(backend,
		asyncdb.WithLogger(logger.With("component", "asyncdb")),
		asyncdb.WithMetrics(registry))

	status, err := await(func(cb asyncdb.Callback[catalog.BackendStatus]) error {
		return db.Init(info, cb)
	})
	if err != nil {
		db.Stop()
		return nil, fmt.Errorf("opening catalog %s (%s): %w", info.Path, status, err)
	}
	logger.Info("catalog opened", "project", info.Name, "backend", info.Backend)

	tasks := taskexec.New(
		taskexec.WithWorkers(cfg.Executor.Workers),
		taskexec.WithQueueSize(cfg.Executor.QueueSize),
		taskexec.WithLogger(logger.With("component", "taskexec")),
		taskexec.WithMetrics(registry))

	tags := tagindex.New(db, logger.With("component", "tagindex"))
	if err := tags.Load(); err != nil {
		tags.Close()
		tasks.Stop()
		db.Stop()
		return nil, fmt.Errorf("loading tag index: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		db:       db,
		tasks:    tasks,
		tags:     tags,
		crawler:  fs.NewCrawler(cfg.Import.Ignore),
	}, nil
}

// await enqueues an operation and blocks until its callback ran.
func await[T any](enqueue func(cb asyncdb.Callback[T]) error) (T, error) {
	cb, ch := asyncdb.Await[T]()
	if err := enqueue(cb); err != nil {
		var zero T
		return zero, err
	}
	r := <-ch
	return r.Value, r.Err
}

// Metrics exposes the worker and task pool metrics.
func (a *App) Metrics() prometheus.Gatherer { return a.registry }

// AddPhotos finds the images under rawPaths, stores those not yet in the
// catalog as staged photos and records their checksums.
// Returns the ids of the new photos.
func (a *App) AddPhotos(rawPaths []string, recursive bool) ([]photo.Id, error) {
	found, err := a.findPhotos(rawPaths, recursive)
	if err != nil {
		return nil, err
	}

	known, err := await(func(cb asyncdb.Callback[[]*catalog.PhotoInfo]) error {
		return a.db.ListPhotos(nil, cb)
	})
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	stored := make(map[string]bool, len(known))
	for _, info := range known {
		stored[info.Path()] = true
	}

	var paths []string
	for _, p := range found {
		if !stored[p] {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}

	ids, err := await(func(cb asyncdb.Callback[[]photo.Id]) error {
		return a.db.Store(paths, cb)
	})
	if err != nil {
		return nil, fmt.Errorf("storing photos: %w", err)
	}
	a.logger.Info("photos added", "count", len(ids))

	if err := a.loadChecksums(ids); err != nil {
		return ids, err
	}
	return ids, nil
}

// findPhotos crawls every path on the task pool.
func (a *App) findPhotos(rawPaths []string, recursive bool) ([]string, error) {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		found []string
		errs  []error
	)

	for _, raw := range rawPaths {
		wg.Add(1)
		err := a.tasks.Add(taskexec.TaskFunc{Label: "crawl", Fn: func() {
			defer wg.Done()
			photos, err := a.crawler.FindPhotos(raw, recursive)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("crawling %s: %w", raw, err))
				return
			}
			found = append(found, photos...)
		}})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	slices.Sort(found)
	return slices.Compact(found), nil
}

// loadChecksums hashes the photo files on the task pool and stores the
// results.
func (a *App) loadChecksums(ids []photo.Id) error {
	infos, err := await(func(cb asyncdb.Callback[[]*catalog.PhotoInfo]) error {
		return a.db.GetPhotosByIds(ids, cb)
	})
	if err != nil {
		return fmt.Errorf("loading photos: %w", err)
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}

	for _, info := range infos {
		wg.Add(1)
		err := a.tasks.Add(taskexec.TaskFunc{Label: "checksum", Fn: func() {
			sum, err := fs.Checksum(info.Path())
			if err != nil {
				fail(err)
				wg.Done()
				return
			}

			data := info.Data()
			flags := data.Flags.Clone()
			if flags == nil {
				flags = photo.Flags{}
			}
			flags[photo.ChecksumLoaded] = 1

			delta := photo.NewDataDelta(data.Id)
			delta.SetChecksum(sum)
			delta.SetFlags(flags)
			err = a.db.Update(delta, func(r asyncdb.Result[struct{}]) {
				defer wg.Done()
				if r.Err != nil {
					fail(fmt.Errorf("storing checksum of photo %d: %w", data.Id, r.Err))
				}
			})
			if err != nil {
				fail(err)
				wg.Done()
			}
		}})
		if err != nil {
			fail(err)
			wg.Done()
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

// ListPhotos returns snapshots of the photos matching filters.
func (a *App) ListPhotos(filters []catalog.Filter) ([]photo.Data, error) {
	infos, err := await(func(cb asyncdb.Callback[[]*catalog.PhotoInfo]) error {
		return a.db.ListPhotos(filters, cb)
	})
	if err != nil {
		return nil, err
	}
	out := make([]photo.Data, len(infos))
	for i, info := range infos {
		out[i] = info.Data()
	}
	return out, nil
}

func (a *App) CountPhotos(filters []catalog.Filter) (int, error) {
	return await(func(cb asyncdb.Callback[int]) error {
		return a.db.CountPhotos(filters, cb)
	})
}

func (a *App) photo(id photo.Id) (*catalog.PhotoInfo, error) {
	infos, err := await(func(cb asyncdb.Callback[[]*catalog.PhotoInfo]) error {
		return a.db.GetPhotosByIds([]photo.Id{id}, cb)
	})
	if err != nil {
		return nil, err
	}
	return infos[0], nil
}

func (a *App) update(delta photo.DataDelta) error {
	_, err := await(func(cb asyncdb.Callback[struct{}]) error {
		return a.db.Update(delta, cb)
	})
	return err
}

// ParseTagValue reads raw as a value of tag name. List tags take comma
// separated elements.
func ParseTagValue(name tag.NameInfo, raw string) (tag.Value, error) {
	if name.Type != tag.List {
		return tag.Parse(name.Type, raw)
	}
	var elems []tag.Value
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			elems = append(elems, tag.NewString(part))
		}
	}
	return tag.NewList(elems...), nil
}

// SetTag sets tag name of photo id to the parsed raw value.
func (a *App) SetTag(id photo.Id, name, raw string) error {
	info, err := a.photo(id)
	if err != nil {
		return err
	}
	nameInfo := tag.Lookup(name)
	value, err := ParseTagValue(nameInfo, raw)
	if err != nil {
		return err
	}

	tags := info.Tags()
	if tags == nil {
		tags = tag.Tags{}
	}
	for n := range tags {
		if n.Name == name {
			delete(tags, n)
		}
	}
	tags[nameInfo] = value

	delta := photo.NewDataDelta(id)
	delta.SetTags(tags)
	return a.update(delta)
}

// RemoveTag drops tag name from photo id.
func (a *App) RemoveTag(id photo.Id, name string) error {
	info, err := a.photo(id)
	if err != nil {
		return err
	}

	tags := info.Tags()
	found := false
	for n := range tags {
		if n.Name == name {
			delete(tags, n)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("photo %d has no tag %s", id, name)
	}

	delta := photo.NewDataDelta(id)
	delta.SetTags(tags)
	return a.update(delta)
}

func (a *App) TagNames() ([]tag.NameInfo, error) {
	return await(func(cb asyncdb.Callback[[]tag.NameInfo]) error {
		return a.db.ListTagNames(cb)
	})
}

// TagValues returns the known values of tag name. The index follows every
// change made through the App.
func (a *App) TagValues(name string) []tag.Value {
	a.tags.Wait()
	return a.tags.Get(name)
}

// CreateGroup groups members under rep.
func (a *App) CreateGroup(rep photo.Id, members []photo.Id, t photo.GroupType) (photo.GroupId, error) {
	gid, err := await(func(cb asyncdb.Callback[photo.GroupId]) error {
		return a.db.CreateGroup(rep, t, cb)
	})
	if err != nil {
		return photo.InvalidGroupId, fmt.Errorf("creating group: %w", err)
	}

	for _, id := range members {
		delta := photo.NewDataDelta(id)
		delta.SetGroupInfo(photo.GroupInfo{GroupId: gid, Role: photo.Member, Type: t})
		if err := a.update(delta); err != nil {
			return gid, fmt.Errorf("adding photo %d to group %d: %w", id, gid, err)
		}
	}
	return gid, nil
}

// RemoveGroup dissolves gid and returns its former representative.
func (a *App) RemoveGroup(gid photo.GroupId) (photo.Id, error) {
	return await(func(cb asyncdb.Callback[photo.Id]) error {
		return a.db.RemoveGroup(gid, cb)
	})
}

func (a *App) RemovePhotos(ids []photo.Id) error {
	_, err := await(func(cb asyncdb.Callback[struct{}]) error {
		return a.db.RemovePhotos(ids, cb)
	})
	return err
}

// Review marks every staged photo as reviewed.
func (a *App) Review() ([]photo.Id, error) {
	return await(func(cb asyncdb.Callback[[]photo.Id]) error {
		return a.db.MarkStagedAsReviewed(cb)
	})
}

func (a *App) ChangeLog() ([]string, error) {
	return await(func(cb asyncdb.Callback[[]string]) error {
		return a.db.ChangeLog(cb)
	})
}

func (a *App) People() ([]catalog.Person, error) {
	return await(func(cb asyncdb.Callback[[]catalog.Person]) error {
		return a.db.ListPeople(cb)
	})
}

func (a *App) AddPerson(name string) (catalog.Person, error) {
	return await(func(cb asyncdb.Callback[catalog.Person]) error {
		return a.db.StorePerson(name, cb)
	})
}

// Close stops the task pool and the database worker and closes the log.
func (a *App) Close() error {
	a.tags.Close()
	a.tasks.Stop()
	a.db.Stop()

	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
