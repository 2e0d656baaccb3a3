package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"photobroom/internal/catalog"
	"photobroom/internal/database/migrations"
	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

var (
	// ErrNotInitialized is returned by every operation before a successful Init.
	ErrNotInitialized = errors.New("database: backend not initialized")
	// ErrNotFound is returned when a photo or group does not exist.
	ErrNotFound = errors.New("database: not found")
)

// requiredTables must exist once migrations ran.
var requiredTables = []string{
	"photos", "tag_names", "tags", "flags", "geometry", "sha256sums",
	"groups", "groups_members", "people", "photos_change_log",
}

// Backend implements catalog.Backend on top of database/sql.
type Backend struct {
	dialect Dialect
	db      *sql.DB
	logger  catalog.Logger
	clock   catalog.Clock
	events  catalog.Events
	fault   func(statement string) error
}

var _ catalog.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

func WithLogger(l catalog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

func WithClock(c catalog.Clock) Option {
	return func(b *Backend) { b.clock = c }
}

// NewBackend creates a backend for dialect. No connection is made until Init.
func NewBackend(dialect Dialect, opts ...Option) *Backend {
	b := &Backend{
		dialect: dialect,
		logger:  catalog.NewNopLogger(),
		clock:   catalog.RealClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init opens the database at info.Path: a file path or ":memory:" for
// SQLite, a connection string for PostgreSQL. The schema is migrated when
// behind; a dirty schema or one newer than this binary is reported as
// StatusBadVersion.
func (b *Backend) Init(info catalog.ProjectInfo) error {
	if b.db != nil {
		return catalog.NewStatusError(catalog.StatusGeneralError, errors.New("backend already initialized"))
	}

	db, err := sql.Open(b.dialect.DriverName(), info.Path)
	if err != nil {
		return catalog.NewStatusError(catalog.StatusOpenFailed, fmt.Errorf("failed to open database: %w", err))
	}
	if err := b.dialect.Configure(db); err != nil {
		db.Close()
		return catalog.NewStatusError(catalog.StatusOpenFailed, err)
	}

	if err := b.migrate(db); err != nil {
		db.Close()
		return err
	}

	ex := executor{q: db, dialect: b.dialect, logger: b.logger}
	c := b.dialect.Constructor()
	for _, table := range requiredTables {
		var name string
		if err := ex.queryRow(c.FindTable(table), nil, &name); err != nil {
			db.Close()
			return catalog.NewStatusError(catalog.StatusGeneralError, fmt.Errorf("looking up table %s: %w", table, err))
		}
	}

	b.db = db
	b.logger.Info("catalog opened", "backend", b.dialect.Name(), "project", info.Name)
	return nil
}

func (b *Backend) migrate(db *sql.DB) error {
	driver := b.dialect.Migrations()

	err := migrations.CheckDBMigrationStatus(db, driver)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, migrations.ErrDirty), errors.Is(err, migrations.ErrAhead):
		return catalog.NewStatusError(catalog.StatusBadVersion, err)
	case errors.Is(err, migrations.ErrNoVersion), errors.Is(err, migrations.ErrBehind):
		b.logger.Info("migrating catalog schema", "reason", err.Error())
	default:
		return catalog.NewStatusError(catalog.StatusGeneralError, err)
	}

	if err := migrations.MigrateUp(db, driver); err != nil {
		return catalog.NewStatusError(catalog.StatusGeneralError, err)
	}
	return nil
}

// Close closes the connection. It may be called more than once.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *Backend) Events() *catalog.Events { return &b.events }

func (b *Backend) GroupOperator() catalog.GroupOperator         { return groupOperator{b: b} }
func (b *Backend) PhotoOperator() catalog.PhotoOperator         { return photoOperator{b: b} }
func (b *Backend) ChangeLogOperator() catalog.ChangeLogOperator { return changeLogOperator{b: b} }

func (b *Backend) executor(q querier) executor {
	return executor{q: q, dialect: b.dialect, logger: b.logger, fault: b.fault}
}

// conn returns an executor outside of any transaction.
func (b *Backend) conn() (executor, error) {
	if b.db == nil {
		return executor{}, ErrNotInitialized
	}
	return b.executor(b.db), nil
}

// withTx runs fn inside a transaction. The transaction is rolled back
// unless fn returns nil and the commit succeeds.
func (b *Backend) withTx(fn func(ex executor) error) error {
	if b.db == nil {
		return ErrNotInitialized
	}

	tx, err := b.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(b.executor(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AddPhotos stores every delta as a new photo and writes the assigned ids
// back into deltas. The batch is stored atomically.
func (b *Backend) AddPhotos(deltas []photo.DataDelta) error {
	ids := make([]photo.Id, len(deltas))

	err := b.withTx(func(ex executor) error {
		for i := range deltas {
			d := deltas[i]
			if d.Id().Valid() {
				return fmt.Errorf("photo %d is already stored", d.Id())
			}
			path, ok := d.Path()
			if !ok || path == "" {
				return errors.New("photo without path")
			}

			stmt := b.dialect.Constructor().Insert(insertPhoto)
			id, err := ex.insert(stmt, args{"path": path, "store_date": b.clock.Now().UnixMilli()})
			if err != nil {
				return fmt.Errorf("inserting photo %s: %w", path, err)
			}
			d.SetId(photo.Id(id))

			if err := b.writeFields(ex, photo.Data{Id: d.Id(), Path: path}, d, false); err != nil {
				return err
			}
			ids[i] = d.Id()
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range deltas {
		deltas[i].SetId(ids[i])
	}
	b.logger.Debug("photos added", "count", len(ids))
	b.events.EmitPhotosAdded(ids)
	return nil
}

// Update writes the fields present in delta and records tag and group
// changes in the change log.
func (b *Backend) Update(delta photo.DataDelta) error {
	id := delta.Id()
	if !id.Valid() {
		return errors.New("updating photo without id")
	}
	err := b.withTx(func(ex executor) error {
		current, err := b.readPhoto(ex, id)
		if err != nil {
			return err
		}
		return b.writeFields(ex, current, delta, true)
	})
	if err != nil {
		return fmt.Errorf("updating photo %d: %w", id, err)
	}

	b.logger.Debug("photo updated", "photo_id", id, "fields", delta.Fields())
	b.events.EmitPhotoModified(id)
	return nil
}

// GetPhoto loads the complete record of a photo.
func (b *Backend) GetPhoto(id photo.Id) (photo.Data, error) {
	ex, err := b.conn()
	if err != nil {
		return photo.Data{}, err
	}
	return b.readPhoto(ex, id)
}

func (b *Backend) GetPhotos(filters []catalog.Filter) ([]photo.Id, error) {
	ex, err := b.conn()
	if err != nil {
		return nil, err
	}

	where, a, err := compileFilters(filters)
	if err != nil {
		return nil, err
	}
	return ex.ids("SELECT photos.id FROM photos WHERE "+where+" ORDER BY photos.id", a)
}

func (b *Backend) GetPhotosCount(filters []catalog.Filter) (int, error) {
	ex, err := b.conn()
	if err != nil {
		return 0, err
	}

	where, a, err := compileFilters(filters)
	if err != nil {
		return 0, err
	}

	var count int
	if err := ex.queryRow("SELECT COUNT(*) FROM photos WHERE "+where, a, &count); err != nil {
		return 0, fmt.Errorf("counting photos: %w", err)
	}
	return count, nil
}

// MarkStagedAsReviewed clears the staged flag and notifies a modification
// for every affected photo.
func (b *Backend) MarkStagedAsReviewed() ([]photo.Id, error) {
	var ids []photo.Id

	err := b.withTx(func(ex executor) error {
		a := args{"flag": int(photo.Staged)}
		var err error
		ids, err = ex.ids("SELECT photo_id FROM flags WHERE flag=:flag AND value<>0 ORDER BY photo_id", a)
		if err != nil {
			return fmt.Errorf("reading staged photos: %w", err)
		}
		if _, err := ex.exec("UPDATE flags SET value=0 WHERE flag=:flag AND value<>0", a); err != nil {
			return fmt.Errorf("clearing staged flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		b.events.EmitPhotoModified(id)
	}
	return ids, nil
}

func (b *Backend) StorePerson(name string) (catalog.Person, error) {
	if name == "" {
		return catalog.Person{}, errors.New("person without name")
	}

	var p catalog.Person
	err := b.withTx(func(ex executor) error {
		var id int64
		err := ex.queryRow("SELECT id FROM people WHERE name=:name", args{"name": name}, &id)
		switch {
		case err == nil:
		case errors.Is(err, sql.ErrNoRows):
			stmt := b.dialect.Constructor().Insert(insertPerson)
			id, err = ex.insert(stmt, args{"name": name})
			if err != nil {
				return fmt.Errorf("inserting person: %w", err)
			}
		default:
			return fmt.Errorf("finding person: %w", err)
		}
		p = catalog.Person{Id: catalog.PersonId(id), Name: name}
		return nil
	})
	return p, err
}

func (b *Backend) ListPeople() ([]catalog.Person, error) {
	ex, err := b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := ex.query("SELECT id, name FROM people ORDER BY name", nil)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	defer rows.Close()

	var people []catalog.Person
	for rows.Next() {
		var p catalog.Person
		if err := rows.Scan(&p.Id, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// ListTags returns every known tag name ordered by name.
func (b *Backend) ListTags() ([]tag.NameInfo, error) {
	ex, err := b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := ex.query("SELECT name, display_name, type FROM tag_names ORDER BY name", nil)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var names []tag.NameInfo
	for rows.Next() {
		var n tag.NameInfo
		var typ int
		if err := rows.Scan(&n.Name, &n.DisplayName, &typ); err != nil {
			return nil, fmt.Errorf("scanning tag name: %w", err)
		}
		n.Type = tag.Type(typ)
		names = append(names, n)
	}
	return names, rows.Err()
}

func (b *Backend) ListTagValues(name tag.NameInfo, filters []catalog.Filter) ([]tag.Value, error) {
	ex, err := b.conn()
	if err != nil {
		return nil, err
	}

	where, a, err := compileFilters(filters)
	if err != nil {
		return nil, err
	}
	a["tag_name"] = name.Name

	rows, err := ex.query(`SELECT DISTINCT tags.value, tag_names.type FROM tags
		JOIN tag_names ON tag_names.id = tags.name_id
		WHERE tag_names.name = :tag_name
		AND tags.photo_id IN (SELECT photos.id FROM photos WHERE `+where+`)`, a)
	if err != nil {
		return nil, fmt.Errorf("listing values of %s: %w", name.Name, err)
	}
	defer rows.Close()

	var values []tag.Value
	for rows.Next() {
		var raw string
		var typ int
		if err := rows.Scan(&raw, &typ); err != nil {
			return nil, fmt.Errorf("scanning tag value: %w", err)
		}
		v, err := tag.Parse(tag.Type(typ), raw)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tag.SortValues(values)
	return values, nil
}
