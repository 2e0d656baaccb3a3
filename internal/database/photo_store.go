package database

import (
	"database/sql"
	"errors"
	"fmt"

	"photobroom/internal/catalog"
	"photobroom/internal/database/query"
	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

var (
	insertPhoto     = query.NewInsert("photos").SetColumns("path", "store_date")
	insertPerson    = query.NewInsert("people").SetColumns("name")
	insertTagName   = query.NewInsert("tag_names").SetColumns("name", "display_name", "type")
	insertTag       = query.NewInsert("tags").SetColumns("photo_id", "name_id", "value", "position")
	insertFlag      = query.NewInsert("flags").SetColumns("photo_id", "flag", "value")
	insertGeometry  = query.NewInsert("geometry").SetColumns("photo_id", "width", "height")
	insertChecksum  = query.NewInsert("sha256sums").SetColumns("photo_id", "sha256")
	insertGroup     = query.NewInsert("groups").SetColumns("representative_id", "type")
	insertMember    = query.NewInsert("groups_members").SetColumns("group_id", "photo_id")
	insertChangeLog = query.NewInsert("photos_change_log").SetColumns("photo_id", "action", "subject", "name", "old_value", "new_value", "created_at")

	updatePath     = query.NewUpdate("photos").SetColumns("path").SetCondition("id")
	updateGeometry = query.NewUpdate("geometry").SetColumns("width", "height").SetCondition("photo_id")
	updateChecksum = query.NewUpdate("sha256sums").SetColumns("sha256").SetCondition("photo_id")
)

// readPhoto loads every part of a photo record.
func (b *Backend) readPhoto(ex executor, id photo.Id) (photo.Data, error) {
	data := photo.Data{Id: id}
	a := args{"id": int64(id)}

	err := ex.queryRow("SELECT path FROM photos WHERE id=:id", a, &data.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return photo.Data{}, fmt.Errorf("photo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return photo.Data{}, fmt.Errorf("reading photo %d: %w", id, err)
	}

	if data.Tags, err = readTags(ex, id); err != nil {
		return photo.Data{}, err
	}
	if data.Flags, err = readFlags(ex, id); err != nil {
		return photo.Data{}, err
	}

	err = ex.queryRow("SELECT width, height FROM geometry WHERE photo_id=:id", a, &data.Geometry.Width, &data.Geometry.Height)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return photo.Data{}, fmt.Errorf("reading geometry: %w", err)
	}

	err = ex.queryRow("SELECT sha256 FROM sha256sums WHERE photo_id=:id", a, &data.Checksum)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return photo.Data{}, fmt.Errorf("reading checksum: %w", err)
	}

	if data.Group, err = readGroupInfo(ex, id); err != nil {
		return photo.Data{}, err
	}

	return data, nil
}

func readTags(ex executor, id photo.Id) (tag.Tags, error) {
	rows, err := ex.query(`SELECT tag_names.name, tag_names.display_name, tag_names.type, tags.value
		FROM tags JOIN tag_names ON tag_names.id = tags.name_id
		WHERE tags.photo_id=:id
		ORDER BY tag_names.name, tags.position, tags.id`, args{"id": int64(id)})
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}
	defer rows.Close()

	tags := tag.Tags{}
	lists := map[tag.NameInfo][]tag.Value{}
	for rows.Next() {
		var n tag.NameInfo
		var typ int
		var raw string
		if err := rows.Scan(&n.Name, &n.DisplayName, &typ, &raw); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		n.Type = tag.Type(typ)

		v, err := tag.Parse(n.Type, raw)
		if err != nil {
			return nil, err
		}
		if n.Type == tag.List {
			lists[n] = append(lists[n], v)
			continue
		}
		tags[n] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for n, items := range lists {
		tags[n] = tag.NewList(items...)
	}
	return tags, nil
}

func readFlags(ex executor, id photo.Id) (photo.Flags, error) {
	rows, err := ex.query("SELECT flag, value FROM flags WHERE photo_id=:id", args{"id": int64(id)})
	if err != nil {
		return nil, fmt.Errorf("reading flags: %w", err)
	}
	defer rows.Close()

	flags := photo.Flags{}
	for rows.Next() {
		var f, v int
		if err := rows.Scan(&f, &v); err != nil {
			return nil, fmt.Errorf("scanning flag: %w", err)
		}
		flags[photo.Flag(f)] = v
	}
	return flags, rows.Err()
}

func readGroupInfo(ex executor, id photo.Id) (photo.GroupInfo, error) {
	a := args{"id": int64(id)}
	var gid int64
	var typ int

	err := ex.queryRow("SELECT id, type FROM groups WHERE representative_id=:id", a, &gid, &typ)
	if err == nil {
		return photo.GroupInfo{GroupId: photo.GroupId(gid), Role: photo.Representative, Type: photo.GroupType(typ)}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return photo.GroupInfo{}, fmt.Errorf("reading group: %w", err)
	}

	err = ex.queryRow(`SELECT groups_members.group_id, groups.type FROM groups_members
		JOIN groups ON groups.id = groups_members.group_id
		WHERE groups_members.photo_id=:id`, a, &gid, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return photo.GroupInfo{}, nil
	}
	if err != nil {
		return photo.GroupInfo{}, fmt.Errorf("reading group membership: %w", err)
	}
	return photo.GroupInfo{GroupId: photo.GroupId(gid), Role: photo.Member, Type: photo.GroupType(typ)}, nil
}

// writeFields stores the fields of delta over current. Tag changes are
// logged only with logChanges set; group moves are always logged.
func (b *Backend) writeFields(ex executor, current photo.Data, delta photo.DataDelta, logChanges bool) error {
	id := current.Id
	c := b.dialect.Constructor()

	if path, ok := delta.Path(); ok && path != current.Path {
		if _, err := ex.exec(c.Update(updatePath), args{"path": path, "id": int64(id)}); err != nil {
			return fmt.Errorf("updating path: %w", err)
		}
	}

	if tags, ok := delta.Tags(); ok {
		if err := b.writeTags(ex, id, current.Tags, tags, logChanges); err != nil {
			return err
		}
	}

	if g, ok := delta.Geometry(); ok {
		a := args{"photo_id": int64(id), "width": g.Width, "height": g.Height}
		if err := upsert(ex, c.Update(updateGeometry), c.Insert(insertGeometry), a); err != nil {
			return fmt.Errorf("storing geometry: %w", err)
		}
	}

	if sum, ok := delta.Checksum(); ok {
		a := args{"photo_id": int64(id), "sha256": sum}
		if err := upsert(ex, c.Update(updateChecksum), c.Insert(insertChecksum), a); err != nil {
			return fmt.Errorf("storing checksum: %w", err)
		}
	}

	if flags, ok := delta.Flags(); ok {
		if err := b.writeFlags(ex, id, flags); err != nil {
			return err
		}
	}

	if g, ok := delta.GroupInfo(); ok {
		if err := b.writeGroupInfo(ex, id, current.Group, g); err != nil {
			return err
		}
	}

	return nil
}

// upsert updates a row keyed by photo_id, inserting it when missing.
func upsert(ex executor, update, insert string, a args) error {
	res, err := ex.exec(update, a)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = ex.exec(insert, a)
	return err
}

// writeFlags replaces the flag set of a photo.
func (b *Backend) writeFlags(ex executor, id photo.Id, flags photo.Flags) error {
	if _, err := ex.exec("DELETE FROM flags WHERE photo_id=:id", args{"id": int64(id)}); err != nil {
		return fmt.Errorf("clearing flags: %w", err)
	}
	stmt := b.dialect.Constructor().Insert(insertFlag)
	for f, v := range flags {
		if _, err := ex.exec(stmt, args{"photo_id": int64(id), "flag": int(f), "value": v}); err != nil {
			return fmt.Errorf("storing flag %s: %w", f, err)
		}
	}
	return nil
}

// writeTags rewrites the tags that differ between old and new. Rows and
// log entries use the registered NameInfo of each tag name.
func (b *Backend) writeTags(ex executor, id photo.Id, old, new tag.Tags, logChanges bool) error {
	c := b.dialect.Constructor()

	for _, change := range tag.Diff(old, new) {
		nameId, registered, err := b.tagName(ex, change.Name)
		if err != nil {
			return err
		}
		change.Name = registered

		a := args{"photo_id": int64(id), "name_id": nameId}
		if _, err := ex.exec("DELETE FROM tags WHERE photo_id=:photo_id AND name_id=:name_id", a); err != nil {
			return fmt.Errorf("removing tag %s: %w", change.Name, err)
		}

		if change.Kind != tag.Removed {
			for pos, raw := range storedValues(change.New) {
				row := args{"photo_id": int64(id), "name_id": nameId, "value": raw, "position": pos}
				if _, err := ex.exec(c.Insert(insertTag), row); err != nil {
					return fmt.Errorf("storing tag %s: %w", change.Name, err)
				}
			}
		}

		if logChanges {
			if err := b.appendLog(ex, catalog.TagEntry(id, change)); err != nil {
				return err
			}
		}
	}
	return nil
}

// storedValues renders v as tag rows: one per list element, else one.
func storedValues(v tag.Value) []string {
	items, err := v.List()
	if err != nil {
		return []string{v.Text()}
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Text()
	}
	return out
}

// tagName returns the row id and registered NameInfo of the tag called
// n.Name, registering n on first use.
func (b *Backend) tagName(ex executor, n tag.NameInfo) (int64, tag.NameInfo, error) {
	var (
		id  int64
		typ int
	)
	registered := tag.NameInfo{Name: n.Name}
	err := ex.queryRow("SELECT id, display_name, type FROM tag_names WHERE name=:name",
		args{"name": n.Name}, &id, &registered.DisplayName, &typ)
	if err == nil {
		registered.Type = tag.Type(typ)
		return id, registered, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, tag.NameInfo{}, fmt.Errorf("finding tag name %s: %w", n.Name, err)
	}

	registered.DisplayName = n.DisplayName
	if registered.DisplayName == "" {
		registered.DisplayName = n.Name
	}
	registered.Type = n.Type
	stmt := b.dialect.Constructor().Insert(insertTagName)
	id, err = ex.insert(stmt, args{"name": n.Name, "display_name": registered.DisplayName, "type": int(n.Type)})
	if err != nil {
		return 0, tag.NameInfo{}, fmt.Errorf("registering tag name %s: %w", n.Name, err)
	}
	return id, registered, nil
}

// writeGroupInfo moves a photo into or out of a group. Representatives
// change only through the group operator.
func (b *Backend) writeGroupInfo(ex executor, id photo.Id, old, new photo.GroupInfo) error {
	if !new.GroupId.Valid() || new.Role == photo.NoRole {
		new = photo.GroupInfo{}
	}
	if old.GroupId == new.GroupId && old.Role == new.Role {
		return nil
	}

	if old.Role == photo.Representative {
		return fmt.Errorf("photo %d represents group %d: remove the group instead", id, old.GroupId)
	}
	if new.Role == photo.Representative {
		return fmt.Errorf("photo %d cannot become representative of group %d", id, new.GroupId)
	}

	a := args{"photo_id": int64(id)}
	if old.Role == photo.Member {
		if _, err := ex.exec("DELETE FROM groups_members WHERE photo_id=:photo_id", a); err != nil {
			return fmt.Errorf("leaving group %d: %w", old.GroupId, err)
		}
		if err := b.appendLog(ex, catalog.GroupEntry(id, catalog.ActionRemoved, old.GroupId, photo.Member)); err != nil {
			return err
		}
	}

	if new.Role == photo.Member {
		var typ int
		err := ex.queryRow("SELECT type FROM groups WHERE id=:id", args{"id": int64(new.GroupId)}, &typ)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("group %d: %w", new.GroupId, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("reading group %d: %w", new.GroupId, err)
		}

		a["group_id"] = int64(new.GroupId)
		if _, err := ex.exec(b.dialect.Constructor().Insert(insertMember), a); err != nil {
			return fmt.Errorf("joining group %d: %w", new.GroupId, err)
		}
		if err := b.appendLog(ex, catalog.GroupEntry(id, catalog.ActionAdded, new.GroupId, photo.Member)); err != nil {
			return err
		}
	}

	return nil
}
