package database

import (
	"database/sql"
	"errors"
	"fmt"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
)

type groupOperator struct {
	b *Backend
}

// AddGroup creates a group represented by rep and logs the representative
// joining it.
func (o groupOperator) AddGroup(rep photo.Id, t photo.GroupType) (photo.GroupId, error) {
	b := o.b
	if t != photo.Animation && t != photo.HDR {
		return photo.InvalidGroupId, fmt.Errorf("invalid group type %d", t)
	}

	var gid photo.GroupId
	err := b.withTx(func(ex executor) error {
		current, err := readGroupInfo(ex, rep)
		if err != nil {
			return err
		}
		if current.GroupId.Valid() {
			return fmt.Errorf("photo %d already belongs to group %d", rep, current.GroupId)
		}

		stmt := b.dialect.Constructor().Insert(insertGroup)
		id, err := ex.insert(stmt, args{"representative_id": int64(rep), "type": int(t)})
		if err != nil {
			return fmt.Errorf("inserting group: %w", err)
		}
		gid = photo.GroupId(id)

		return b.appendLog(ex, catalog.GroupEntry(rep, catalog.ActionAdded, gid, photo.Representative))
	})
	if err != nil {
		return photo.InvalidGroupId, fmt.Errorf("creating group for photo %d: %w", rep, err)
	}

	b.logger.Debug("group created", "group", gid, "representative", rep)
	b.events.EmitPhotoModified(rep)
	return gid, nil
}

// RemoveGroup deletes the group with all of its memberships in one
// transaction. Only after commit is every former participant notified,
// representative first and members in storage order.
func (o groupOperator) RemoveGroup(gid photo.GroupId) (photo.Id, error) {
	b := o.b

	var (
		rep     photo.Id
		members []photo.Id
	)
	err := b.withTx(func(ex executor) error {
		a := args{"group_id": int64(gid)}

		var id int64
		err := ex.queryRow("SELECT representative_id FROM groups WHERE id=:group_id", a, &id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("group %d: %w", gid, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("reading representative: %w", err)
		}
		rep = photo.Id(id)

		members, err = ex.ids("SELECT photo_id FROM groups_members WHERE group_id=:group_id ORDER BY id", a)
		if err != nil {
			return fmt.Errorf("reading members: %w", err)
		}

		if _, err := ex.exec("DELETE FROM groups_members WHERE group_id=:group_id", a); err != nil {
			return fmt.Errorf("deleting members: %w", err)
		}
		if _, err := ex.exec("DELETE FROM groups WHERE id=:group_id", a); err != nil {
			return fmt.Errorf("deleting group: %w", err)
		}

		if err := b.appendLog(ex, catalog.GroupEntry(rep, catalog.ActionRemoved, gid, photo.Representative)); err != nil {
			return err
		}
		for _, m := range members {
			if err := b.appendLog(ex, catalog.GroupEntry(m, catalog.ActionRemoved, gid, photo.Member)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return photo.InvalidId, fmt.Errorf("removing group %d: %w", gid, err)
	}

	b.logger.Debug("group removed", "group", gid, "members", len(members))
	b.events.EmitPhotoModified(rep)
	for _, m := range members {
		b.events.EmitPhotoModified(m)
	}
	return rep, nil
}

// Type returns the type of gid or InvalidGroup when it cannot be read.
func (o groupOperator) Type(gid photo.GroupId) photo.GroupType {
	ex, err := o.b.conn()
	if err != nil {
		return photo.InvalidGroup
	}

	var typ int
	if err := ex.queryRow("SELECT type FROM groups WHERE id=:id", args{"id": int64(gid)}, &typ); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			o.b.logger.Warn("reading group type", "group", gid, "error", err)
		}
		return photo.InvalidGroup
	}
	return photo.GroupType(typ)
}
