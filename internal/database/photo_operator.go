package database

import (
	"fmt"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
)

type photoOperator struct {
	b *Backend
}

// RemovePhotos deletes photos with their tags, flags, geometry, checksums
// and memberships. Groups represented by a removed photo are dissolved and
// their surviving members are notified as modified.
func (o photoOperator) RemovePhotos(ids []photo.Id) error {
	if len(ids) == 0 {
		return nil
	}
	b := o.b

	removed := make(map[photo.Id]bool, len(ids))
	for _, id := range ids {
		removed[id] = true
	}

	var orphaned []photo.Id
	err := b.withTx(func(ex executor) error {
		a := args{}
		in := inList("id", ids, a)

		groups, err := ex.ids("SELECT id FROM groups WHERE representative_id IN ("+in+") ORDER BY id", a)
		if err != nil {
			return fmt.Errorf("reading represented groups: %w", err)
		}

		for _, gid := range groups {
			ga := args{"group_id": int64(gid)}
			members, err := ex.ids("SELECT photo_id FROM groups_members WHERE group_id=:group_id ORDER BY id", ga)
			if err != nil {
				return fmt.Errorf("reading members of group %d: %w", gid, err)
			}
			for _, m := range members {
				if removed[m] {
					continue
				}
				orphaned = append(orphaned, m)
				if err := b.appendLog(ex, catalog.GroupEntry(m, catalog.ActionRemoved, photo.GroupId(gid), photo.Member)); err != nil {
					return err
				}
			}
			if _, err := ex.exec("DELETE FROM groups_members WHERE group_id=:group_id", ga); err != nil {
				return fmt.Errorf("deleting members of group %d: %w", gid, err)
			}
			if _, err := ex.exec("DELETE FROM groups WHERE id=:group_id", ga); err != nil {
				return fmt.Errorf("deleting group %d: %w", gid, err)
			}
		}

		for _, table := range []string{"groups_members", "tags", "flags", "geometry", "sha256sums"} {
			if _, err := ex.exec("DELETE FROM "+table+" WHERE photo_id IN ("+in+")", a); err != nil {
				return fmt.Errorf("deleting %s: %w", table, err)
			}
		}
		if _, err := ex.exec("DELETE FROM photos WHERE id IN ("+in+")", a); err != nil {
			return fmt.Errorf("deleting photos: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("removing %d photos: %w", len(ids), err)
	}

	b.logger.Debug("photos removed", "count", len(ids))
	b.events.EmitPhotosRemoved(ids)
	for _, id := range orphaned {
		b.events.EmitPhotoModified(id)
	}
	return nil
}
