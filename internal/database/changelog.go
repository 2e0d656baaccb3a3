package database

import (
	"fmt"
	"time"

	"photobroom/internal/catalog"
	"photobroom/internal/photo"
)

// appendLog writes one change log row stamped with the backend clock.
func (b *Backend) appendLog(ex executor, e catalog.ChangeLogEntry) error {
	stmt := b.dialect.Constructor().Insert(insertChangeLog)
	_, err := ex.exec(stmt, args{
		"photo_id":   int64(e.PhotoId),
		"action":     int(e.Action),
		"subject":    int(e.Subject),
		"name":       e.Name,
		"old_value":  e.OldValue,
		"new_value":  e.NewValue,
		"created_at": b.clock.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("appending change log: %w", err)
	}
	return nil
}

type changeLogOperator struct {
	b *Backend
}

func (o changeLogOperator) Entries() ([]catalog.ChangeLogEntry, error) {
	ex, err := o.b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := ex.query(`SELECT id, photo_id, action, subject, name, old_value, new_value, created_at
		FROM photos_change_log ORDER BY id`, nil)
	if err != nil {
		return nil, fmt.Errorf("reading change log: %w", err)
	}
	defer rows.Close()

	var entries []catalog.ChangeLogEntry
	for rows.Next() {
		var (
			e               catalog.ChangeLogEntry
			photoId         int64
			action, subject int
			createdAt       int64
		)
		if err := rows.Scan(&e.Id, &photoId, &action, &subject, &e.Name, &e.OldValue, &e.NewValue, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning change log: %w", err)
		}
		e.PhotoId = photo.Id(photoId)
		e.Action = catalog.Action(action)
		e.Subject = catalog.Subject(subject)
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (o changeLogOperator) DumpChangeLog() ([]string, error) {
	entries, err := o.Entries()
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines, nil
}
