package catalog

import (
	"fmt"
	"time"

	"photobroom/internal/photo"
	"photobroom/internal/tag"
)

// Subject is what a change log entry is about.
type Subject int

const (
	SubjectTag Subject = iota
	SubjectGroup
)

func (s Subject) String() string {
	if s == SubjectGroup {
		return "Group"
	}
	return "Tag"
}

// Action is the kind of change recorded by a change log entry.
type Action int

const (
	ActionAdded Action = iota
	ActionModified
	ActionRemoved
)

func (a Action) String() string {
	switch a {
	case ActionModified:
		return "modified"
	case ActionRemoved:
		return "removed"
	default:
		return "added"
	}
}

// ChangeLogEntry is one row of the append-only photo change log.
// For tag entries Name is the tag display name; for group entries Name is
// the group id and the value columns hold the role code.
type ChangeLogEntry struct {
	Id        int64
	PhotoId   photo.Id
	Subject   Subject
	Action    Action
	Name      string
	OldValue  string
	NewValue  string
	CreatedAt time.Time
}

// String renders the entry in the canonical audit format.
func (e ChangeLogEntry) String() string {
	prefix := fmt.Sprintf("photo id: %d. %s %s. %s: ", e.PhotoId, e.Subject, e.Action, e.Name)
	switch e.Action {
	case ActionModified:
		return prefix + e.OldValue + " -> " + e.NewValue
	case ActionRemoved:
		return prefix + e.OldValue
	default:
		return prefix + e.NewValue
	}
}

// GroupEntry builds the change log entry recording photo id gaining or
// losing a role in group gid.
func GroupEntry(id photo.Id, action Action, gid photo.GroupId, role photo.Role) ChangeLogEntry {
	e := ChangeLogEntry{
		PhotoId: id,
		Subject: SubjectGroup,
		Action:  action,
		Name:    gid.String(),
	}
	code := fmt.Sprintf("%d", int(role))
	if action == ActionRemoved {
		e.OldValue = code
	} else {
		e.NewValue = code
	}
	return e
}

// TagEntry builds the change log entry recording one tag change of photo id.
func TagEntry(id photo.Id, c tag.Change) ChangeLogEntry {
	e := ChangeLogEntry{
		PhotoId: id,
		Subject: SubjectTag,
		Name:    c.Name.DisplayName,
	}
	switch c.Kind {
	case tag.Added:
		e.Action = ActionAdded
		e.NewValue = c.New.Text()
	case tag.Modified:
		e.Action = ActionModified
		e.OldValue = c.Old.Text()
		e.NewValue = c.New.Text()
	case tag.Removed:
		e.Action = ActionRemoved
		e.OldValue = c.Old.Text()
	}
	return e
}
