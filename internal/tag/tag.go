package tag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Type identifies the kind of values a tag name holds.
// Values are persisted, do not renumber.
type Type int

const (
	Invalid Type = 0
	Text    Type = 1
	Date    Type = 2
	Time    Type = 3
	List    Type = 4
)

func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Date:
		return "date"
	case Time:
		return "time"
	case List:
		return "list"
	default:
		return "invalid"
	}
}

// NameInfo describes a tag name: its semantic name, the name shown to users
// and the type of its values.
type NameInfo struct {
	Name        string
	DisplayName string
	Type        Type
}

func (n NameInfo) String() string { return n.Name }

// Base tag names known to every catalog.
var (
	Event  = NameInfo{Name: "Event", DisplayName: "Event", Type: Text}
	Place  = NameInfo{Name: "Place", DisplayName: "Place", Type: Text}
	DateOf = NameInfo{Name: "Date", DisplayName: "Date", Type: Date}
	TimeOf = NameInfo{Name: "Time", DisplayName: "Time", Type: Time}
	People = NameInfo{Name: "People", DisplayName: "People", Type: List}
)

// BaseNames returns the base tag names ordered by name.
func BaseNames() []NameInfo {
	return []NameInfo{DateOf, Event, People, Place, TimeOf}
}

// Lookup returns the base NameInfo for name, or a Text tag using name as its
// display name when name is not a base tag.
func Lookup(name string) NameInfo {
	for _, n := range BaseNames() {
		if n.Name == name {
			return n
		}
	}
	return NameInfo{Name: name, DisplayName: name, Type: Text}
}

// ErrWrongType is returned when a Value is read with an accessor that does
// not match its kind.
var ErrWrongType = errors.New("tag value has a different type")

// Kind is the variant held by a Value.
type Kind int

const (
	KindEmpty Kind = iota
	KindDate
	KindList
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "empty"
	}
}

const (
	dateLayout = "2006.01.02"
	timeLayout = "15:04:05"
)

// Value is a tag value. The zero Value is empty.
type Value struct {
	kind Kind
	str  string
	tm   time.Time
	list []Value
}

func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewDate keeps only the calendar date of t.
func NewDate(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, tm: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewTime keeps only the clock time of t.
func NewTime(t time.Time) Value {
	h, m, s := t.Clock()
	return Value{kind: KindTime, tm: time.Date(0, 1, 1, h, m, s, 0, time.UTC)}
}

func NewList(values ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), values...)}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// blank reports whether v carries nothing to store.
func (v Value) blank() bool {
	return v.kind == KindEmpty || (v.kind == KindList && len(v.list) == 0)
}

func (v Value) String() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("reading %s as string: %w", v.kind, ErrWrongType)
	}
	return v.str, nil
}

func (v Value) Date() (time.Time, error) {
	if v.kind != KindDate {
		return time.Time{}, fmt.Errorf("reading %s as date: %w", v.kind, ErrWrongType)
	}
	return v.tm, nil
}

func (v Value) Time() (time.Time, error) {
	if v.kind != KindTime {
		return time.Time{}, fmt.Errorf("reading %s as time: %w", v.kind, ErrWrongType)
	}
	return v.tm, nil
}

func (v Value) List() ([]Value, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("reading %s as list: %w", v.kind, ErrWrongType)
	}
	return append([]Value(nil), v.list...), nil
}

// Text renders the value the way it is stored and shown in the change log.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindDate:
		return v.tm.Format(dateLayout)
	case KindTime:
		return v.tm.Format(timeLayout)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.Text()
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindDate, KindTime:
		return v.tm.Equal(other.tm)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Less orders values by kind first, then by content.
func (v Value) Less(other Value) bool {
	if v.kind != other.kind {
		return v.kind < other.kind
	}
	switch v.kind {
	case KindString:
		return v.str < other.str
	case KindDate, KindTime:
		return v.tm.Before(other.tm)
	case KindList:
		for i := 0; i < len(v.list) && i < len(other.list); i++ {
			if !v.list[i].Equal(other.list[i]) {
				return v.list[i].Less(other.list[i])
			}
		}
		return len(v.list) < len(other.list)
	default:
		return false
	}
}

// Parse reads a scalar value written by Text for a tag of type t.
// List tags are stored one element per row, so their elements parse as
// strings.
func Parse(t Type, s string) (Value, error) {
	switch t {
	case Text, List:
		return NewString(s), nil
	case Date:
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return Value{}, fmt.Errorf("parsing date %q: %w", s, err)
		}
		return NewDate(d), nil
	case Time:
		tm, err := time.Parse(timeLayout, s)
		if err != nil {
			return Value{}, fmt.Errorf("parsing time %q: %w", s, err)
		}
		return NewTime(tm), nil
	default:
		return Value{}, fmt.Errorf("parsing value for tag type %d: %w", t, ErrWrongType)
	}
}

// SortValues sorts values in place using Less.
func SortValues(values []Value) {
	sort.SliceStable(values, func(i, j int) bool { return values[i].Less(values[j]) })
}
