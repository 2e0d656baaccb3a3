package catalog

import (
	"errors"
	"fmt"
	"testing"

	"photobroom/internal/photo"
)

func TestStatusOf(t *testing.T) {
	cause := errors.New("disk gone")

	tests := []struct {
		name string
		err  error
		want BackendStatus
	}{
		{"nil", nil, StatusOk},
		{"plain error", cause, StatusGeneralError},
		{"status error", NewStatusError(StatusOpenFailed, cause), StatusOpenFailed},
		{"wrapped status error", fmt.Errorf("init: %w", NewStatusError(StatusBadVersion, cause)), StatusBadVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %v, want %v", got, tt.want)
			}
		})
	}

	if !errors.Is(NewStatusError(StatusOpenFailed, cause), cause) {
		t.Error("StatusError must unwrap to its cause")
	}
}

func TestEvents(t *testing.T) {
	var events Events
	var got []string

	unsubscribe := events.Subscribe(ObserverFuncs{
		OnPhotosAdded:   func(ids []photo.Id) { got = append(got, fmt.Sprintf("added %v", ids)) },
		OnPhotoModified: func(id photo.Id) { got = append(got, fmt.Sprintf("modified %v", id)) },
	})
	events.Subscribe(ObserverFuncs{
		OnPhotoModified: func(id photo.Id) { got = append(got, fmt.Sprintf("second %v", id)) },
	})

	events.EmitPhotosAdded([]photo.Id{1, 2})
	events.EmitPhotoModified(1)
	events.EmitPhotosRemoved([]photo.Id{2})
	events.EmitPhotosAdded(nil)

	want := []string{"added [1 2]", "modified 1", "second 1"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}

	unsubscribe()
	got = nil
	events.EmitPhotoModified(3)
	if fmt.Sprint(got) != fmt.Sprint([]string{"second 3"}) {
		t.Errorf("after unsubscribe = %v, want only second observer", got)
	}
}

func TestPhotoInfoCache(t *testing.T) {
	cache := NewPhotoInfoCache()
	info := NewPhotoInfo(photo.Data{Id: 4, Path: "/a.jpeg"})

	if _, ok := cache.Find(4); ok {
		t.Fatal("Find() hit on empty cache")
	}

	cache.Introduce(info)
	found, ok := cache.Find(4)
	if !ok || found != info {
		t.Fatal("Find() must return the introduced instance")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}

	t.Run("duplicate introduce panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		cache.Introduce(NewPhotoInfo(photo.Data{Id: 4}))
	})

	cache.Forget(4)
	if _, ok := cache.Find(4); ok {
		t.Error("Find() hit after Forget")
	}
}

func TestPhotoInfo_ReturnsCopies(t *testing.T) {
	info := NewPhotoInfo(photo.Data{Id: 1, Flags: photo.Flags{photo.Staged: 1}})

	data := info.Data()
	data.Flags[photo.Staged] = 0

	if info.Flag(photo.Staged) != 1 {
		t.Error("mutating a returned Data changed the PhotoInfo")
	}

	data.Path = "/new.jpeg"
	info.Set(data)
	if info.Path() != "/new.jpeg" || info.Flag(photo.Staged) != 0 {
		t.Errorf("after Set: path %q, staged %d", info.Path(), info.Flag(photo.Staged))
	}
}

func TestCloneFilters(t *testing.T) {
	ids := []photo.Id{1, 2}
	filters := []Filter{FilterByIds{Ids: ids}, FilterByFlag{Flag: photo.Staged, Value: 1}}

	c := CloneFilters(filters)
	ids[0] = 9
	filters[1] = FilterNotGroupMember{}

	if got := c[0].(FilterByIds).Ids; got[0] != 1 {
		t.Errorf("cloned ids = %v, want [1 2]", got)
	}
	if _, ok := c[1].(FilterByFlag); !ok {
		t.Errorf("cloned filter[1] = %T, want FilterByFlag", c[1])
	}
	if CloneFilters(nil) != nil {
		t.Error("CloneFilters(nil) must be nil")
	}
}
