package app

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"photobroom/internal/catalog"
	"photobroom/internal/config"
	"photobroom/internal/photo"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	base := t.TempDir()
	cfg := config.NewConfig("test-project", base)
	cfg.Database.Type = "memory"
	cfg.Executor.Workers = 2
	cfg.Log.Level = "error"

	a, err := New(cfg, "test-session")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func writePhotos(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestApp_AddPhotos(t *testing.T) {
	a := newTestApp(t)
	dir := writePhotos(t, "a.jpg", "b.jpeg", "notes.txt")

	ids, err := a.AddPhotos([]string{dir}, true)
	if err != nil {
		t.Fatalf("AddPhotos() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("AddPhotos() = %v, want 2 photos", ids)
	}

	photos, err := a.ListPhotos(nil)
	if err != nil {
		t.Fatalf("ListPhotos() error = %v", err)
	}
	for _, p := range photos {
		if p.Checksum == "" {
			t.Errorf("photo %d has no checksum", p.Id)
		}
		if p.Flag(photo.Staged) != 1 || p.Flag(photo.ChecksumLoaded) != 1 {
			t.Errorf("photo %d flags = %v, want staged and checksum loaded", p.Id, p.Flags)
		}
	}

	again, err := a.AddPhotos([]string{dir}, true)
	if err != nil {
		t.Fatalf("second AddPhotos() error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second AddPhotos() = %v, want no new photos", again)
	}
}

func TestApp_TagsAndLog(t *testing.T) {
	a := newTestApp(t)
	ids, err := a.AddPhotos([]string{writePhotos(t, "a.jpg")}, false)
	if err != nil {
		t.Fatalf("AddPhotos() error = %v", err)
	}
	id := ids[0]

	if err := a.SetTag(id, "Event", "wedding"); err != nil {
		t.Fatalf("SetTag() error = %v", err)
	}
	if err := a.SetTag(id, "People", "Ann, Bob"); err != nil {
		t.Fatalf("SetTag() error = %v", err)
	}
	if err := a.RemoveTag(id, "Event"); err != nil {
		t.Fatalf("RemoveTag() error = %v", err)
	}
	if err := a.RemoveTag(id, "Event"); err == nil {
		t.Error("RemoveTag() of missing tag expected error")
	}

	values := a.TagValues("People")
	if len(values) != 2 || values[0].Text() != "Ann" || values[1].Text() != "Bob" {
		t.Errorf("TagValues(People) = %v, want [Ann Bob]", values)
	}

	lines, err := a.ChangeLog()
	if err != nil {
		t.Fatalf("ChangeLog() error = %v", err)
	}
	want := []string{
		"photo id: 1. Tag added. Event: wedding",
		"photo id: 1. Tag added. People: Ann, Bob",
		"photo id: 1. Tag removed. Event: wedding",
	}
	if !slices.Equal(lines, want) {
		t.Errorf("ChangeLog() =\n%q\nwant\n%q", lines, want)
	}
}

func TestApp_GroupsAndReview(t *testing.T) {
	a := newTestApp(t)
	ids, err := a.AddPhotos([]string{writePhotos(t, "a.jpg", "b.jpg", "c.jpg")}, false)
	if err != nil {
		t.Fatalf("AddPhotos() error = %v", err)
	}

	gid, err := a.CreateGroup(ids[0], ids[1:], photo.HDR)
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	visible, err := a.CountPhotos([]catalog.Filter{catalog.FilterNotGroupMember{}})
	if err != nil {
		t.Fatalf("CountPhotos() error = %v", err)
	}
	if visible != 1 {
		t.Errorf("CountPhotos(not member) = %d, want 1", visible)
	}

	rep, err := a.RemoveGroup(gid)
	if err != nil || rep != ids[0] {
		t.Errorf("RemoveGroup() = %v, %v; want %v", rep, err, ids[0])
	}

	reviewed, err := a.Review()
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if !slices.Equal(reviewed, ids) {
		t.Errorf("Review() = %v, want %v", reviewed, ids)
	}
	staged, _ := a.CountPhotos([]catalog.Filter{catalog.FilterByFlag{Flag: photo.Staged, Value: 1}})
	if staged != 0 {
		t.Errorf("staged photos after review = %d, want 0", staged)
	}

	if err := a.RemovePhotos(ids[:1]); err != nil {
		t.Fatalf("RemovePhotos() error = %v", err)
	}
	if n, _ := a.CountPhotos(nil); n != 2 {
		t.Errorf("CountPhotos() after removal = %d, want 2", n)
	}
}

func TestApp_People(t *testing.T) {
	a := newTestApp(t)

	for _, name := range []string{"Zoe", "Adam", "Zoe"} {
		if _, err := a.AddPerson(name); err != nil {
			t.Fatalf("AddPerson(%s) error = %v", name, err)
		}
	}
	people, err := a.People()
	if err != nil {
		t.Fatalf("People() error = %v", err)
	}
	if len(people) != 2 || people[0].Name != "Adam" || people[1].Name != "Zoe" {
		t.Errorf("People() = %v, want [Adam Zoe]", people)
	}
}

func TestApp_Metrics(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.CountPhotos(nil); err != nil {
		t.Fatalf("CountPhotos() error = %v", err)
	}

	families, err := a.Metrics().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	if !slices.Contains(names, "photobroom_asyncdb_tasks_total") {
		t.Errorf("gathered metrics %v, want photobroom_asyncdb_tasks_total", names)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig("p", t.TempDir())
	cfg.Database.Type = "oracle"
	if _, err := New(cfg, "s"); err == nil {
		t.Error("New() with unknown database type expected error")
	}
}

func TestApp_TagValuesOfNewTagName(t *testing.T) {
	a := newTestApp(t)
	ids, err := a.AddPhotos([]string{writePhotos(t, "a.jpg")}, false)
	if err != nil {
		t.Fatalf("AddPhotos() error = %v", err)
	}

	if got := a.TagValues("Camera"); len(got) != 0 {
		t.Fatalf("TagValues(Camera) before SetTag = %v, want none", got)
	}
	if err := a.SetTag(ids[0], "Camera", "X100"); err != nil {
		t.Fatalf("SetTag() error = %v", err)
	}

	if got := a.TagValues("Camera"); len(got) != 1 || got[0].Text() != "X100" {
		t.Errorf("TagValues(Camera) = %v, want [X100]", got)
	}
}
