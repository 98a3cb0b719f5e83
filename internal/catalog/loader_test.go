package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const seedJSON = `{
  "courses": [
    {"id": "c1", "title": "Paid", "is_active": true, "is_paid": true, "price": 4999},
    {"id": "c2", "title": "Free", "is_active": true}
  ],
  "lectures": [
    {"id": "l1", "course_id": "c1", "title": "Intro", "video_url": "https://cdn/v1.mp4", "is_preview": true, "preview_url": "https://cdn/p1.mp4"},
    {"id": "l2", "course_id": "c2", "title": "Open", "video_url": "https://cdn/v2.mp4"}
  ],
  "grants": [
    {"user_id": "u1", "course_id": "c1"}
  ]
}`

func TestLoadJSON(t *testing.T) {
	repo := NewInMemoryRepository()
	if err := LoadJSON([]byte(seedJSON), repo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l, ok := repo.GetLecture("l1")
	if !ok || !l.IsPreview || l.PreviewURL != "https://cdn/p1.mp4" {
		t.Errorf("unexpected lecture: %+v %v", l, ok)
	}
	c, ok := repo.GetCourse("c1")
	if !ok || !c.RequiresPurchase() {
		t.Errorf("unexpected course: %+v %v", c, ok)
	}
	if !repo.HasActiveAccess("u1", "c1") {
		t.Error("expected grant loaded as active")
	}
}

func TestLoadJSON_rejects_missing_ids(t *testing.T) {
	repo := NewInMemoryRepository()
	if err := LoadJSON([]byte(`{"courses":[{"title":"no id"}]}`), repo); err == nil {
		t.Error("expected error for course without id")
	}
	if err := LoadJSON([]byte(`{"lectures":[{"id":"l1","title":"no course"}]}`), repo); err == nil {
		t.Error("expected error for lecture without course_id")
	}
	if err := LoadJSON([]byte(`not json`), repo); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(seedJSON), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	repo := NewInMemoryRepository()
	if err := LoadFile(path, repo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.GetLecture("l2"); !ok {
		t.Error("expected l2 loaded")
	}

	if err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), repo); err == nil {
		t.Error("expected error for missing file")
	}
}
