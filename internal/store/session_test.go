package store

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := newTestStore(t).Sessions()

	rec := &SessionRecord{ID: "session-1", Width: 1280, Height: 720}
	if err := repo.Start(rec); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if rec.StartedAt.IsZero() {
		t.Error("StartedAt should be set after start")
	}

	rec.Strokes, rec.Undos = 4, 1
	if err := repo.Update(rec); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID("session-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Strokes != 4 || got.Undos != 1 || got.Clears != 0 {
		t.Errorf("unexpected counters %+v", got)
	}
	if got.EndedAt != nil {
		t.Error("open session should have no EndedAt")
	}

	rec.Clears = 2
	if err := repo.Finish(rec); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	got, err = repo.GetByID("session-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.EndedAt == nil || got.Clears != 2 {
		t.Errorf("finished session = %+v", got)
	}
}

func TestSessionRepository_NotFound(t *testing.T) {
	repo := newTestStore(t).Sessions()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(&SessionRecord{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := repo.Finish(&SessionRecord{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	repo := newTestStore(t).Sessions()

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		rec := &SessionRecord{ID: id, Width: 640, Height: 480, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repo.Start(rec); err != nil {
			t.Fatalf("Start(%q) error = %v", id, err)
		}
	}

	list, err := repo.List(2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(List(2)) = %d, want 2", len(list))
	}
	if list[0].ID != "c" || list[1].ID != "b" {
		t.Errorf("List() = [%s %s], want [c b]", list[0].ID, list[1].ID)
	}
}
