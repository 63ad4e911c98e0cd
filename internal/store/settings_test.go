package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSettingsRepository_SetGet(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get("palette"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	if err := repo.Set("max_brush_radius", "30"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set("max_brush_radius", "50"); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}

	got, err := repo.Get("max_brush_radius")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "50" {
		t.Errorf("Get() = %q, want %q", got, "50")
	}
}

func TestSettingsRepository_Delete(t *testing.T) {
	repo := newTestStore(t).Settings()

	if err := repo.Set("mirror", "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Delete("mirror"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get("mirror"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("mirror"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSettingsRepository_ListAndAll(t *testing.T) {
	repo := newTestStore(t).Settings()

	values := map[string]string{
		"mirror":           "true",
		"camera_device":    "1",
		"min_brush_radius": "2",
	}
	for k, v := range values {
		if err := repo.Set(k, v); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var keys []string
	for _, st := range list {
		keys = append(keys, st.Key)
		if st.UpdatedAt.IsZero() {
			t.Errorf("setting %q has no UpdatedAt", st.Key)
		}
	}
	if diff := cmp.Diff([]string{"camera_device", "min_brush_radius", "mirror"}, keys); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if diff := cmp.Diff(values, all); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}
