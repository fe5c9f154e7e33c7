package session

import (
	"testing"
	"time"
)

// Force the file fallback and sandbox it in a temp home so tests never touch
// a real keyring or a real ~/.harvest.
func useTempStorage(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "1")
	t.Setenv("HOME", t.TempDir())
	forced := true
	fileBasedStorageCache = &forced
}

func TestSaveLoadDelete(t *testing.T) {
	useTempStorage(t)

	data := &Data{
		Name:    "doctors",
		SiteURL: "https://x.test/list",
		Cookies: []Cookie{
			{Name: "sid", Value: "abc123", Domain: "x.test", Path: "/", Secure: true},
		},
	}
	if err := Save(data); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load("doctors")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SiteURL != "https://x.test/list" {
		t.Errorf("SiteURL = %q", loaded.SiteURL)
	}
	if len(loaded.Cookies) != 1 || loaded.Cookies[0].Value != "abc123" {
		t.Errorf("Cookies = %+v", loaded.Cookies)
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Error("timestamps not set on save")
	}

	if err := Delete("doctors"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := Load("doctors"); err == nil {
		t.Error("Load succeeded after delete")
	}
}

func TestSave_PreservesCreatedAt(t *testing.T) {
	useTempStorage(t)

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	data := &Data{Name: "doctors", CreatedAt: created}
	if err := Save(data); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load("doctors")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, created)
	}
	if !loaded.UpdatedAt.After(created) {
		t.Errorf("UpdatedAt = %v, want after creation", loaded.UpdatedAt)
	}
}

func TestList(t *testing.T) {
	useTempStorage(t)

	if err := Save(&Data{Name: "alpha"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save(&Data{Name: "beta"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	names, err := List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("List = %v, want two sessions", names)
	}
}

func TestSave_RequiresName(t *testing.T) {
	useTempStorage(t)

	if err := Save(&Data{}); err == nil {
		t.Error("Save accepted an unnamed session")
	}
}
