package metadata

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestViewCountUnseenSlug(t *testing.T) {
	s := setupTestStore(t)

	views, err := s.ViewCount("never-seen")
	if err != nil {
		t.Fatalf("ViewCount failed: %v", err)
	}
	if views != 0 {
		t.Errorf("ViewCount = %d, want 0", views)
	}

	// The read should have created the row.
	counts, err := s.AllViewCounts()
	if err != nil {
		t.Fatalf("AllViewCounts failed: %v", err)
	}
	if got, ok := counts["never-seen"]; !ok || got != 0 {
		t.Errorf("counts[never-seen] = %d, %v; want 0, true", got, ok)
	}
}

func TestIncrementViews(t *testing.T) {
	s := setupTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.IncrementViews("my-post"); err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}

	views, err := s.ViewCount("my-post")
	if err != nil {
		t.Fatalf("ViewCount failed: %v", err)
	}
	if views != 3 {
		t.Errorf("ViewCount = %d, want 3", views)
	}
}

func TestIncrementViewsCreatesRow(t *testing.T) {
	s := setupTestStore(t)

	if err := s.IncrementViews("fresh"); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}
	views, err := s.ViewCount("fresh")
	if err != nil {
		t.Fatalf("ViewCount failed: %v", err)
	}
	if views != 1 {
		t.Errorf("ViewCount = %d, want 1", views)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SetViews("popular", 10); err != nil {
		t.Fatalf("SetViews failed: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementViews("popular"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent IncrementViews failed: %v", err)
	}

	views, err := s.ViewCount("popular")
	if err != nil {
		t.Fatalf("ViewCount failed: %v", err)
	}
	if views != 10+n {
		t.Errorf("ViewCount = %d, want %d (lost updates)", views, 10+n)
	}
}

func TestSetViews(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SetViews("edited", 42); err != nil {
		t.Fatalf("SetViews failed: %v", err)
	}
	views, err := s.ViewCount("edited")
	if err != nil {
		t.Fatalf("ViewCount failed: %v", err)
	}
	if views != 42 {
		t.Errorf("ViewCount = %d, want 42", views)
	}

	// Overwrite an existing row.
	if err := s.SetViews("edited", 7); err != nil {
		t.Fatalf("SetViews overwrite failed: %v", err)
	}
	views, _ = s.ViewCount("edited")
	if views != 7 {
		t.Errorf("ViewCount = %d, want 7", views)
	}
}

func TestSetViewsRejectsNegative(t *testing.T) {
	s := setupTestStore(t)

	err := s.SetViews("post", -1)
	if !errors.Is(err, ErrNegativeViews) {
		t.Errorf("SetViews(-1) = %v, want ErrNegativeViews", err)
	}
}

func TestAllViewCounts(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SetViews("a", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.SetViews("b", 2); err != nil {
		t.Fatal(err)
	}

	counts, err := s.AllViewCounts()
	if err != nil {
		t.Fatalf("AllViewCounts failed: %v", err)
	}
	if len(counts) != 2 {
		t.Errorf("len(counts) = %d, want 2", len(counts))
	}
	if counts["a"] != 1 || counts["b"] != 2 {
		t.Errorf("counts = %v, want map[a:1 b:2]", counts)
	}
}

func TestSettings(t *testing.T) {
	s := setupTestStore(t)

	val, err := s.Setting("missing")
	if err != nil {
		t.Fatalf("Setting failed: %v", err)
	}
	if val != "" {
		t.Errorf("Setting(missing) = %q, want empty", val)
	}

	if err := s.SetSetting("theme", "dark"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	val, err = s.Setting("theme")
	if err != nil {
		t.Fatalf("Setting failed: %v", err)
	}
	if val != "dark" {
		t.Errorf("Setting(theme) = %q, want dark", val)
	}

	// Upsert.
	if err := s.SetSetting("theme", "light"); err != nil {
		t.Fatalf("SetSetting upsert failed: %v", err)
	}
	val, _ = s.Setting("theme")
	if val != "light" {
		t.Errorf("Setting(theme) = %q, want light", val)
	}
}

func TestChatMaintenanceDefaultsFalse(t *testing.T) {
	s := setupTestStore(t)

	enabled, err := s.ChatMaintenance()
	if err != nil {
		t.Fatalf("ChatMaintenance failed: %v", err)
	}
	if enabled {
		t.Error("fresh store should have maintenance disabled")
	}
}

func TestChatMaintenanceToggle(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SetChatMaintenance(true); err != nil {
		t.Fatalf("SetChatMaintenance failed: %v", err)
	}
	enabled, err := s.ChatMaintenance()
	if err != nil {
		t.Fatalf("ChatMaintenance failed: %v", err)
	}
	if !enabled {
		t.Error("maintenance should be enabled after SetChatMaintenance(true)")
	}

	if err := s.SetChatMaintenance(false); err != nil {
		t.Fatalf("SetChatMaintenance failed: %v", err)
	}
	enabled, _ = s.ChatMaintenance()
	if enabled {
		t.Error("maintenance should be disabled after SetChatMaintenance(false)")
	}
}

func TestSaveAndListImages(t *testing.T) {
	s := setupTestStore(t)

	img := Image{
		Filename:     "sunset.jpg",
		OriginalName: "IMG_2041.jpeg",
		Width:        800,
		Height:       600,
		Size:         123456,
		UploadedAt:   "2025-06-01T12:00:00Z",
	}
	if err := s.SaveImage(img); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	images, err := s.ListImages()
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("len(images) = %d, want 1", len(images))
	}
	if images[0] != img {
		t.Errorf("image = %+v, want %+v", images[0], img)
	}

	if err := s.DeleteImage("sunset.jpg"); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	images, _ = s.ListImages()
	if len(images) != 0 {
		t.Errorf("len(images) = %d after delete, want 0", len(images))
	}
}
