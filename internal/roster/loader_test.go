package roster

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGroupFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	writeGroupFile(t, dir, "stage.yaml", `
id: stage
name: Stage Crew
description: Set construction and scene changes
capacity: 6
`)
	writeGroupFile(t, dir, "lighting.yml", `
id: lighting
name: Lighting
capacity: 3
`)
	// Invalid files are skipped with a warning, not fatal
	writeGroupFile(t, dir, "broken.yaml", `capacity: [not a number`)

	loader := NewLoader()
	if err := loader.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	if loader.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", loader.Len())
	}

	stage := loader.Get("stage")
	if stage == nil {
		t.Fatal("stage group not found")
	}
	if stage.Name != "Stage Crew" {
		t.Errorf("expected name 'Stage Crew', got %q", stage.Name)
	}
	if stage.Capacity != 6 {
		t.Errorf("expected capacity 6, got %d", stage.Capacity)
	}

	// List is ordered by id
	groups := loader.List()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups in list, got %d", len(groups))
	}
	if groups[0].ID != "lighting" || groups[1].ID != "stage" {
		t.Errorf("unexpected list order: %s, %s", groups[0].ID, groups[1].ID)
	}

	ids := loader.IDs()
	if len(ids) != 2 || ids[0] != "lighting" || ids[1] != "stage" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing id is rejected", func(t *testing.T) {
		writeGroupFile(t, dir, "noid.yaml", "name: Nameless\ncapacity: 2\n")

		loader := NewLoader()
		if err := loader.LoadFromFile(filepath.Join(dir, "noid.yaml")); err == nil {
			t.Fatal("expected error for missing id")
		}
	})

	t.Run("negative capacity is rejected", func(t *testing.T) {
		writeGroupFile(t, dir, "negative.yaml", "id: bad\ncapacity: -1\n")

		loader := NewLoader()
		if err := loader.LoadFromFile(filepath.Join(dir, "negative.yaml")); err == nil {
			t.Fatal("expected error for negative capacity")
		}
	})

	t.Run("name defaults to id", func(t *testing.T) {
		writeGroupFile(t, dir, "bare.yaml", "id: wardrobe\ncapacity: 2\n")

		loader := NewLoader()
		if err := loader.LoadFromFile(filepath.Join(dir, "bare.yaml")); err != nil {
			t.Fatalf("LoadFromFile failed: %v", err)
		}
		if g := loader.Get("wardrobe"); g == nil || g.Name != "wardrobe" {
			t.Errorf("expected name to default to id, got %+v", g)
		}
	})
}
