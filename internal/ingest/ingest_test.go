package ingest

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeSkills(t *testing.T) {
	set := NormalizeSkills([]string{"Golang", "  Python ", "golang", "REACT", "réact", ""})

	want := []string{"go", "python", "react"}
	if len(set) != len(want) {
		t.Fatalf("expected %v, got %v", want, set)
	}
	for i, skill := range want {
		if set[i] != skill {
			t.Fatalf("expected %v, got %v", want, set)
		}
	}
}

func TestLoadSkills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.txt")
	content := "# my skills\nPython\nSQL\n\ngolang\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing skills file: %v", err)
	}

	set, err := LoadSkills(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"go", "python", "sql"}
	if len(set) != len(want) {
		t.Fatalf("expected %v, got %v", want, set)
	}
	for i, skill := range want {
		if set[i] != skill {
			t.Fatalf("expected %v, got %v", want, set)
		}
	}
}

func TestLoadSkillsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.txt")
	if err := os.WriteFile(path, []byte("# nothing here\n"), 0o644); err != nil {
		t.Fatalf("writing skills file: %v", err)
	}

	if _, err := LoadSkills(path); err == nil {
		t.Fatalf("expected error for empty skills file")
	}
}

const feed = `[
  {"title": "Go Developer", "company": "Acme", "link": "https://boards.greenhouse.io/acme/jobs/1", "criteria": "<li>Go</li>"},
  {"title": "No URL", "company": "Ghost"},
  {"title": "Data Engineer", "company": "Globex", "source_url": "https://example.com/jobs/2", "description": "SQL", "platform": "workday"}
]`

func TestFileSourceNextAndRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	if err := os.WriteFile(path, []byte(feed), 0o644); err != nil {
		t.Fatalf("writing feed: %v", err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer src.Close()

	first, err := src.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Title != "Go Developer" || first.SourceURL != "https://boards.greenhouse.io/acme/jobs/1" {
		t.Fatalf("unexpected first listing: %+v", first)
	}
	if first.Description != "<li>Go</li>" {
		t.Fatalf("expected criteria to populate description, got %q", first.Description)
	}
	if first.ID == "" {
		t.Fatalf("expected derived listing id")
	}

	// The url-less element is skipped.
	second, err := src.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Company != "Globex" || second.PlatformHint != "workday" {
		t.Fatalf("unexpected second listing: %+v", second)
	}

	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	if err := src.Restart(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	again, err := src.Next()
	if err != nil {
		t.Fatalf("unexpected error after restart: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected identical id after restart, got %q and %q", first.ID, again.ID)
	}
}

func TestFileSourceRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	if err := os.WriteFile(path, []byte(`{"title": "not an array"}`), 0o644); err != nil {
		t.Fatalf("writing feed: %v", err)
	}

	if _, err := NewFileSource(path); err == nil {
		t.Fatalf("expected error for non-array feed")
	}
}
