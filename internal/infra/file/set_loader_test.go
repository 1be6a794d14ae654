package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadSetsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "general.json", `{
		"name": "General Knowledge",
		"questions": [
			{"prompt": " Largest planet? ", "options": ["Jupiter", " Mars ", ""], "correctIndex": 0},
			{"prompt": "H2O is?", "options": ["Salt", "Water"], "correctIndex": 1}
		]
	}`)

	sets, err := NewSetLoader(dir).LoadSets(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected one set, got %d", len(sets))
	}
	set := sets[0]
	if set.ID != "general" || set.Name != "General Knowledge" {
		t.Fatalf("expected id from filename, got %+v", set)
	}
	if len(set.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(set.Questions))
	}
	if set.Questions[0].Prompt != "Largest planet?" {
		t.Fatalf("expected trimmed prompt, got %q", set.Questions[0].Prompt)
	}
	if len(set.Questions[0].Options) != 2 {
		t.Fatalf("expected blank option dropped, got %v", set.Questions[0].Options)
	}
}

func TestLoadSetsSkipsInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{not json`)
	writeFile(t, dir, "empty.json", `{"questions": []}`)
	writeFile(t, dir, "mixed.json", `{
		"id": "mixed",
		"questions": [
			{"prompt": "", "options": ["a", "b"], "correctIndex": 0},
			{"prompt": "one option", "options": ["a"], "correctIndex": 0},
			{"prompt": "bad index", "options": ["a", "b"], "correctIndex": 7},
			{"prompt": "no index", "options": ["a", "b"]},
			{"prompt": "keeper", "options": ["a", "b"], "correctIndex": 1}
		]
	}`)
	writeFile(t, dir, "notes.txt", "ignored")

	sets, err := NewSetLoader(dir).LoadSets(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected only the mixed set to survive, got %d", len(sets))
	}
	if len(sets[0].Questions) != 1 || sets[0].Questions[0].Prompt != "keeper" {
		t.Fatalf("expected a single valid question, got %+v", sets[0].Questions)
	}
}

func TestLoadSetsMissingDirectory(t *testing.T) {
	sets, err := NewSetLoader(filepath.Join(t.TempDir(), "absent")).LoadSets(context.Background())
	if err != nil {
		t.Fatalf("expected missing dir to be tolerated, got %v", err)
	}
	if len(sets) != 0 {
		t.Fatalf("expected no sets, got %d", len(sets))
	}
}
