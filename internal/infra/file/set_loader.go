package file

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"live-trivia-service/internal/domain"
)

const maxOptions = 6

// SetLoader reads question sets from a directory of JSON files. Files
// that fail to parse and questions that fail validation are skipped with
// a warning so one bad file never takes the catalog down.
type SetLoader struct {
	dir string
}

func NewSetLoader(dir string) *SetLoader {
	return &SetLoader{dir: dir}
}

type setFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Questions []struct {
		Prompt       string   `json:"prompt"`
		Options      []string `json:"options"`
		CorrectIndex *int     `json:"correctIndex"`
	} `json:"questions"`
}

func (l *SetLoader) LoadSets(_ context.Context) ([]domain.QuestionSet, error) {
	entries, err := os.ReadDir(l.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sets []domain.QuestionSet
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(l.dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("failed to read set %s: %v", entry.Name(), err)
			continue
		}
		var parsed setFile
		if err := json.Unmarshal(raw, &parsed); err != nil {
			log.Printf("failed to parse set %s: %v", entry.Name(), err)
			continue
		}
		set := buildSet(entry.Name(), parsed)
		if len(set.Questions) == 0 {
			log.Printf("skipping set %s: no valid questions", entry.Name())
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func buildSet(filename string, parsed setFile) domain.QuestionSet {
	id := parsed.ID
	if id == "" {
		id = strings.TrimSuffix(filename, ".json")
	}
	name := parsed.Name
	if name == "" {
		name = id
	}

	set := domain.QuestionSet{ID: id, Name: name}
	for i, q := range parsed.Questions {
		prompt := strings.TrimSpace(q.Prompt)
		options := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				options = append(options, o)
			}
		}
		if len(options) > maxOptions {
			options = options[:maxOptions]
		}
		if prompt == "" || len(options) < 2 {
			log.Printf("skipping invalid question %d in set %s", i, id)
			continue
		}
		if q.CorrectIndex == nil || *q.CorrectIndex < 0 || *q.CorrectIndex >= len(options) {
			log.Printf("skipping question %d in set %s: bad correctIndex", i, id)
			continue
		}
		set.Questions = append(set.Questions, domain.SetQuestion{
			Prompt:       prompt,
			Options:      options,
			CorrectIndex: *q.CorrectIndex,
		})
	}
	return set
}
