package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"live-trivia-service/internal/domain"
)

func TestCatalogCaches(t *testing.T) {
	loader := &countingLoader{
		SetLoader: NewStaticSetLoader([]domain.QuestionSet{sampleSet()}),
	}
	catalog := NewCatalog(loader, time.Minute)

	sets, err := catalog.ListSets(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sets) != 1 || sets[0].ID != "general" || sets[0].QuestionCount != 2 {
		t.Fatalf("unexpected listing: %+v", sets)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := catalog.GetSet(context.Background(), "general"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogUnknownSet(t *testing.T) {
	catalog := NewCatalog(NewStaticSetLoader([]domain.QuestionSet{sampleSet()}), time.Minute)
	if _, err := catalog.GetSet(context.Background(), "nope"); !errors.Is(err, domain.ErrSetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	SetLoader
	calls int
}

func (l *countingLoader) LoadSets(ctx context.Context) ([]domain.QuestionSet, error) {
	l.calls++
	return l.SetLoader.LoadSets(ctx)
}

func sampleSet() domain.QuestionSet {
	return domain.QuestionSet{
		ID:   "general",
		Name: "General Knowledge",
		Questions: []domain.SetQuestion{
			{Prompt: "Largest planet?", Options: []string{"Jupiter", "Mars"}, CorrectIndex: 0},
			{Prompt: "H2O is?", Options: []string{"Salt", "Water"}, CorrectIndex: 1},
		},
	}
}
