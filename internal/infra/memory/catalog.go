package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"live-trivia-service/internal/domain"
)

// SetLoader fetches question sets from a backing source (files, Postgres).
type SetLoader interface {
	LoadSets(ctx context.Context) ([]domain.QuestionSet, error)
}

// Catalog caches the full question-set collection with a TTL to avoid
// repeated source reads.
type Catalog struct {
	loader SetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	sets      []domain.QuestionSet
	byID      map[string]domain.QuestionSet
	expiresAt time.Time
}

func NewCatalog(loader SetLoader, ttl time.Duration) *Catalog {
	return &Catalog{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Catalog) ListSets(ctx context.Context) ([]domain.SetSummary, error) {
	sets, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.SetSummary, 0, len(sets))
	for _, set := range sets {
		summaries = append(summaries, domain.SetSummary{
			ID:            set.ID,
			Name:          set.Name,
			QuestionCount: len(set.Questions),
		})
	}
	return summaries, nil
}

func (c *Catalog) GetSet(ctx context.Context, setID string) (domain.QuestionSet, error) {
	if _, err := c.load(ctx); err != nil {
		return domain.QuestionSet{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if set, ok := c.byID[setID]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrSetNotFound
}

func (c *Catalog) load(ctx context.Context) ([]domain.QuestionSet, error) {
	now := c.clock()

	c.mu.RLock()
	if c.byID != nil && c.expiresAt.After(now) {
		sets := c.sets
		c.mu.RUnlock()
		return sets, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("catalog", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.byID != nil && c.expiresAt.After(now) {
			sets := c.sets
			c.mu.RUnlock()
			return sets, nil
		}
		c.mu.RUnlock()

		sets, err := c.loader.LoadSets(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]domain.QuestionSet, len(sets))
		for _, set := range sets {
			byID[set.ID] = set
		}

		c.mu.Lock()
		c.sets = sets
		c.byID = byID
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return sets, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionSet), nil
}

func (c *Catalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticSetLoader serves a fixed slice of sets (useful for tests/demos).
type StaticSetLoader struct {
	sets []domain.QuestionSet
}

func NewStaticSetLoader(sets []domain.QuestionSet) *StaticSetLoader {
	return &StaticSetLoader{sets: sets}
}

func (l *StaticSetLoader) LoadSets(_ context.Context) ([]domain.QuestionSet, error) {
	return l.sets, nil
}
