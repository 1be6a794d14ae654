package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"live-trivia-service/internal/domain"
)

const catalogKey = "trivia:catalog"

// SetLoader fetches question sets from a backing source (files, Postgres).
type SetLoader interface {
	LoadSets(ctx context.Context) ([]domain.QuestionSet, error)
}

// Catalog caches the question-set collection in Redis as a single JSON
// blob and falls back to the loader on a miss.
type Catalog struct {
	client *redis.Client
	loader SetLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalog(client *redis.Client, loader SetLoader, ttl time.Duration) *Catalog {
	return &Catalog{
		client: client,
		loader: loader,
		ttl:    ttl,
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
	sets, err := c.load(ctx)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	for _, set := range sets {
		if set.ID == setID {
			return set, nil
		}
	}
	return domain.QuestionSet{}, domain.ErrSetNotFound
}

func (c *Catalog) load(ctx context.Context) ([]domain.QuestionSet, error) {
	if blob, err := c.client.Get(ctx, catalogKey).Bytes(); err == nil {
		var sets []domain.QuestionSet
		if err := json.Unmarshal(blob, &sets); err == nil {
			return sets, nil
		}
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if blob, err := c.client.Get(ctx, catalogKey).Bytes(); err == nil {
			var sets []domain.QuestionSet
			if err := json.Unmarshal(blob, &sets); err == nil {
				return sets, nil
			}
		}

		sets, err := c.loader.LoadSets(ctx)
		if err != nil {
			return nil, err
		}

		if blob, err := json.Marshal(sets); err == nil {
			// best-effort fill; a failed write just means the next call reloads
			_ = c.client.Set(ctx, catalogKey, blob, c.ttlWithJitter()).Err()
		}
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
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
