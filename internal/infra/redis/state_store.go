package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const stateKey = "trivia:state"

// StateStore mirrors the serialized game state to a single Redis key.
// Writes are fired after each mutation by the game; the key is read back
// only at process start.
type StateStore struct {
	client *redis.Client
	key    string
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client, key: stateKey}
}

func (s *StateStore) Save(ctx context.Context, blob []byte) error {
	return s.client.Set(ctx, s.key, blob, 0).Err()
}

func (s *StateStore) Load(ctx context.Context) ([]byte, bool, error) {
	blob, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}
