package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuggestionCache fronts the distinct-value queries with a short-lived Redis
// cache. Suggestion lists change slowly and are requested on every keystroke
// of a search box, so a small TTL takes most of the load off Postgres.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSuggestionCache(client *redis.Client, ttl time.Duration) *SuggestionCache {
	return &SuggestionCache{client: client, ttl: ttl}
}

func suggestionKey(column string) string {
	return fmt.Sprintf("suggestions:%s", column)
}

// Get returns the cached suggestion list for a column, or found=false on a
// miss. Cache errors are reported so the caller can fall through to the
// database.
func (c *SuggestionCache) Get(ctx context.Context, column string) (values []string, found bool, err error) {
	raw, err := c.client.Get(ctx, suggestionKey(column)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read suggestion cache: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached suggestions: %w", err)
	}

	return values, true, nil
}

// Set stores a suggestion list with the cache TTL.
func (c *SuggestionCache) Set(ctx context.Context, column string, values []string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}

	if err := c.client.Set(ctx, suggestionKey(column), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write suggestion cache: %w", err)
	}

	return nil
}
