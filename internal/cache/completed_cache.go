package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"memberportal/internal/model"

	"github.com/redis/go-redis/v9"
)

// CompletedCache stores the sanitized final answer set after a successful
// submission, for read-only display. Entries never expire and are never
// mutated after the initial write.
type CompletedCache interface {
	Save(ctx context.Context, surveyID, memberID string, rec *model.CompletedAnswers) error
	Get(ctx context.Context, surveyID, memberID string) (*model.CompletedAnswers, error)
}

type completedCache struct {
	client *redis.Client
}

// NewCompletedCache creates a new completed-answer cache
func NewCompletedCache(client *redis.Client) CompletedCache {
	return &completedCache{client: client}
}

func (c *completedCache) key(surveyID, memberID string) string {
	return fmt.Sprintf("survey:%s:m:%s:completed", surveyID, memberID)
}

func (c *completedCache) Save(ctx context.Context, surveyID, memberID string, rec *model.CompletedAnswers) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(surveyID, memberID), data, 0).Err()
}

func (c *completedCache) Get(ctx context.Context, surveyID, memberID string) (*model.CompletedAnswers, error) {
	data, err := c.client.Get(ctx, c.key(surveyID, memberID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.CompletedAnswers
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
