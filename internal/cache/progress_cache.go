package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"memberportal/internal/model"

	"github.com/redis/go-redis/v9"
)

// ProgressCache handles Redis operations for resumable session progress.
// Keys are scoped per survey and member, so concurrent surveys for
// different catalogs never collide. Only one flow controller writes to a
// given key (single session model); this is a documented assumption, not
// an enforced invariant.
type ProgressCache interface {
	SaveSnapshot(ctx context.Context, surveyID, memberID string, snap *model.ProgressSnapshot) error
	GetSnapshot(ctx context.Context, surveyID, memberID string) (*model.ProgressSnapshot, error)
	DeleteSnapshot(ctx context.Context, surveyID, memberID string) error
}

type progressCache struct {
	client *redis.Client
}

// NewProgressCache creates a new progress cache
func NewProgressCache(client *redis.Client) ProgressCache {
	return &progressCache{client: client}
}

func (c *progressCache) key(surveyID, memberID string) string {
	return fmt.Sprintf("survey:%s:m:%s:progress", surveyID, memberID)
}

func (c *progressCache) SaveSnapshot(ctx context.Context, surveyID, memberID string, snap *model.ProgressSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(surveyID, memberID), data, model.SnapshotTTL).Err()
}

func (c *progressCache) GetSnapshot(ctx context.Context, surveyID, memberID string) (*model.ProgressSnapshot, error) {
	data, err := c.client.Get(ctx, c.key(surveyID, memberID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap model.ProgressSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *progressCache) DeleteSnapshot(ctx context.Context, surveyID, memberID string) error {
	return c.client.Del(ctx, c.key(surveyID, memberID)).Err()
}
