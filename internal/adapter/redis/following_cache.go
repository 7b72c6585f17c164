package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	followingCacheTTL = 10 * time.Minute

	// emptySetSentinel keeps an empty following set distinguishable
	// from a cache miss (redis deletes empty sets).
	emptySetSentinel = "__none__"
)

// FollowingCache keeps a user's following ids as a redis set so the
// feed's following-only restriction does not hit the document store on
// every re-query. Invalidated whenever the user follows or unfollows.
type FollowingCache struct {
	client *redis.Client
}

func NewFollowingCache(client *redis.Client) *FollowingCache {
	return &FollowingCache{client: client}
}

func followingKey(userID string) string {
	return "following:" + userID
}

// Get returns the cached set and whether it was present.
func (c *FollowingCache) Get(ctx context.Context, userID string) ([]string, bool, error) {
	key := followingKey(userID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, false, err
	}
	if exists == 0 {
		return nil, false, nil
	}
	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, false, err
	}
	ids := members[:0]
	for _, m := range members {
		if m != emptySetSentinel {
			ids = append(ids, m)
		}
	}
	return ids, true, nil
}

func (c *FollowingCache) Store(ctx context.Context, userID string, followingIDs []string) error {
	key := followingKey(userID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(followingIDs) > 0 {
		members := make([]interface{}, len(followingIDs))
		for i, id := range followingIDs {
			members[i] = id
		}
		pipe.SAdd(ctx, key, members...)
	} else {
		pipe.SAdd(ctx, key, emptySetSentinel)
	}
	pipe.Expire(ctx, key, followingCacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *FollowingCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, followingKey(userID)).Err()
}
