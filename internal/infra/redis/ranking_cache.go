package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claudio1988-dev/talatrivia/internal/domain"
)

// RankingCache keeps computed leaderboards in Redis so repeated ranking reads
// skip the ledger. Entries are stored as: SET trivia:{id}:ranking {json}.
// A completed submission invalidates the key; reads tolerate brief staleness.
type RankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRankingCache(client *redis.Client, ttl time.Duration) *RankingCache {
	return &RankingCache{client: client, ttl: ttl}
}

func (c *RankingCache) Get(ctx context.Context, triviaID int64) (domain.Ranking, bool) {
	raw, err := c.client.Get(ctx, c.key(triviaID)).Bytes()
	if err != nil {
		return domain.Ranking{}, false
	}
	var ranking domain.Ranking
	if err := json.Unmarshal(raw, &ranking); err != nil {
		return domain.Ranking{}, false
	}
	return ranking, true
}

func (c *RankingCache) Set(ctx context.Context, triviaID int64, ranking domain.Ranking) {
	raw, err := json.Marshal(ranking)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key(triviaID), raw, c.ttlWithJitter()).Err()
}

func (c *RankingCache) Invalidate(ctx context.Context, triviaID int64) {
	_ = c.client.Del(ctx, c.key(triviaID)).Err()
}

func (c *RankingCache) key(triviaID int64) string {
	return "trivia:" + strconv.FormatInt(triviaID, 10) + ":ranking"
}

func (c *RankingCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
