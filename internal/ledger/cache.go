package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryCacheKey = "ledger:summary:unfiltered"

// SummaryCache stores the unfiltered ledger summary in Redis. It only sits
// behind the same read path it accelerates; the record sources remain the
// source of truth.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache instantiates the cache helper.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Get returns the cached summary when present and decodable.
func (c *SummaryCache) Get(ctx context.Context) (Summary, bool) {
	if c == nil || c.client == nil {
		return Summary{}, false
	}
	raw, err := c.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return Summary{}, false
	}
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return Summary{}, false
	}
	return summary, true
}

// Set stores the summary. Failures are swallowed; the cache is best-effort.
func (c *SummaryCache) Set(ctx context.Context, summary Summary) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, summaryCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the cached summary, typically after a record is posted
// or cancelled.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, summaryCacheKey).Err()
}
