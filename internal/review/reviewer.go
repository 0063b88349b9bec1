package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"nexo/internal/cache"
	"nexo/internal/model"
	"nexo/internal/store"
)

// Reviewer runs advisory reviews through one provider, rate limited and
// cached so interrupted runs resume without repeating requests.
type Reviewer struct {
	provider Provider
	cache    cache.Cache
	limiter  *rate.Limiter
	config   model.ReviewConfig
}

// NewReviewer builds a reviewer from the runtime configuration. It returns
// (nil, nil) when no provider is configured.
func NewReviewer(cfg model.ReviewConfig) (*Reviewer, error) {
	provider, err := NewProvider(ConfigFromModel(cfg))
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	var c cache.Cache
	if cfg.CacheDir != "" {
		c = cache.NewLayeredCache(ttl, cfg.CacheDir, ttl)
	} else {
		c = cache.NewMemoryCache(ttl, 10*time.Minute)
	}

	return &Reviewer{
		provider: provider,
		cache:    c,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		config:   cfg,
	}, nil
}

// NewReviewerWithProvider wires an explicit provider and cache. Used by tests
// and by callers that manage provider lifecycle themselves.
func NewReviewerWithProvider(provider Provider, c cache.Cache, cfg model.ReviewConfig) *Reviewer {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	if c == nil {
		c = cache.NewMemoryCache(time.Hour, 10*time.Minute)
	}
	return &Reviewer{
		provider: provider,
		cache:    c,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		config:   cfg,
	}
}

// Provider exposes the underlying provider.
func (r *Reviewer) Provider() Provider {
	return r.provider
}

// Review obtains a verdict for one pair, serving cached verdicts when
// available.
func (r *Reviewer) Review(ctx context.Context, pair store.Pair) (*model.Review, error) {
	key := cache.ReviewKey(r.provider.Name(), r.config.Model, pair.Source.RecordID, pair.Death.RecordID)

	if data, found := r.cache.Get(key); found {
		var cached model.Review
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		// Corrupt entry: drop it and re-review.
		_ = r.cache.Delete(key)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.provider.Review(ctx, Request{
		Pair:      pair,
		Model:     r.config.Model,
		MaxTokens: r.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("review pair %s/%s: %w", pair.Source.RecordID, pair.Death.RecordID, err)
	}

	review := &model.Review{
		PersonKey: pair.PersonKey,
		SourceID:  pair.Source.RecordID,
		DeathID:   pair.Death.RecordID,
		Verdict:   resp.Verdict,
		Reasoning: resp.Reasoning,
		Provider:  r.provider.Name(),
		Model:     resp.Model,
		CreatedAt: time.Now().UTC(),
	}

	if data, err := json.Marshal(review); err == nil {
		_ = r.cache.Set(key, data, r.config.CacheTTL)
	}

	return review, nil
}
