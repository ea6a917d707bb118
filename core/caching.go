package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// currentCacheVersion defines the version of the cached result schema.
// Bump it whenever AnalysisResult or the default policy changes shape.
const currentCacheVersion = 1

// resultCacheKey identifies a run by source, repository, limit, provider and policy.
func resultCacheKey(cfg *contract.Config) string {
	key := fmt.Sprintf("%s:%s:%d:%s:%s",
		cfg.Source,
		cfg.Slug(),
		cfg.Limit,
		cfg.Provider,
		cfg.Policy.Version,
	)
	if cfg.Source == schema.LocalSource {
		key += ":" + cfg.RepoPath
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// checkResultCache returns a fresh cached result, if any.
func checkResultCache(store contract.CacheStore, key string, ttl time.Duration, now time.Time) (*schema.AnalysisResult, time.Duration, bool) {
	if store == nil {
		return nil, 0, false
	}
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil, 0, false // Cache miss
	}
	if version != currentCacheVersion {
		return nil, 0, false
	}
	age := now.Sub(time.Unix(ts, 0))
	if age < 0 || age > ttl {
		return nil, 0, false // stale
	}
	var result schema.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, 0, false
	}
	result.FromCache = true
	return &result, age, true
}

// storeResult writes a result to the cache. Failures only warn.
// cacheable reports whether a result may be served to later runs. Results
// with failed AI batches are recomputed instead.
func cacheable(result schema.AnalysisResult) bool {
	return result.AIProvider == "" || result.TokenUsage.FailedBatches == 0
}

func storeResult(store contract.CacheStore, key string, result schema.AnalysisResult, now time.Time) {
	if store == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		contract.LogWarn("Failed to encode result for caching", err)
		return
	}
	if err := store.Set(key, data, currentCacheVersion, now.Unix()); err != nil {
		contract.LogWarn("Failed to cache result", err)
	}
}
