package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/lakerisk/core/algo"
	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/schema"
)

// currentCacheVersion defines the version of the cached attribution layout
const currentCacheVersion = 1

// FeatureImportanceBreakdown aggregates the classifier's feature importances into
// the six parameters. It is computed once per engine.
func (e *Engine) FeatureImportanceBreakdown(_ context.Context) (schema.FeatureAttribution, error) {
	e.attrOnce.Do(func() {
		e.attr = e.cachedAttribution()
	})
	return e.attr, nil
}

// MostContributingFeature returns the parameter with the largest aggregated importance.
func (e *Engine) MostContributingFeature(ctx context.Context) (schema.MostContributing, error) {
	attr, err := e.FeatureImportanceBreakdown(ctx)
	if err != nil {
		return schema.MostContributing{}, err
	}
	most, err := algo.MostContributing(attr)
	if err != nil {
		return most, newError(KindPredictionFailed, err, "cannot determine most contributing feature")
	}
	return most, nil
}

// cachedAttribution reads the attribution from the cache store when fresh,
// and otherwise computes and stores it.
func (e *Engine) cachedAttribution() schema.FeatureAttribution {
	store := e.attributionStore()
	if store == nil {
		return algo.Attribute(e.classifier.FeatureImportances())
	}

	key := attributionCacheKey(e.classifier.Describe())
	if result, ok := checkCacheHit(store, key); ok {
		return result
	}

	result := algo.Attribute(e.classifier.FeatureImportances())
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache feature attribution", err)
		}
	}
	return result
}

// checkCacheHit attempts to retrieve and validate a cached attribution
func checkCacheHit(store contract.CacheStore, key string) (schema.FeatureAttribution, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return schema.FeatureAttribution{}, false
	}
	if time.Since(time.Unix(ts, 0)) > contract.AttributionCacheTTL {
		return schema.FeatureAttribution{}, false
	}
	var result schema.FeatureAttribution
	if err := json.Unmarshal(data, &result); err != nil {
		return schema.FeatureAttribution{}, false
	}
	return result, true
}

// attributionCacheKey ties the cache entry to the exact model artifact.
func attributionCacheKey(info schema.ModelInfo) string {
	key := fmt.Sprintf("attribution:%s:%s", info.Checksum, info.Version)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
