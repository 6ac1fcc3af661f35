package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/lakerisk/internal/contract"
	"github.com/huangsam/lakerisk/internal/metrics"
	"github.com/huangsam/lakerisk/schema"
)

// Options are the optional collaborators of an Engine.
type Options struct {
	Cache   contract.CacheManager // Attribution cache and run tracking, may be nil
	Metrics *metrics.Recorder     // May be nil
	Workers int                   // Default scoring parallelism, 0 uses contract.DefaultWorkers
}

// ScoreOptions control a single scoring request.
type ScoreOptions struct {
	Order   schema.RankOrder // Empty means adjusted
	Limit   int              // 0 keeps every lake
	Workers int              // 0 uses the engine default
}

// Engine scores species against every reference lake.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	ref        contract.ReferenceStore
	classifier contract.Classifier
	cache      contract.CacheManager
	metrics    *metrics.Recorder
	workers    int

	attrOnce sync.Once
	attr     schema.FeatureAttribution
}

// NewEngine validates the classifier's declared input columns once and returns a ready engine.
func NewEngine(ref contract.ReferenceStore, classifier contract.Classifier, opts Options) (*Engine, error) {
	if ref == nil {
		return nil, newError(KindPredictionFailed, nil, "reference data unavailable")
	}
	if classifier == nil {
		return nil, newError(KindPredictionFailed, nil, "classifier unavailable")
	}
	if err := checkInputColumns(classifier.InputColumns()); err != nil {
		return nil, newError(KindPredictionFailed, err, "classifier artifact unavailable or incompatible")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}
	return &Engine{
		ref:        ref,
		classifier: classifier,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		workers:    max(workers, 1),
	}, nil
}

func checkInputColumns(columns []string) error {
	if len(columns) == 0 {
		return errors.New("no input columns declared")
	}
	for _, col := range columns {
		if _, ok := schema.LookupColumn(col); !ok {
			return fmt.Errorf("unknown input column %q", col)
		}
	}
	return nil
}

// Model describes the classifier in use.
func (e *Engine) Model() schema.ModelInfo {
	return e.classifier.Describe()
}

func (e *Engine) runStore() contract.RunStore {
	if e.cache == nil {
		return nil
	}
	return e.cache.GetRunStore()
}

func (e *Engine) attributionStore() contract.CacheStore {
	if e.cache == nil {
		return nil
	}
	return e.cache.GetAttributionStore()
}
