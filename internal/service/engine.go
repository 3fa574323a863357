// Package service implements the hybrid symptom-classification engine:
// a TF-IDF + multinomial naive Bayes statistical path with a confidence
// gate and a deterministic rule-based fallback against the disease
// profile table.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/symptom-intake-server/internal/domain"
	"github.com/symptom-intake-server/internal/modelstore"
)

// Default thresholds for the confidence gate and the fallback matcher.
const (
	DefaultMinConfidence = 0.3
	DefaultFallbackMin   = 0.3
	DefaultCacheSize     = 1024
	DefaultModelKey      = "disease-model"
)

// EngineConfig tunes the classification engine.
type EngineConfig struct {
	// MinConfidence gates acceptance of the statistical result; below it
	// the fallback matcher answers instead.
	MinConfidence float64

	// FallbackMin is the overlap score the best profile must exceed for
	// the fallback matcher to name a disease.
	FallbackMin float64

	// CacheSize bounds the LRU prediction cache. Zero disables caching.
	CacheSize int

	// ModelKey is the blob-store key for persisted models.
	ModelKey string
}

// DefaultEngineConfig returns the standard thresholds.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MinConfidence: DefaultMinConfidence,
		FallbackMin:   DefaultFallbackMin,
		CacheSize:     DefaultCacheSize,
		ModelKey:      DefaultModelKey,
	}
}

// modelSnapshot wraps the active model pointer stored in the atomic value.
// A nil model means the engine has not trained yet.
type modelSnapshot struct {
	model *domain.Model
}

// Engine is the hybrid classification engine. Any number of goroutines may
// call Predict concurrently; training builds a new model off to the side
// and publishes it with a single atomic swap, so readers always observe
// either the fully-old or fully-new model. Retrains are serialized among
// themselves; the last writer wins.
type Engine struct {
	logger   *logrus.Logger
	corpus   domain.CorpusSource
	blobs    domain.BlobStore
	fallback *FallbackMatcher
	config   EngineConfig

	active  atomic.Value // *modelSnapshot
	state   atomic.Int32 // domain.EngineState, for auditing and Info
	trainMu sync.Mutex

	cache *lru.Cache[string, domain.Prediction]
}

// NewEngine constructs an engine with injected disease profiles, corpus
// source and model blob store. Profiles are normalized once; the engine
// never mutates them.
func NewEngine(
	logger *logrus.Logger,
	profiles domain.ProfileTable,
	corpus domain.CorpusSource,
	blobs domain.BlobStore,
	config EngineConfig,
) *Engine {
	// Zero is a meaningful threshold (it disables the gate); only negative
	// values mean "use the default".
	if config.MinConfidence < 0 {
		config.MinConfidence = DefaultMinConfidence
	}
	if config.FallbackMin < 0 {
		config.FallbackMin = DefaultFallbackMin
	}
	if config.ModelKey == "" {
		config.ModelKey = DefaultModelKey
	}

	e := &Engine{
		logger:   logger,
		corpus:   corpus,
		blobs:    blobs,
		fallback: NewFallbackMatcher(profiles, config.FallbackMin),
		config:   config,
	}
	e.active.Store(&modelSnapshot{})
	e.state.Store(int32(domain.StateUntrained))

	if config.CacheSize > 0 {
		// Cache construction only fails on non-positive sizes.
		e.cache, _ = lru.New[string, domain.Prediction](config.CacheSize)
	}

	return e
}

// Predict maps a symptom set to a prediction. It never fails: empty input
// returns the Unknown sentinel, a missing or low-confidence model routes to
// the fallback matcher, and an unmatched query degrades to Unknown.
func (e *Engine) Predict(symptoms domain.SymptomSet) domain.Prediction {
	normalized := symptoms.Normalize()
	if len(normalized) == 0 {
		return domain.Unknown()
	}

	key := normalized.Key()
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return cached
		}
	}

	prediction := e.predict(normalized)
	if e.cache != nil {
		e.cache.Add(key, prediction)
	}
	return prediction
}

func (e *Engine) predict(normalized domain.SymptomSet) domain.Prediction {
	snap := e.active.Load().(*modelSnapshot)
	if snap.model != nil {
		disease, confidence := classify(snap.model, normalized)
		if confidence >= e.config.MinConfidence {
			return domain.Prediction{
				Disease:    disease,
				Confidence: confidence,
				Source:     domain.SourceModel,
			}
		}
		e.logger.WithFields(logrus.Fields{
			"disease":    disease,
			"confidence": confidence,
			"threshold":  e.config.MinConfidence,
		}).Debug("Statistical confidence below gate, using fallback matcher")
	}
	return e.fallback.Match(normalized)
}

// Train pulls the full corpus from the source and fits a replacement model.
// On any failure the previously active model and state are left exactly as
// they were.
func (e *Engine) Train(ctx context.Context) error {
	examples, err := e.corpus.ListTrainingExamples(ctx)
	if err != nil {
		return fmt.Errorf("loading training corpus: %w", err)
	}
	return e.TrainWith(ctx, examples)
}

// TrainWith fits a new model from an explicit corpus and atomically
// replaces the active one. Concurrent Predict calls keep serving the old
// model until the swap.
func (e *Engine) TrainWith(ctx context.Context, corpus []domain.TrainingExample) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	previous := e.state.Load()
	e.state.Store(int32(domain.StateTraining))

	model, err := fitModel(corpus)
	if err != nil {
		e.state.Store(previous)
		e.logger.WithError(err).Warn("Training failed, keeping previous model")
		return err
	}

	e.publish(model)
	e.state.Store(int32(domain.StateTrained))

	e.logger.WithFields(logrus.Fields{
		"examples":   model.ExampleCount,
		"diseases":   len(model.Labels),
		"vocabulary": len(model.Vocabulary),
	}).Info("Model trained successfully")

	return nil
}

// publish swaps in a new model snapshot and drops cached predictions made
// against the old one.
func (e *Engine) publish(model *domain.Model) {
	e.active.Store(&modelSnapshot{model: model})
	if e.cache != nil {
		e.cache.Purge()
	}
}

// Info reports the engine's lifecycle state and the labels the active
// model knows. With no model it lists the fallback profile diseases.
func (e *Engine) Info() domain.EngineInfo {
	snap := e.active.Load().(*modelSnapshot)
	state := domain.EngineState(e.state.Load())

	info := domain.EngineInfo{
		Trained: snap.model != nil,
		State:   state.String(),
	}
	if snap.model != nil {
		info.Diseases = snap.model.Labels
		info.ExampleCount = snap.model.ExampleCount
	} else {
		info.Diseases = e.fallback.Diseases()
	}
	info.DiseaseCount = len(info.Diseases)
	return info
}

// SaveModel serializes the active model into a versioned envelope and
// writes it to the blob store. Persistence is explicit, never automatic
// on retrain.
func (e *Engine) SaveModel(ctx context.Context) error {
	snap := e.active.Load().(*modelSnapshot)
	if snap.model == nil {
		return domain.ErrModelUnavailable
	}

	blob, err := modelstore.Encode(snap.model)
	if err != nil {
		return domain.NewPersistError("save", err)
	}
	if err := e.blobs.Store(ctx, e.config.ModelKey, blob); err != nil {
		return domain.NewPersistError("save", err)
	}

	e.logger.WithFields(logrus.Fields{
		"key":   e.config.ModelKey,
		"bytes": len(blob),
	}).Info("Model saved")
	return nil
}

// LoadModel restores a persisted model and publishes it. Any failure
// (missing blob, corruption, version mismatch) is reported as a persist
// error which callers treat as "no model available" — never fatal.
func (e *Engine) LoadModel(ctx context.Context) error {
	blob, err := e.blobs.Retrieve(ctx, e.config.ModelKey)
	if err != nil {
		return domain.NewPersistError("load", err)
	}

	model, err := modelstore.Decode(blob)
	if err != nil {
		return domain.NewPersistError("load", err)
	}

	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	e.publish(model)
	e.state.Store(int32(domain.StateTrained))

	e.logger.WithFields(logrus.Fields{
		"key":      e.config.ModelKey,
		"diseases": len(model.Labels),
		"examples": model.ExampleCount,
	}).Info("Model loaded from store")
	return nil
}
