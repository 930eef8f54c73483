// Package cache provides the caching layer for the planning pipeline.
//
// Planning is a pure function of its inputs, so cached stage results are a
// memoization, not state: the same key always maps to the same bytes, and a
// cold cache only costs recomputation. Backends:
//   - file: JSON entries with TTL under the user cache dir (CLI default)
//   - redis: shared backend for multi-instance serve deployments
//   - null: caching disabled
//
// Keys are derived from a sha256 hash of the full input vector via a Keyer,
// so any change to the series geometry, targets, weights, mode or seed misses
// the cache.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind. Plans are cheap to recompute; artifacts (rendered
// charts) cost more and keep longer.
const (
	TTLPlan     = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The boolean reports a hit; a miss is not an
	// error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PlanKeyOpts are the planning inputs that participate in the plan cache key.
type PlanKeyOpts struct {
	Mode          string
	Targets       any
	Weights       any
	Seed          uint64
	Starts        int
	MaxIterations int
}

// ArtifactKeyOpts are the render settings that participate in the artifact
// cache key.
type ArtifactKeyOpts struct {
	Format string
	Width  float64
	Height float64
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// PlanKey generates a key for a plan result given the series hash and
	// the planning options.
	PlanKey(seriesHash string, opts PlanKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact given the plan
	// hash and the render options.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with sha256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// PlanKey generates a key for a plan result.
func (k *DefaultKeyer) PlanKey(seriesHash string, opts PlanKeyOpts) string {
	return hashKey("plan", seriesHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts)
}
