package rcflp

import (
	"strconv"

	"github.com/maypok86/otter"
	"go.uber.org/zap"
)

// MinCacheCapacity is the smallest capacity the instance cache runs with.
// Below it otter admits no entries at all.
const MinCacheCapacity = 10

// InstanceCache keeps parsed instances so that scoring several solutions
// against the same scenario files reads each file once.
type InstanceCache struct {
	cache    otter.Cache[string, *Instance]
	logger   *zap.Logger
	rejected int64
}

// NewInstanceCache builds a cache holding up to capacity instances. Smaller
// capacities are raised to MinCacheCapacity.
func NewInstanceCache(capacity int, logger *zap.Logger) (*InstanceCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity > 0 && capacity < MinCacheCapacity {
		logger.Debug("raising instance cache capacity",
			zap.Int("requested", capacity),
			zap.Int("capacity", MinCacheCapacity))
		capacity = MinCacheCapacity
	}
	builder, err := otter.NewBuilder[string, *Instance](capacity)
	if err != nil {
		return nil, err
	}
	cache, err := builder.CollectStats().Build()
	if err != nil {
		return nil, err
	}
	return &InstanceCache{cache: cache, logger: logger}, nil
}

func cacheKey(path string, format Format) string {
	return strconv.Itoa(int(format)) + ":" + path
}

// Get returns the instance at path, reading it on a miss.
func (c *InstanceCache) Get(path string, format Format) (*Instance, error) {
	key := cacheKey(path, format)
	if inst, ok := c.cache.Get(key); ok {
		return inst, nil
	}
	inst, err := ReadInstance(path, format)
	if err != nil {
		return nil, err
	}
	if !c.cache.Set(key, inst) {
		c.rejected++
		c.logger.Warn("instance not cached", zap.String("file", path))
	}
	return inst, nil
}

func (c *InstanceCache) Hits() int64 {
	return c.cache.Stats().Hits()
}

func (c *InstanceCache) Misses() int64 {
	return c.cache.Stats().Misses()
}

// Rejected counts the instances the cache refused to keep.
func (c *InstanceCache) Rejected() int64 {
	return c.rejected
}

func (c *InstanceCache) Close() {
	c.cache.Close()
}
