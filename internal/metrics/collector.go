package metrics

import (
	"sync"
	"time"

	"video-library/internal/logging"
)

// CacheStatsProvider reports the current size of the thumbnail cache.
type CacheStatsProvider interface {
	Stats() (count int, sizeBytes int64, err error)
}

// Collector periodically refreshes the thumbnail cache gauges.
type Collector struct {
	provider CacheStatsProvider
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// DefaultCollectInterval replaces a non-positive collector interval.
const DefaultCollectInterval = time.Minute

// NewCollector creates a new metrics collector
func NewCollector(provider CacheStatsProvider, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop in a goroutine.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop ends the collection loop. It is safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}

	count, size, err := c.provider.Stats()
	if err != nil {
		logging.Debug("Metrics: thumbnail cache stats unavailable: %v", err)
		return
	}

	ThumbnailCacheCount.Set(float64(count))
	ThumbnailCacheSize.Set(float64(size))

	logging.Debug("Metrics collected: thumbnails=%d, bytes=%d", count, size)
}
