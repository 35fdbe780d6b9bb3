package news

import (
	"context"
	"errors"
	"sync"
	"time"

	"macro-picks/internal/interfaces"
	"macro-picks/internal/logger"
)

var (
	// ErrNoHeadlines is returned when no source yielded a usable headline.
	ErrNoHeadlines = errors.New("no headlines scraped")
	// ErrDisabled is returned when the news service is switched off.
	ErrDisabled = errors.New("news service disabled")
)

// HeadlineSource is anything that can produce headlines; *Scraper in production.
type HeadlineSource interface {
	Scrape(ctx context.Context, limit int) ([]Headline, error)
}

// Service composes macro narratives from scraped headlines with caching
type Service struct {
	source HeadlineSource
	cache  *narrativeCache
	cfg    ServiceConfig
}

var _ interfaces.NarrativeSource = (*Service)(nil)

// ServiceConfig configures the news narrative service
type ServiceConfig struct {
	MaxHeadlines   int           // Maximum headlines folded into a narrative
	CacheDuration  time.Duration // How long to cache a narrative per date
	ScraperTimeout time.Duration // Timeout for each source request
	Enabled        bool
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxHeadlines:   12,
		CacheDuration:  1 * time.Hour,
		ScraperTimeout: 15 * time.Second,
		Enabled:        true,
	}
}

// narrativeCache stores composed narratives temporarily, keyed by date
type narrativeCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

type cacheEntry struct {
	narrative string
	timestamp time.Time
}

// newNarrativeCache creates a cache and starts its cleanup goroutine
func newNarrativeCache(ttl, cleanupEvery time.Duration) *narrativeCache {
	cache := &narrativeCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		done: make(chan struct{}),
	}

	go cache.cleanupLoop(cleanupEvery)

	return cache
}

// get retrieves a cached narrative if still valid
func (c *narrativeCache) get(key string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return cacheEntry{}, false
	}
	return *entry, true
}

func (c *narrativeCache) set(key, narrative string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{narrative: narrative, timestamp: time.Now()}
}

// cleanupLoop periodically removes expired entries until close
func (c *narrativeCache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries
func (c *narrativeCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}
}

func (c *narrativeCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *narrativeCache) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// NewService creates a narrative service over source. Call Close when done.
func NewService(source HeadlineSource, cfg ServiceConfig) *Service {
	def := DefaultServiceConfig()
	if cfg.MaxHeadlines <= 0 {
		cfg.MaxHeadlines = def.MaxHeadlines
	}
	if cfg.CacheDuration <= 0 {
		cfg.CacheDuration = def.CacheDuration
	}

	return &Service{
		source: source,
		cache:  newNarrativeCache(cfg.CacheDuration, cleanupInterval(cfg.CacheDuration)),
		cfg:    cfg,
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < 10*time.Minute {
		return ttl
	}
	return 10 * time.Minute
}

// Narrative returns the macro narrative for date, cached or freshly scraped.
// The date only keys the cache; sources always serve their latest headlines.
func (s *Service) Narrative(ctx context.Context, date string) (string, error) {
	if !s.cfg.Enabled {
		return "", ErrDisabled
	}

	if cached, ok := s.cache.get(date); ok {
		logger.Info(ctx, "Using cached narrative", "date", date,
			"age_minutes", time.Since(cached.timestamp).Minutes())
		return cached.narrative, nil
	}

	logger.Info(ctx, "Composing fresh macro narrative", "date", date)
	return s.Refresh(ctx, date)
}

// Refresh scrapes and composes a narrative for date, bypassing the cache.
func (s *Service) Refresh(ctx context.Context, date string) (string, error) {
	headlines, err := s.source.Scrape(ctx, s.cfg.MaxHeadlines)
	if err != nil {
		return "", err
	}

	narrative := ComposeNarrative(headlines, s.cfg.MaxHeadlines)
	if narrative == "" {
		return "", ErrNoHeadlines
	}

	s.cache.set(date, narrative)
	return narrative, nil
}

// ClearCache removes all cached narratives
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// Close stops the cache cleanup goroutine. It is safe to call more than once.
func (s *Service) Close() {
	s.cache.close()
}
