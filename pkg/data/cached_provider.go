package data

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ducminhle1904/stock-signal-backtest/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string]*types.Series
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]*types.Series),
	}
}

// Get returns a copy of the cached series
func (c *MemoryCache) Get(key string) (*types.Series, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	series, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	return copySeries(series), true
}

// Set stores a copy of series
func (c *MemoryCache) Set(key string, series *types.Series) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = copySeries(series)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]*types.Series)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

func copySeries(s *types.Series) *types.Series {
	bars := make([]types.Bar, len(s.Bars))
	copy(bars, s.Bars)
	return types.NewSeries(s.Symbol, bars)
}

// CachedProvider wraps another DataProvider with caching functionality
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
	logger   *zap.Logger
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider, logger *zap.Logger) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache(), logger)
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadSeries loads data with caching, keyed by source and symbol
func (p *CachedProvider) LoadSeries(source, symbol string) (*types.Series, error) {
	key := symbol + "|" + source
	if cached, exists := p.cache.Get(key); exists {
		return cached, nil
	}

	p.logger.Info("🔄 loading historical data", zap.String("file", filepath.Base(source)))
	series, err := p.provider.LoadSeries(source, symbol)
	if err != nil {
		p.logger.Error("❌ failed to load data", zap.String("file", filepath.Base(source)), zap.Error(err))
		return nil, err
	}

	p.cache.Set(key, series)

	p.logger.Info("✅ loaded and cached data", zap.String("file", filepath.Base(source)), zap.Int("bars", series.Len()))
	return series, nil
}
