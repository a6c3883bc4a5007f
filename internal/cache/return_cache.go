package cache

import (
	"context"
	"log"
	"sync"

	"github.com/groow-platform/returns-service/internal/metrics"
	"github.com/groow-platform/returns-service/internal/returns"
)

type ReturnLister interface {
	ListReturns(ctx context.Context, f returns.Filter) ([]*returns.ReturnRequest, error)
}

// ReturnCache keeps open (non-terminal) return requests in memory. Entries
// are copied on read and write so callers never share the cached value.
type ReturnCache struct {
	mu    sync.RWMutex
	cache map[string]*returns.ReturnRequest
	store ReturnLister
}

func NewReturnCache(store ReturnLister) *ReturnCache {
	return &ReturnCache{
		cache: make(map[string]*returns.ReturnRequest),
		store: store,
	}
}

func (c *ReturnCache) LoadInitialData(ctx context.Context) error {
	log.Println("Loading open return requests into cache...")
	reqs, err := c.store.ListReturns(ctx, returns.Filter{})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, req := range reqs {
		if returns.IsTerminal(req.Status) {
			continue
		}
		reqCopy := *req
		c.cache[req.ID] = &reqCopy
	}
	metrics.ReturnCacheItems.Set(float64(len(c.cache)))
	log.Printf("Loaded %d open return requests into cache.", len(c.cache))
	return nil
}

func (c *ReturnCache) Get(id string) (*returns.ReturnRequest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	req, found := c.cache[id]
	if !found {
		return nil, false
	}
	reqCopy := *req
	return &reqCopy, true
}

// Set stores the request, or evicts it once it reached a terminal status.
func (c *ReturnCache) Set(req *returns.ReturnRequest) {
	if returns.IsTerminal(req.Status) {
		c.Delete(req.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	reqCopy := *req
	c.cache[req.ID] = &reqCopy
	metrics.ReturnCacheItems.Set(float64(len(c.cache)))
}

func (c *ReturnCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[id]; found {
		delete(c.cache, id)
		metrics.ReturnCacheItems.Set(float64(len(c.cache)))
	}
}
