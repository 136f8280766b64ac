package markov

import "sync"

// Store is the persistence boundary the cache reads and writes through.
// Absence of bytes for a user is normal and means "no model yet".
type Store interface {
	ModelBytes(userID string) ([]byte, bool)
	SaveModel(userID string, data []byte) error
}

// Cache holds at most one live Model per user for the process lifetime.
// Repeated Get calls for the same user return the identical instance, so
// in-memory state stays consistent between training and generation.
// Entries are never evicted; memory grows with the number of distinct
// users seen, which is an accepted tradeoff.
type Cache struct {
	mu     sync.RWMutex
	models map[string]*Model
	store  Store
	opts   Options
}

// NewCache creates a cache backed by store. opts shape models created
// for users with no persisted state; restored models keep the
// parameters they were persisted with.
func NewCache(store Store, opts Options) *Cache {
	return &Cache{
		models: make(map[string]*Model),
		store:  store,
		opts:   opts,
	}
}

// Get returns the model for userID, loading it from the store on first
// access. Missing or malformed persisted bytes produce an empty model.
func (c *Cache) Get(userID string) *Model {
	c.mu.RLock()
	m := c.models[userID]
	c.mu.RUnlock()
	if m != nil {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m = c.models[userID]; m != nil {
		return m
	}

	m = New(c.opts)
	if data, ok := c.store.ModelBytes(userID); ok {
		m.Restore(Decode(data))
	}
	c.models[userID] = m
	return m
}

// Save writes the model's encoded snapshot through to the store. The
// in-memory instance stays cached either way.
func (c *Cache) Save(userID string, m *Model) error {
	return c.store.SaveModel(userID, Encode(m.Snapshot()))
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}
