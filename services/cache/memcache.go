package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	apperr "funpay/lotworker/pkg/errors"
)

// MemcacheService implements CacheService using memcache. The fetcher
// stores its rate-limit block keys here so a block survives across
// worker ticks and page handles.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Get retrieves a value from memcache. The error is returned unwrapped:
// a miss is the normal "not blocked" signal for the fetch guard, not a
// failure.
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
	if err != nil {
		return apperr.NewCache(key, "failed to store block key", err)
	}
	return nil
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	if err := m.client.Delete(key); err != nil {
		return apperr.NewCache(key, "failed to delete block key", err)
	}
	return nil
}
