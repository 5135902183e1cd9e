package alphavantage

import "sync"

// KeyRotator hands out API keys from a fixed, ordered pool in round-robin order.
// It is safe for concurrent use.
type KeyRotator struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewKeyRotator creates a rotator over keys. The pool is copied.
// An empty pool is a configuration error and panics.
func NewKeyRotator(keys []string) *KeyRotator {
	if len(keys) == 0 {
		panic("alphavantage: key rotator requires at least one API key")
	}
	pool := make([]string, len(keys))
	copy(pool, keys)
	return &KeyRotator{keys: pool}
}

// Next returns the key under the cursor and advances it, wrapping after the last key.
func (r *KeyRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.keys[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.keys)
	return key
}

// Size returns the number of keys in the pool.
func (r *KeyRotator) Size() int {
	return len(r.keys)
}

// maskKey keeps the last four characters so log lines can tell keys apart.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
