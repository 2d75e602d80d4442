package cache

import "time"

// Cache is a small TTL key/value store used for slow-changing catalog data
// (categories, source lists) so every view refresh does not re-fetch them.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
}
