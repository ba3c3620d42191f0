package rediskeys

import (
	"fmt"
)

// Separator joins a cache namespace and the entry key.
const Separator = ":"

// CacheKey generates the composite Redis key "<namespace>:<key>" for a cache entry.
func CacheKey(namespace, key string) string {
	return fmt.Sprintf("%s%s%s", namespace, Separator, key)
}

// NamespacePattern generates the glob pattern matching every entry of a namespace.
func NamespacePattern(namespace string) string {
	return CacheKey(namespace, "*")
}
