package rediskeys

import "testing"

func TestCacheKey(t *testing.T) {
	if got := CacheKey("recordCache", "42"); got != "recordCache:42" {
		t.Fatalf("CacheKey mismatch: got %q", got)
	}
	if got := NamespacePattern("categoryCache"); got != "categoryCache:*" {
		t.Fatalf("NamespacePattern mismatch: got %q", got)
	}
}
