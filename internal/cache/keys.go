package cache

import "fmt"

// Key formats are part of the external contract: they must stay stable
// across process restarts so warm entries survive deploys.

// SourceKey is the per-adapter cache key: "{source}:{normalized_query}:{year}".
func SourceKey(source, normalizedQuery string, year int) string {
	return KeyPrefix + fmt.Sprintf("%s:%s:%d", source, normalizedQuery, year)
}

// CompositeKey is the whole-response cache key: "search:{fingerprint}".
func CompositeKey(fingerprint string) string {
	return KeyPrefix + "search:" + fingerprint
}
