package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// BuildQueryCacheKey hashes an arbitrary key structure into a stable hex
// digest. Callers pass the components that define the query's identity;
// JSON serialization keeps the digest stable across runs.
func BuildQueryCacheKey(key interface{}) string {
	data, err := json.Marshal(key)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", key))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// QueryTotalCacheKey namespaces a query hash for total-count entries.
func QueryTotalCacheKey(hash string) string {
	return "adminsgrid:query:total:" + hash
}
