package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives a cache key from an artifact kind and its identifying
// inputs: "<kind>:<sha256 of the JSON-encoded inputs>". Encoding through
// JSON keeps struct-valued inputs stable across field reordering in code.
func hashKey(kind string, parts ...any) string {
	payload, _ := json.Marshal(parts)
	sum := sha256.Sum256(payload)
	return kind + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex-encoded sha256 of data. The positioned-layout cache
// keys hash the serialized graph with it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
