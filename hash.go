package mempool

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Golden-ratio multipliers for integer key mixing.
const (
	gratio32 = 0x9E3779B9
	gratio64 = 0x9E3779B97F4A7C15
)

// hasher provides type-specific hash functions for table keys.
// String keys use xxHash, integers use multiplicative hashing,
// and other types fall back to string conversion.
type hasher[K comparable] struct{}

// newHasher creates a new hasher instance for the specified key type.
func newHasher[K comparable]() hasher[K] {
	return hasher[K]{}
}

// hash returns a hash value for the given key based on its type.
func (h hasher[K]) hash(key K) uint64 {
	switch k := any(key).(type) {
	case string:
		return h.hashString(k)
	case int:
		return h.hashInteger(uint64(k), gratio32)
	case int8:
		return h.hashInteger(uint64(k), gratio32)
	case int16:
		return h.hashInteger(uint64(k), gratio32)
	case int32:
		return h.hashInteger(uint64(k), gratio32)
	case int64:
		return h.hashInteger(uint64(k), gratio64)
	case uint:
		return h.hashInteger(uint64(k), gratio32)
	case uint8:
		return h.hashInteger(uint64(k), gratio32)
	case uint16:
		return h.hashInteger(uint64(k), gratio32)
	case uint32:
		return h.hashInteger(uint64(k), gratio32)
	case uint64:
		return h.hashInteger(k, gratio64)
	case uintptr:
		return h.hashInteger(uint64(k), gratio64)
	case float32:
		return h.hashInteger(uint64(math.Float32bits(k)), gratio32)
	case float64:
		return h.hashInteger(math.Float64bits(k), gratio64)
	default:
		return h.hashString(fmt.Sprintf("%v", k))
	}
}

// hashString computes an xxHash64 digest for string keys.
func (h hasher[K]) hashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// hashInteger computes multiplicative hash for integer keys.
func (h hasher[K]) hashInteger(value uint64, ratio uint64) uint64 {
	return value * ratio
}
