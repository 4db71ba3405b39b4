package redis

import "fmt"

const (
	// KeyPrefixRC is the prefix for replication controller records
	KeyPrefixRC = "rcapi:rc:"
	// KeyRCSeq is the counter that hands out surrogate ids
	KeyRCSeq = "rcapi:seq:rc"
	// KeyRCsByID is the sorted set of record UUIDs scored by surrogate id
	KeyRCsByID = "rcapi:rcs:by_id"

	// KeyPrefixBay is the prefix for bay keys
	KeyPrefixBay = "rcapi:bay:"
	// KeyAllBays is the key for the set of all bay UUIDs
	KeyAllBays = "rcapi:bays:all"
)

// RCKey returns the Redis key for a replication controller by UUID
func RCKey(uuid string) string {
	return KeyPrefixRC + uuid
}

// BayKey returns the Redis key for a bay by UUID
func BayKey(uuid string) string {
	return KeyPrefixBay + uuid
}

// ExtractRCUUID extracts the record UUID from a Redis key
func ExtractRCUUID(key string) (string, error) {
	if len(key) <= len(KeyPrefixRC) || key[:len(KeyPrefixRC)] != KeyPrefixRC {
		return "", fmt.Errorf("invalid replication controller key: %s", key)
	}
	return key[len(KeyPrefixRC):], nil
}
