package redis

import (
	"fmt"
	"strconv"
)

const (
	// KeyMeta is the hash holding the database header (see the meta field names).
	KeyMeta = "restore:meta"
	// KeyPrefixCollection is the prefix for collection keys.
	KeyPrefixCollection = "restore:collection:"
	// KeyAllCollections is the set of all collection IDs.
	KeyAllCollections = "restore:collections:all"
	// KeyPrefixProfile is the prefix for browser profile keys.
	KeyPrefixProfile = "restore:profile:"
	// KeyAllProfiles is the set of all profile IDs.
	KeyAllProfiles = "restore:profiles:all"
	// KeyUsage is the hash of restore counters, keyed by collection ID.
	KeyUsage = "restore:usage"
)

// Fields of KeyMeta.
const (
	fieldVersion       = "version"
	fieldMaxID         = "max_id"
	fieldLastUpdatedID = "last_updated_id"
	fieldLastUpdated   = "last_updated"
	fieldCreatedAt     = "created_at"
	fieldDefaultMode   = "default_browser_mode"
)

// CollectionKey returns the Redis key of a collection.
func CollectionKey(id uint64) string {
	return KeyPrefixCollection + strconv.FormatUint(id, 10)
}

// ProfileKey returns the Redis key of a browser profile.
func ProfileKey(id string) string {
	return KeyPrefixProfile + id
}

// ExtractCollectionID parses the ID back out of a collection key.
func ExtractCollectionID(key string) (uint64, error) {
	if len(key) <= len(KeyPrefixCollection) || key[:len(KeyPrefixCollection)] != KeyPrefixCollection {
		return 0, fmt.Errorf("invalid collection key: %s", key)
	}
	id, err := strconv.ParseUint(key[len(KeyPrefixCollection):], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid collection key %s: %w", key, err)
	}
	return id, nil
}
