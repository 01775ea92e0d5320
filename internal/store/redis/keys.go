package redis

const (
	// KeyPrefixLink is the prefix for link keys
	KeyPrefixLink = "hop:link:"
	// KeyAllLinks is the key for the set of all link IDs, tombstones included
	KeyAllLinks = "hop:links:all"
)

// LinkKey returns the Redis key for a link by ID
func LinkKey(id string) string {
	return KeyPrefixLink + id
}

// AllLinksKey returns the key for the set of all link IDs
func AllLinksKey() string {
	return KeyAllLinks
}
