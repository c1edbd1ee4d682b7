package hg

// Store is the persistence substrate: a synchronous string-keyed,
// string-valued store shared by every user. Isolation between users comes
// from key namespacing in Gateway, not from the store.
type Store interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(key string) (value string, found bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Keys returns all keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}
