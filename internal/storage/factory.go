package storage

import "fmt"

// NewStore builds a Store for the named backend: "memory" (or "", the
// default) or "sqlite", which requires the binary to have been built
// with -tags sqlite.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes store if it implements io.Closer-shaped
// Close, a no-op for MemoryStore and a real file-handle release for
// SQLiteStore.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
