package redistest

import (
	"strconv"
	"sync"
)

// Store is the keyspace shared by the sessions of one or more servers. Every
// write bumps the key version so WATCH can detect concurrent changes.
type Store struct {
	mutex    sync.Mutex
	data     map[string][]byte
	versions map[string]uint64
}

func NewStore() *Store {
	return &Store{
		data:     make(map[string][]byte),
		versions: make(map[string]uint64),
	}
}

func (store *Store) Get(key string) ([]byte, bool) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	value, exists := store.data[key]
	return value, exists
}

func (store *Store) Set(key string, value []byte) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	store.set(key, value)
}

// SetIf stores value only when the key existence matches mustExist; a nil
// mustExist stores unconditionally.
func (store *Store) SetIf(key string, value []byte, mustExist *bool) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	_, exists := store.data[key]
	if mustExist != nil && *mustExist != exists {
		return false
	}

	store.set(key, value)
	return true
}

func (store *Store) Del(keys ...string) int64 {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	var removed int64

	for _, key := range keys {
		if _, exists := store.data[key]; exists {
			delete(store.data, key)
			store.versions[key]++
			removed++
		}
	}

	return removed
}

func (store *Store) Exists(keys ...string) int64 {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	var count int64

	for _, key := range keys {
		if _, exists := store.data[key]; exists {
			count++
		}
	}

	return count
}

func (store *Store) IncrBy(key string, delta int64) (int64, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	var current int64

	if raw, exists := store.data[key]; exists {
		value, err := strconv.ParseInt(string(raw), 10, 64)
		if hasError(err) {
			return 0, errNotInteger
		}
		current = value
	}

	current += delta
	store.set(key, []byte(strconv.FormatInt(current, 10)))

	return current, nil
}

func (store *Store) Version(key string) uint64 {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	return store.versions[key]
}

func (store *Store) Flush() {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	for key := range store.data {
		store.versions[key]++
	}

	store.data = make(map[string][]byte)
}

func (store *Store) set(key string, value []byte) {
	store.data[key] = append([]byte(nil), value...)
	store.versions[key]++
}
