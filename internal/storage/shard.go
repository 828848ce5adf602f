package storage

import (
	"github.com/cespare/xxhash/v2"
)

func newShard() *shard {
	return &shard{items: make(map[string]*Item)}
}

// shardIndex возвращает индекс шарда для ключа.
func shardIndex(key string) int {
	return int(xxhash.Sum64String(key) % NumShards)
}

// getShard возвращает шард для данного ключа.
func (s *Store) getShard(key string) *shard {
	return s.shards[shardIndex(key)]
}

// put записывает значение. Возвращает true, если ключ новый.
func (sh *shard) put(key, value string, expireAt int64) bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.putLocked(key, value, expireAt)
}

// putLocked — как put, но мьютекс уже взят вызывающим.
func (sh *shard) putLocked(key, value string, expireAt int64) bool {
	if item, exist := sh.items[key]; exist {
		item.Value = value
		item.ExpireAt = expireAt
		return false
	}

	sh.items[key] = &Item{
		Value:    value,
		ExpireAt: expireAt,
	}
	return true
}

// get возвращает значение. Истёкший ключ удаляется на месте (lazy
// eviction) и считается отсутствующим.
func (sh *shard) get(key string) (string, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.lookupLocked(key)
}

// lookupLocked — логика чтения под уже взятым мьютексом.
// Используется get-ом и MGet-ом.
func (sh *shard) lookupLocked(key string) (string, bool) {
	item, exists := sh.items[key]
	if !exists {
		return "", false
	}

	if item.IsExpired() {
		delete(sh.items, key) // lazy eviction
		return "", false
	}

	return item.Value, true
}

// del удаляет ключ. Возвращает true, если запись существовала.
func (sh *shard) del(key string) bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.items[key]; !exists {
		return false
	}
	delete(sh.items, key)
	return true
}
