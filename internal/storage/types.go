package storage

import (
	"sync"
	"sync/atomic"

	"jkvs/internal/persistence/journal"

	"golang.org/x/sync/singleflight"
)

// NumShards — число партиций ключевого пространства.
// Хеш детерминирован в пределах процесса; на диске от индекса
// шарда ничего не зависит.
const NumShards = 16

// Item — запись кеша: значение + абсолютный срок жизни.
// Ключи покидают кеш только по TTL или явному DEL.
type Item struct {
	Value    string
	ExpireAt int64 // Unix ms; 0 = вечный ключ
}

// shard — одна партиция: эксклюзивный мьютекс + map.
// Мьютекс держится только на время чистой работы с map —
// никакого I/O под ним, кроме эмита snapshot-а при компакции.
type shard struct {
	mu    sync.Mutex
	items map[string]*Item
}

// Store — шардированное in-memory хранилище поверх журнала.
// Журнал — единственное durable-состояние: шарды целиком
// восстанавливаются из него при старте.
//
// Порядок взятия локов, когда нужны оба: сначала мьютекс шарда,
// потом мьютекс журнала. Два шардовых мьютекса одновременно не
// берутся нигде, включая компакцию.
type Store struct {
	shards  [NumShards]*shard
	journal *journal.Journal // nil = memory-only режим

	compacting       atomic.Bool
	compactThreshold int64
	sf               singleflight.Group

	once sync.Once
}
