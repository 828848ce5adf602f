// Package jkvs предоставляет встраиваемый кеш-сервер с журналом.
//
// Использование без сети (embedded):
//
//	db := jkvs.Open("./data/wal.log")
//	defer db.Close()
//
//	db.Set("key", "value", time.Hour)
//	val, ok := db.Get("key")
//
// Использование с TCP-сервером:
//
//	db := jkvs.Open("./data/wal.log")
//	defer db.Close()
//	db.ListenAndServe(":8080")
//
// Записи, идущие через TCP, подтверждаются клиенту ДО попадания в
// журнал (батчинг на соединении). Для source-of-truth данных это
// не подходит — см. internal/batch.
package jkvs

import (
	"log"
	"time"

	"jkvs/internal/config"
	"jkvs/internal/metrics"
	"jkvs/internal/persistence/journal"
	"jkvs/internal/server"
	"jkvs/internal/storage"
	"jkvs/internal/storage/janitor"
)

// DB — встраиваемый кеш. Создаётся через Open().
type DB struct {
	store   *storage.Store
	janitor *janitor.Janitor
	srv     *server.Server
}

// Open создаёт хранилище с журналом по указанному пути и
// восстанавливает данные из него. Ошибки конструирования (нет
// директории, не открылся файл) — только warning: кеш продолжает
// работать memory-only.
func Open(path string) *DB {
	return OpenWithConfig(path, config.Load())
}

// OpenWithConfig — как Open, с явной конфигурацией.
func OpenWithConfig(path string, cfg config.Config) *DB {
	j, err := journal.New(path)
	if err != nil {
		log.Println("warning: cannot open journal, running memory-only:", err)
		j = nil
	}

	store := storage.NewWithThreshold(j, cfg.CompactionThreshold)

	result, err := store.Replay()
	if err != nil {
		log.Println("warning: journal replay error:", err)
	}
	if result != nil && result.ValidRecords > 0 {
		log.Printf("journal: replayed %d records (%d skipped)",
			result.ValidRecords, result.SkippedRecords)
	}

	jan := janitor.New(store)
	jan.Start()

	return &DB{
		store:   store,
		janitor: jan,
	}
}

// ─── Core Operations ────────────────────────────────────────────────

// Set устанавливает значение с опциональным TTL.
// TTL = 0 означает вечный ключ.
func (db *DB) Set(key, value string, ttl time.Duration) {
	db.store.Set(key, value, int64(ttl/time.Second))
}

// Get возвращает значение по ключу.
func (db *DB) Get(key string) (string, bool) {
	return db.store.Get(key)
}

// Del удаляет ключ. Возвращает true, если запись существовала.
func (db *DB) Del(key string) bool {
	return db.store.Delete(key)
}

// MGet — пакетное чтение с сохранением порядка ключей.
func (db *DB) MGet(keys ...string) []storage.Result {
	return db.store.MGet(keys)
}

// Compact синхронно компактит журнал.
func (db *DB) Compact() error {
	return db.store.Compact()
}

// Stats возвращает снимок метрик в JSON (как команда STATS).
func (db *DB) Stats() []byte {
	return metrics.Default().ToJSON()
}

// ─── TCP Server ─────────────────────────────────────────────────────

// ListenAndServe запускает TCP-сервер. Блокирующий вызов — слушает
// до ошибки или Shutdown через Close.
func (db *DB) ListenAndServe(addr string) error {
	srv := server.New(addr, db.store)
	db.srv = srv
	return srv.Listen()
}

// ─── Lifecycle ──────────────────────────────────────────────────────

// Close останавливает сервер и janitor, сбрасывает и закрывает
// журнал. Всегда вызывай через defer.
func (db *DB) Close() {
	if db.srv != nil {
		db.srv.Shutdown()
	}

	db.janitor.Stop()
	db.store.Close()
}
