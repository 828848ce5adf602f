package storage

import (
	"log"
	"time"

	"jkvs/internal/metrics"
	"jkvs/internal/persistence/journal"
	"jkvs/internal/protocol"
)

const defaultCompactionThreshold = 100 * 1024 * 1024 // 100 MiB

// New создаёт хранилище поверх журнала. j может быть nil —
// тогда хранилище работает memory-only (journal недоступен).
func New(j *journal.Journal) *Store {
	return NewWithThreshold(j, defaultCompactionThreshold)
}

// NewWithThreshold создаёт хранилище с заданным порогом компакции.
func NewWithThreshold(j *journal.Journal, threshold int64) *Store {
	s := &Store{
		journal:          j,
		compactThreshold: threshold,
	}

	for i := 0; i < NumShards; i++ {
		s.shards[i] = newShard()
	}

	return s
}

// Replay восстанавливает состояние из журнала. Записи применяются
// напрямую к шардам, без дозаписи в журнал. TTL-часы стартуют
// заново: `EX n` считается от момента загрузки.
func (s *Store) Replay() (*journal.ReadResult, error) {
	if s.journal == nil {
		return &journal.ReadResult{}, nil
	}

	return s.journal.Replay(func(cmd protocol.Command) {
		switch cmd.Kind {
		case protocol.KindSet:
			var expireAt int64
			if cmd.TTLSeconds > 0 {
				expireAt = nowMs() + cmd.TTLSeconds*1000
			}
			s.getShard(cmd.Key).put(cmd.Key, cmd.Value, expireAt)
		case protocol.KindDel:
			s.getShard(cmd.Key).del(cmd.Key)
		}
	})
}

// Set устанавливает значение ключа. ttlSeconds <= 0 — вечный ключ.
// Шардовый мьютекс отпускается до записи в журнал: между put и
// дозаписью другой писатель того же ключа может успеть и в шард, и в
// журнал, так что записи одного ключа из разных горутин могут лечь в
// журнал не в том порядке, в каком применились к шарду.
func (s *Store) Set(key, value string, ttlSeconds int64) {
	var expireAt int64
	if ttlSeconds > 0 {
		expireAt = nowMs() + ttlSeconds*1000
	}

	s.getShard(key).put(key, value, expireAt)

	if s.journal != nil {
		if err := s.journal.AppendSet(key, value, ttlSeconds); err != nil {
			// In-memory состояние уже обновлено; потеря durability
			// здесь — документированная слабость
			log.Println("warning: journal append error:", err)
		}
	}
}

// Get возвращает значение по ключу. Задержка меряется по всему
// вызову, промах и попадание считаются в метрики.
func (s *Store) Get(key string) (string, bool) {
	start := time.Now()
	m := metrics.Default()
	m.Request()

	val, found := s.getShard(key).get(key)

	if found {
		m.Hit()
	} else {
		m.Miss()
	}
	m.RecordLatency(uint64(time.Since(start).Microseconds()))

	return val, found
}

// Result — элемент ответа MGet.
type Result struct {
	Value string
	Found bool
}

// MGet — пакетное чтение с сохранением порядка ключей.
//
// Ключи группируются по шардам; мьютексы берутся строго по
// возрастанию индекса шарда и никогда по два сразу — MGet не
// атомарен между шардами и не обязан им быть. Считается один
// latency-сэмпл на вызов; hit/miss счётчики не трогаются.
func (s *Store) MGet(keys []string) []Result {
	start := time.Now()

	results := make([]Result, len(keys))

	var byShard [NumShards][]int
	for i, key := range keys {
		idx := shardIndex(key)
		byShard[idx] = append(byShard[idx], i)
	}

	for idx := 0; idx < NumShards; idx++ {
		if len(byShard[idx]) == 0 {
			continue
		}

		sh := s.shards[idx]
		sh.mu.Lock()
		for _, i := range byShard[idx] {
			val, found := sh.lookupLocked(keys[i])
			results[i] = Result{Value: val, Found: found}
		}
		sh.mu.Unlock()
	}

	metrics.Default().RecordLatency(uint64(time.Since(start).Microseconds()))

	return results
}

// Delete удаляет ключ. DEL-запись попадает в журнал только если
// запись действительно была удалена.
func (s *Store) Delete(key string) bool {
	existed := s.getShard(key).del(key)

	if existed && s.journal != nil {
		if err := s.journal.AppendDel(key); err != nil {
			log.Println("warning: journal append error:", err)
		}
	}

	return existed
}

// Apply применяет уже распарсенную write-команду (путь batcher-а).
func (s *Store) Apply(cmd protocol.Command) {
	switch cmd.Kind {
	case protocol.KindSet:
		s.Set(cmd.Key, cmd.Value, cmd.TTLSeconds)
	case protocol.KindDel:
		s.Delete(cmd.Key)
	}
}

// FlushJournal сбрасывает буфер журнала в ОС.
func (s *Store) FlushJournal() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Flush(); err != nil {
		log.Println("warning: journal flush error:", err)
	}
}

// SyncJournal делает fsync журнала.
func (s *Store) SyncJournal() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Sync(); err != nil {
		log.Println("warning: journal sync error:", err)
	}
}

// Close сбрасывает и закрывает журнал. Идемпотентен.
func (s *Store) Close() {
	s.once.Do(func() {
		if s.journal != nil {
			if err := s.journal.Close(); err != nil {
				log.Println("journal close error:", err)
			}
		}
	})
}
