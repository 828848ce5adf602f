package storage

import (
	"log"
)

// Compact синхронно компактит журнал: одна SET-запись на живой
// ключ, ноль DEL-записей. Конкурентные вызовы схлопываются в одну
// компакцию через singleflight; уже идущая компакция делает вызов
// no-op-ом.
//
// Гонка «запись в старый журнал теряется при rename» закрыта
// сквозной докаткой: журнал дублирует записи, пришедшие во время
// snapshot-а, в temp-файл (см. journal.Rewrite).
func (s *Store) Compact() error {
	if s.journal == nil {
		return nil
	}

	_, err, _ := s.sf.Do("compact", func() (interface{}, error) {
		if !s.compacting.CompareAndSwap(false, true) {
			return nil, nil
		}
		defer s.compacting.Store(false)

		if err := s.journal.Rewrite(s.snapshotLive); err != nil {
			log.Println("warning: compaction error:", err)
			return nil, err
		}
		return nil, nil
	})

	return err
}

// Compacting возвращает true, пока идёт компакция. Фоновый flusher
// на это время приостанавливает периодические сбросы.
func (s *Store) Compacting() bool {
	return s.compacting.Load()
}

// MaybeCompact запускает компакцию, если журнал превысил порог.
// Вызывается janitor-ом примерно раз в минуту.
func (s *Store) MaybeCompact() {
	if s.journal == nil || s.compacting.Load() {
		return
	}

	size, err := s.journal.Size()
	if err != nil {
		return
	}
	if size > s.compactThreshold {
		s.Compact()
	}
}

// snapshotLive обходит шарды по возрастанию индекса, держа в каждый
// момент не больше одного шардового мьютекса. Живые записи эмитятся
// с остатком TTL (ceil до секунды); истёкшие — и те, чей остаток
// округляется в ноль — удаляются на месте (eager drop).
func (s *Store) snapshotLive(emit func(key, value string, ttlSeconds int64)) {
	for i := 0; i < NumShards; i++ {
		sh := s.shards[i]
		sh.mu.Lock()

		now := nowMs()
		for key, item := range sh.items {
			if item.ExpireAt > 0 && now > item.ExpireAt {
				delete(sh.items, key)
				continue
			}

			var ttl int64
			if item.ExpireAt > 0 {
				ttl = (item.ExpireAt - now + 999) / 1000
				if ttl <= 0 {
					delete(sh.items, key)
					continue
				}
			}

			emit(key, item.Value, ttl)
		}

		sh.mu.Unlock()
	}
}
