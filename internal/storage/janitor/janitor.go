package janitor

import (
	"time"

	"jkvs/internal/storage"
)

/*

	Один поток на Store. Тикеры:
	  журнал → ОС: каждые 100 ms (пока идёт компакция — пропуск);
	  fsync: каждый 10-й тик (~1 s);
	  проверка порога компакции: каждый 600-й тик (~60 s).

*/

const (
	flushInterval = 100 * time.Millisecond
	syncEvery     = 10  // тиков
	compactEvery  = 600 // тиков
)

// New создаёт janitor для хранилища.
func New(store *storage.Store) *Janitor {
	return &Janitor{
		store:  store,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start запускает фоновый поток.
func (j *Janitor) Start() {
	go j.run()
}

// Stop останавливает поток и дожидается его завершения.
func (j *Janitor) Stop() {
	close(j.stopCh)
	<-j.done
}

func (j *Janitor) run() {
	defer close(j.done)

	flushTicker := time.NewTicker(flushInterval)
	defer flushTicker.Stop()

	ticks := 0

	for {
		select {
		case <-flushTicker.C:
			if j.store.Compacting() {
				continue
			}

			j.store.FlushJournal()

			ticks++
			if ticks%syncEvery == 0 {
				j.store.SyncJournal()
			}
			if ticks%compactEvery == 0 {
				j.store.MaybeCompact()
			}

		case <-j.stopCh:
			j.store.FlushJournal()
			j.store.SyncJournal()
			return
		}
	}
}
