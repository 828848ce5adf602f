package batch

import (
	"sync"
	"time"

	"jkvs/internal/metrics"
	"jkvs/internal/protocol"
)

const (
	// SizeThreshold — размер батча, при котором drain происходит
	// синхронно внутри Add.
	SizeThreshold = 50

	// FlushInterval — период фонового сброса.
	FlushInterval = 10 * time.Millisecond
)

// Applier применяет write-команду к хранилищу.
type Applier interface {
	Apply(cmd protocol.Command)
}

/*

	Batcher — пер-коннекшеновый буфер записей. SET/DEL копятся и
	применяются к хранилищу пачкой: по таймеру (10 ms) или по
	размеру (50 команд).

	Клиент получает OK ДО того, как запись дошла до хранилища и
	журнала. Это осознанное ослабление durability для кешевых
	нагрузок; данным, которые нельзя терять, батчевый путь не
	подходит.

*/

type Batcher struct {
	store Applier

	mu      sync.Mutex
	pending []protocol.Command

	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

// New создаёт batcher и запускает его фоновый flusher.
func New(store Applier) *Batcher {
	b := &Batcher{
		store:  store,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go b.flusher()

	return b
}

// Add буферизует SET/DEL. Любая другая команда применяется к
// хранилищу немедленно. При достижении порога батч сбрасывается
// синхронно, не дожидаясь таймера.
func (b *Batcher) Add(cmd protocol.Command) {
	if !cmd.IsWrite() {
		b.store.Apply(cmd)
		return
	}

	b.mu.Lock()
	b.pending = append(b.pending, cmd)
	full := len(b.pending) >= SizeThreshold
	b.mu.Unlock()

	if full {
		b.Drain()
	}
}

// Drain атомарно забирает накопленный батч и применяет команды к
// хранилищу в исходном порядке. Мьютекс на время применения не
// держится.
func (b *Batcher) Drain() {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	cmds := b.pending
	b.pending = nil
	b.mu.Unlock()

	metrics.Default().RecordBatch(len(cmds))

	for _, cmd := range cmds {
		b.store.Apply(cmd)
	}
}

// Close останавливает flusher, дожидается его и сбрасывает остаток.
func (b *Batcher) Close() {
	b.once.Do(func() {
		close(b.stopCh)
		<-b.done
		b.Drain()
	})
}

// flusher — фоновая горутина, сбрасывает батч каждые FlushInterval.
func (b *Batcher) flusher() {
	defer close(b.done)

	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Drain()
		case <-b.stopCh:
			return
		}
	}
}
