package batch

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"jkvs/internal/protocol"
)

// recordingApplier запоминает применённые команды.
type recordingApplier struct {
	mu   sync.Mutex
	cmds []protocol.Command
}

func (r *recordingApplier) Apply(cmd protocol.Command) {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmd)
	r.mu.Unlock()
}

func (r *recordingApplier) snapshot() []protocol.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]protocol.Command, len(r.cmds))
	copy(out, r.cmds)
	return out
}

func setCmd(key, value string) protocol.Command {
	return protocol.Command{Kind: protocol.KindSet, Key: key, Value: value, Valid: true}
}

func TestIntervalFlush(t *testing.T) {
	applier := &recordingApplier{}
	b := New(applier)
	defer b.Close()

	b.Add(setCmd("k", "v"))

	// фоновый flusher сливает батч в пределах пары интервалов
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if len(applier.snapshot()) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("batch not flushed by background flusher")
}

func TestThresholdFlushIsSynchronous(t *testing.T) {
	applier := &recordingApplier{}

	// без фонового flusher-а — проверяем именно порог
	b := &Batcher{
		store:  applier,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	for i := 0; i < SizeThreshold-1; i++ {
		b.Add(setCmd("k"+strconv.Itoa(i), "v"))
	}
	if got := len(applier.snapshot()); got != 0 {
		t.Fatalf("batch drained before threshold: %d", got)
	}

	// порог: drain происходит внутри Add
	b.Add(setCmd("last", "v"))

	if got := len(applier.snapshot()); got != SizeThreshold {
		t.Fatalf("expected %d applied commands right after threshold, got %d",
			SizeThreshold, got)
	}
}

func TestDrainPreservesOrder(t *testing.T) {
	applier := &recordingApplier{}
	b := New(applier)

	const n = 30
	for i := 0; i < n; i++ {
		b.Add(setCmd("k", strconv.Itoa(i)))
	}
	b.Close()

	cmds := applier.snapshot()
	if len(cmds) != n {
		t.Fatalf("expected %d commands, got %d", n, len(cmds))
	}
	for i, cmd := range cmds {
		if cmd.Value != strconv.Itoa(i) {
			t.Fatalf("order broken at %d: %q", i, cmd.Value)
		}
	}
}

func TestCloseDrainsRemainder(t *testing.T) {
	applier := &recordingApplier{}
	b := New(applier)

	b.Add(setCmd("a", "1"))
	b.Add(protocol.Command{Kind: protocol.KindDel, Key: "b", Valid: true})
	b.Close()

	if got := len(applier.snapshot()); got != 2 {
		t.Fatalf("close must drain pending commands, got %d", got)
	}

	// повторный Close — no-op
	b.Close()
}

func TestNonWriteAppliedImmediately(t *testing.T) {
	applier := &recordingApplier{}
	b := New(applier)
	defer b.Close()

	b.Add(protocol.Command{Kind: protocol.KindGet, Key: "k", Valid: true})

	if got := len(applier.snapshot()); got != 1 {
		t.Fatalf("non-write must bypass the batch, got %d applied", got)
	}
}
