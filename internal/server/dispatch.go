package server

import (
	"bytes"

	"jkvs/internal/batch"
	"jkvs/internal/metrics"
	"jkvs/internal/protocol"
	"jkvs/internal/storage"
)

var (
	replyOK      = []byte("OK\n")
	replyNil     = []byte("(nil)\n")
	replyUnknown = []byte("ERROR: Unknown command\n")
)

// Dispatcher — маршрутизация распарсенной команды в операцию
// хранилища и форматирование ответа. Все ответы оканчиваются \n.
type Dispatcher struct {
	store   *storage.Store
	batcher *batch.Batcher
}

// NewDispatcher создаёт dispatcher для соединения.
func NewDispatcher(store *storage.Store, batcher *batch.Batcher) *Dispatcher {
	return &Dispatcher{store: store, batcher: batcher}
}

// Dispatch выполняет команду и возвращает байты ответа.
// Записи уходят в batcher и подтверждаются OK сразу, не дожидаясь
// применения к хранилищу.
func (d *Dispatcher) Dispatch(cmd protocol.Command) []byte {
	if !cmd.Valid {
		return replyUnknown
	}

	switch cmd.Kind {
	case protocol.KindSet, protocol.KindDel:
		d.batcher.Add(cmd)
		return replyOK

	case protocol.KindGet:
		val, found := d.store.Get(cmd.Key)
		if !found {
			return replyNil
		}
		reply := make([]byte, 0, len(val)+1)
		reply = append(reply, val...)
		return append(reply, '\n')

	case protocol.KindMGet:
		results := d.store.MGet(cmd.Keys)
		var buf bytes.Buffer
		for i, r := range results {
			if i > 0 {
				buf.WriteByte(' ')
			}
			if r.Found {
				buf.WriteString(r.Value)
			} else {
				buf.WriteString("(nil)")
			}
		}
		buf.WriteByte('\n')
		return buf.Bytes()

	case protocol.KindCompact:
		d.store.Compact()
		return replyOK

	case protocol.KindStats:
		return append(metrics.Default().ToJSON(), '\n')

	default:
		return replyUnknown
	}
}
