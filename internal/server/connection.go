package server

import (
	"bufio"
	"net"

	"jkvs/internal/batch"
	"jkvs/internal/protocol"
)

// handleConnection обрабатывает одно клиентское соединение.
// У каждого соединения свой batcher; при разрыве он сливает
// недоехавшие записи в хранилище.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	batcher := batch.New(s.store)
	defer batcher.Close()

	dispatcher := NewDispatcher(s.store, batcher)

	reader := bufio.NewReaderSize(conn, 64*1024)
	writer := bufio.NewWriterSize(conn, 64*1024)

	for {
		cmd, err := protocol.ReadCommand(reader)
		if err != nil {
			// disconnect или битый фрейм — частичная команда
			// отбрасывается, соединение закрывается
			return
		}

		writer.Write(dispatcher.Dispatch(cmd))
		writer.Flush()
	}
}
