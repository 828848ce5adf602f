package server

import (
	"log"
	"net"

	"jkvs/internal/storage"
)

// New создаёт TCP-сервер поверх хранилища.
func New(addr string, store *storage.Store) *Server {
	return &Server{
		addr:   addr,
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Listen запускает accept loop. Блокирует до Shutdown или ошибки
// листенера. Ошибка отдельного accept-а логируется, цикл живёт.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	log.Printf("jkvs listening on %s", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return nil
			default:
			}
			log.Println("accept error:", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Shutdown прекращает приём новых соединений. Живые соединения
// дорабатывают сами; их batcher-ы сливаются при закрытии.
func (s *Server) Shutdown() {
	close(s.stopCh)
	if s.listener != nil {
		s.listener.Close()
	}
}
