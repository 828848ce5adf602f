package server

import (
	"net"

	"jkvs/internal/storage"
)

// Server — TCP-сервер JKVS. Принимает текстовые и length-prefixed
// команды, по горутине на соединение.
type Server struct {
	addr     string
	store    *storage.Store
	listener net.Listener
	stopCh   chan struct{}
}
