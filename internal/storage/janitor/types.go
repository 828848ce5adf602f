package janitor

import "jkvs/internal/storage"

// Janitor — фоновый обслуживающий поток хранилища: сброс журнала
// и проверка порога компакции.
type Janitor struct {
	store  *storage.Store
	stopCh chan struct{}
	done   chan struct{}
}
