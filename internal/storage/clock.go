package storage

import "time"

// nowMs возвращает текущее время в ms. Все проверки TTL считают
// от него.
func nowMs() int64 {
	return time.Now().UnixMilli()
}
