package storage

// IsExpired проверяет, истёк ли TTL записи.
func (i *Item) IsExpired() bool {
	return i.ExpireAt > 0 && nowMs() > i.ExpireAt
}
