package port

import "context"

// Cache хранилище с вытеснением по TTL. Записи неизменяемы после Set.
type Cache[V any] interface {
	// Get возвращает значение и признак попадания
	Get(ctx context.Context, key string) (V, bool)

	// Set сохраняет значение с TTL хранилища
	Set(ctx context.Context, key string, value V)
}
