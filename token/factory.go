package token

import (
	"context"

	"github.com/oasislabs/baqend-connector/log"
)

// NewStorage creates the storage selected by the configuration. A
// configured initial token is only applied when the storage is empty.
func NewStorage(ctx context.Context, logger log.Logger, config *Config) (Storage, error) {
	var storage Storage

	switch config.Provider {
	case ProviderRedisSingle:
		s, err := NewRedisStorage(ctx, logger, config.Addr, config.Props)
		if err != nil {
			return nil, err
		}
		storage = s
	default:
		storage = NewMemStorage("")
	}

	if len(config.Initial) > 0 && len(storage.Token()) == 0 {
		storage.Update(config.Initial)
	}

	return storage, nil
}
