package token

import (
	"context"
	"testing"

	"github.com/oasislabs/baqend-connector/log"
	"github.com/stretchr/testify/assert"
)

func TestNewStorageMemWithInitialToken(t *testing.T) {
	storage, err := NewStorage(context.Background(), log.NewDiscard(), &Config{
		Provider: ProviderMem,
		Initial:  "initial",
	})

	assert.Nil(t, err)
	assert.Equal(t, "initial", storage.Token())
}

func TestNewStorageRedisUnreachable(t *testing.T) {
	_, err := NewStorage(context.Background(), log.NewDiscard(), &Config{
		Provider: ProviderRedisSingle,
		Addr:     "127.0.0.1:1",
	})

	assert.Error(t, err)
}
