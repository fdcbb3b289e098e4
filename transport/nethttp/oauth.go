package nethttp

import (
	"context"
	"sync"

	"github.com/oasislabs/baqend-connector/connector"
	"github.com/oasislabs/baqend-connector/errors"
	"github.com/oasislabs/baqend-connector/log"
	"github.com/oasislabs/baqend-connector/message"
	"github.com/oasislabs/baqend-connector/oauth/core"
)

const supersededEntity = `{"message": "A new OAuth request was sent."}`

// oauthHandle is the handshake a transport is waiting for
type oauthHandle struct {
	receive connector.ReceiveFunc
	sub     core.Subscription
	once    sync.Once

	// done is closed once the handshake is resolved
	done chan struct{}
}

// sendOAuth opens the authorization page and resolves once the
// completion is broadcast on the channel. Only one handshake is
// pending per transport, a new one resolves the previous one with a
// conflict.
func (t *Transport) sendOAuth(ctx context.Context, msg *message.Message, receive connector.ReceiveFunc) error {
	if t.channel == nil || t.opener == nil {
		return errors.New(errors.ErrNoUsableTransport, nil)
	}

	t.mu.Lock()
	previous := t.pending
	t.pending = nil
	t.mu.Unlock()

	if previous != nil {
		t.logger.Debug(ctx, "superseding pending oauth handshake", log.MapFields{
			"call_type": "OAuthSuperseded",
		}, errors.New(errors.ErrOAuthSuperseded, nil))
		t.resolve(previous, &message.Response{
			Status: 409,
			Entity: supersededEntity,
		})
	}

	sub, err := t.channel.Subscribe(ctx)
	if err != nil {
		return errors.New(errors.ErrOAuthChannel, err)
	}

	handle := &oauthHandle{receive: receive, sub: sub, done: make(chan struct{})}
	t.mu.Lock()
	t.pending = handle
	t.mu.Unlock()

	if err := t.opener.Open(ctx, msg.Path()); err != nil {
		t.resolve(handle, nil)
		return err
	}

	go t.awaitOAuth(ctx, handle)
	return nil
}

func (t *Transport) awaitOAuth(ctx context.Context, handle *oauthHandle) {
	select {
	case completion, ok := <-handle.sub.C():
		if !ok {
			t.resolve(handle, nil)
			return
		}

		t.resolve(handle, &message.Response{
			Status:  completion.Status,
			Headers: map[string]string{"content-type": "application/json"},
			Entity:  completion.Entity,
		})

	case <-handle.done:

	case <-ctx.Done():
		t.resolve(handle, nil)
	}
}

// resolve completes the handshake at most once and releases its
// listener. A nil response releases the listener without resolving.
func (t *Transport) resolve(handle *oauthHandle, res *message.Response) {
	handle.once.Do(func() {
		t.mu.Lock()
		if t.pending == handle {
			t.pending = nil
		}
		t.mu.Unlock()
		close(handle.done)

		if res != nil {
			handle.receive(res)
		}

		if err := handle.sub.Close(); err != nil {
			t.logger.Warn(context.Background(), "failed to release oauth listener", log.MapFields{
				"call_type": "OAuthReleaseFailure",
			}, errors.New(errors.ErrOAuthChannel, err))
		}
	})
}

// Pending returns true if an OAuth handshake is waiting for completion
func (t *Transport) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
