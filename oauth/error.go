package oauth

import (
	"errors"
	"fmt"
)

var (
	ErrChannelConfigConflict error = errors.New("oauth channel conflict between provider and configuration")

	errNoStatus = errors.New("completion status must be set")
)

type ErrUnknownChannel struct {
	Provider string
}

func (e ErrUnknownChannel) Error() string {
	return fmt.Sprintf("unknown oauth channel provider: %s", e.Provider)
}
