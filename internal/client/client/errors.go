package client

import (
	"errors"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
)

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = common.ErrUnauthorized
	ErrLocalDataNotAvailable = errors.New("no saved operator session on this device")
)
