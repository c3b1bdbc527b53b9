package server

import "errors"

var (
	ErrBindPermission = errors.New("permission denied binding address")
	ErrAddrInUse      = errors.New("address already in use")
	ErrServerClosed   = errors.New("server closed")
)
