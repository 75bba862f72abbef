package pipeserver

import "errors"

var (
	ErrServerClosed = errors.New("pipeserver: server is closed")
	ErrLineTooLong  = errors.New("pipeserver: payload line exceeds limit")
)
