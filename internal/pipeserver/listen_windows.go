//go:build windows

package pipeserver

import (
	"context"
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
)

// SYSTEM gets full control, interactive users get read/write. Service
// accounts and network logons cannot connect.
const pipeSecurity = "D:P(A;;GA;;;SY)(A;;GRGW;;;IU)"

func listen(path string) (net.Listener, error) {
	cfg := &winio.PipeConfig{
		SecurityDescriptor: pipeSecurity,
		InputBufferSize:    MaxLineBytes,
		OutputBufferSize:   4 * 1024,
	}

	listener, err := winio.ListenPipe(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("listen pipe %s: %w", path, err)
	}
	return listener, nil
}

func dial(ctx context.Context, path string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}
