//go:build !windows

package pipeserver

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
)

func listen(path string) (net.Listener, error) {
	// Stale socket from a previous run.
	os.Remove(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}

	if err := os.Chmod(path, 0770); err != nil {
		listener.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return listener, nil
}

func dial(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
