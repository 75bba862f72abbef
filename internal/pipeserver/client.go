package pipeserver

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"
)

// DialTimeout bounds Dial when the context has no deadline.
const DialTimeout = 5 * time.Second

// Dial connects to a running server at path.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DialTimeout)
		defer cancel()
	}
	conn, err := dial(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("pipeserver: dial %s: %w", path, err)
	}
	return conn, nil
}

// Send writes each payload as one line to the server at path. Line breaks
// inside a payload are replaced with spaces, which leaves valid JSON
// unchanged.
func Send(ctx context.Context, path string, payloads ...[]byte) error {
	conn, err := Dial(ctx, path)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}

	var buf bytes.Buffer
	for _, p := range payloads {
		line := bytes.TrimSpace(p)
		if len(line) == 0 {
			continue
		}
		if len(line) >= MaxLineBytes {
			return fmt.Errorf("%w (%d bytes)", ErrLineTooLong, len(line))
		}
		buf.Write(bytes.Map(flattenLine, line))
		buf.WriteByte('\n')
	}

	if _, err := conn.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("pipeserver: write: %w", err)
	}
	return nil
}

func flattenLine(r rune) rune {
	if r == '\n' || r == '\r' {
		return ' '
	}
	return r
}
