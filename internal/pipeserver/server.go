package pipeserver

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	"github.com/breeze-rmm/sendinput/internal/logging"
)

var log = logging.L("pipeserver")

const (
	// MaxLineBytes caps one newline-terminated payload.
	MaxLineBytes = 64 * 1024

	// DefaultIdleTimeout disconnects clients that send nothing for this long.
	DefaultIdleTimeout = 5 * time.Minute

	rateWindow = time.Second
)

// Sink receives every payload line read from a client. Submit returns false
// when the payload was not accepted. The slice is only valid during the call.
type Sink interface {
	Submit(payload []byte) bool
}

type Options struct {
	// Path is a named pipe (\\.\pipe\name) on Windows and a unix socket
	// path elsewhere.
	Path           string
	MaxConnections int
	// EventsPerSecond limits payloads per connection. 0 disables the limit.
	EventsPerSecond int
	IdleTimeout     time.Duration
}

// Server accepts local connections and forwards newline-delimited JSON
// payloads to a Sink. Clients get no response.
type Server struct {
	opts    Options
	sink    Sink
	limiter *RateLimiter

	listener net.Listener
	ready    chan struct{}

	mu     sync.Mutex
	conns  map[string]net.Conn
	closed bool
	wg     sync.WaitGroup

	nextID   atomic.Uint64
	received atomic.Uint64
	dropped  atomic.Uint64
}

func New(opts Options, sink Sink) *Server {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	s := &Server{
		opts:  opts,
		sink:  sink,
		ready: make(chan struct{}),
		conns: make(map[string]net.Conn),
	}
	if opts.EventsPerSecond > 0 {
		s.limiter = NewRateLimiter(opts.EventsPerSecond, rateWindow)
	}
	return s
}

// Listen starts accepting connections. Blocks until stopChan is closed.
func (s *Server) Listen(stopChan <-chan struct{}) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.mu.Unlock()

	listener, err := listen(s.opts.Path)
	if err != nil {
		return fmt.Errorf("pipeserver: %w", err)
	}
	if s.opts.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.opts.MaxConnections)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	close(s.ready)

	log.Info("listening", logging.KeyPath, s.opts.Path,
		"maxConnections", s.opts.MaxConnections,
		"eventsPerSecond", s.opts.EventsPerSecond)

	go s.acceptLoop(listener)

	<-stopChan
	s.Close()
	s.wg.Wait()
	return nil
}

// Ready is closed once the listener is accepting.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Close stops the listener and disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conns := make([]net.Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	for _, c := range conns {
		c.Close()
	}

	if listener != nil && runtime.GOOS != "windows" {
		os.Remove(s.opts.Path)
	}

	log.Info("pipe server closed",
		"received", s.received.Load(),
		"dropped", s.dropped.Load())
}

func (s *Server) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn("accept error", logging.KeyError, err)
			continue
		}

		id := "conn-" + strconv.FormatUint(s.nextID.Add(1), 10)
		if !s.track(id, conn) {
			conn.Close()
			return
		}
		go s.handleConnection(id, conn)
	}
}

func (s *Server) track(id string, conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[id] = conn
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
	if s.limiter != nil {
		s.limiter.Forget(id)
	}
	s.wg.Done()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) handleConnection(id string, conn net.Conn) {
	defer s.untrack(id)
	defer conn.Close()

	logger := log.With(logging.KeyConn, id)
	logger.Debug("client connected")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineBytes)

	for {
		conn.SetReadDeadline(time.Now().Add(s.opts.IdleTimeout))
		if !scanner.Scan() {
			break
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		s.received.Add(1)

		if s.limiter != nil && !s.limiter.Allow(id) {
			s.dropped.Add(1)
			logger.Debug("payload rate limited", logging.KeyBytes, len(line))
			continue
		}
		if !s.sink.Submit(line) {
			s.dropped.Add(1)
		}
	}

	switch err := scanner.Err(); {
	case err == nil:
		logger.Debug("client disconnected")
	case errors.Is(err, bufio.ErrTooLong):
		logger.Warn("closing client", logging.KeyError, ErrLineTooLong, "limit", MaxLineBytes)
	case s.isClosed(), errors.Is(err, net.ErrClosed):
	default:
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			logger.Debug("client idle, closing")
			return
		}
		logger.Warn("read error", logging.KeyError, err)
	}
}
