package server

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xdg/shellgate/internal/clog"
)

// SocketServer listens on a Unix socket and serves the line-delimited JSON
// protocol. Each connection is an independent session handled on its own
// goroutine, so several connector processes can hold sessions at once and
// their commands execute concurrently.
type SocketServer struct {
	srv        *Server
	socketPath string

	listener net.Listener
	wg       sync.WaitGroup
	shutdown chan struct{}
	mu       sync.Mutex // protects listener and shutdown state
}

// NewSocketServer creates a SocketServer for srv at socketPath.
func NewSocketServer(srv *Server, socketPath string) *SocketServer {
	return &SocketServer{
		srv:        srv,
		socketPath: socketPath,
		shutdown:   make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It creates the parent
// directory if needed and sets socket permissions to 0600.
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	// Remove a stale socket from an earlier run.
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}

	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return err
	}

	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop(listener)

	clog.Info("server: listening on %s", s.socketPath)
	return nil
}

// Stop shuts down the socket server: it stops accepting new connections,
// waits for in-flight sessions to finish, and removes the socket file.
// Stopping an already-stopped server is a no-op.
func (s *SocketServer) Stop() error {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return nil
	}

	close(s.shutdown)
	err := s.listener.Close()
	s.listener = nil
	s.mu.Unlock()

	s.wg.Wait()
	os.Remove(s.socketPath)

	return err
}

// SocketPath returns the path of the Unix socket.
func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

// acceptLoop accepts connections until shutdown.
func (s *SocketServer) acceptLoop(listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				// Could be transient; keep accepting.
				clog.Warn("server: accept failed: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection serves one session: requests in, responses out, one
// JSON document per line, until the peer closes or the server stops.
func (s *SocketServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Unblock the read loop on shutdown.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-s.shutdown:
			cancel()
			_ = conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.srv.Handle(ctx, line)
		if err := writeResponse(conn, resp); err != nil {
			clog.Warn("server: %v", err)
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		clog.Debug("server: connection read ended: %v", err)
	}
}

// DefaultSocketPath is where `shellgate serve --socket` listens unless
// overridden: ~/.local/state/shellgate/gateway.sock.
func DefaultSocketPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "shellgate", "gateway.sock")
}
