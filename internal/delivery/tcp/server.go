package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cryptowallet/internal/middleware"
)

const (
	// DefaultReadBufferSize is the per-read receive buffer size
	DefaultReadBufferSize = 16384

	writeTimeout     = 5 * time.Second
	acceptRetryDelay = 100 * time.Millisecond
	eventQueueSize   = 64
)

// ConnState is the lifecycle state of a client connection
type ConnState int

const (
	StateAccepted ConnState = iota
	StateAuthenticated
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateAccepted:
		return "ACCEPTED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

type connection struct {
	id      string
	conn    net.Conn
	session *middleware.Session
	state   ConnState
}

type eventKind int

const (
	eventAccepted eventKind = iota
	eventRead
	eventReadError
)

type event struct {
	kind eventKind
	conn net.Conn
	c    *connection
	data []byte
	err  error
}

// Server multiplexes client connections onto a single dispatch loop.
//
// Each connection has a reader goroutine that only moves bytes off the socket.
// Parsing, dispatch, session changes and writes all happen on the goroutine
// running Serve, one event at a time, so commands from different clients never
// touch the ledger concurrently.
type Server struct {
	addr           string
	readBufferSize int
	router         *Router
	sessions       *middleware.Registry
	logger         *zap.Logger

	listener net.Listener
	events   chan event
	done     chan struct{}
	conns    map[string]*connection

	openConns      atomic.Int64
	activeSessions atomic.Int64
}

// NewServer creates a new Server. A non-positive readBufferSize selects DefaultReadBufferSize.
func NewServer(addr string, readBufferSize int, router *Router, sessions *middleware.Registry, logger *zap.Logger) *Server {
	if readBufferSize <= 0 {
		readBufferSize = DefaultReadBufferSize
	}
	return &Server{
		addr:           addr,
		readBufferSize: readBufferSize,
		router:         router,
		sessions:       sessions,
		logger:         logger,
		events:         make(chan event, eventQueueSize),
		done:           make(chan struct{}),
		conns:          make(map[string]*connection),
	}
}

// Listen binds the listening socket
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// OpenConnections returns the number of open client connections
func (s *Server) OpenConnections() int64 {
	return s.openConns.Load()
}

// ActiveSessions returns the number of logged-in connections
func (s *Server) ActiveSessions() int64 {
	return s.activeSessions.Load()
}

// Serve runs the dispatch loop until a client issues shutdown or ctx is done.
// It binds the socket first if Listen was not called.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer s.stop()

	s.logger.Info("wallet server listening", zap.String("addr", s.listener.Addr().String()))
	go s.acceptLoop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("context done, stopping wallet server")
			return nil
		case ev := <-s.events:
			switch ev.kind {
			case eventAccepted:
				s.open(ev.conn)
			case eventRead:
				if s.handleRead(ev.c, ev.data) {
					s.logger.Info("wallet server shut down by client", zap.String("conn_id", ev.c.id))
					return nil
				}
			case eventReadError:
				s.handleLost(ev.c, ev.err)
			}
			s.updateStats()
		}
	}
}

// ─── loop side ────────────────────────────────────────────────────────────────

func (s *Server) open(conn net.Conn) {
	c := &connection{
		id:    uuid.NewString(),
		conn:  conn,
		state: StateAccepted,
	}
	c.session = s.sessions.Open(c.id)
	s.conns[c.id] = c

	s.logger.Debug("connection accepted",
		zap.String("conn_id", c.id),
		zap.String("remote", conn.RemoteAddr().String()),
	)
	go s.readLoop(c)
}

// handleRead serves one command and reports whether the server must stop
func (s *Server) handleRead(c *connection, data []byte) bool {
	if c.state == StateClosed {
		return false
	}

	cmd := ParseCommand(string(data))
	response := s.router.Dispatch(c.session, cmd)
	if c.session.LoggedIn() {
		c.state = StateAuthenticated
	} else {
		c.state = StateAccepted
	}

	if err := s.write(c, response); err != nil {
		s.handleLost(c, err)
		return false
	}

	if ClosesConnection(response) {
		s.closeConn(c)
	}
	return response == ShutdownMessage
}

// handleLost ends the session of a connection that can no longer be read or written
func (s *Server) handleLost(c *connection, err error) {
	if c.state == StateClosed {
		return
	}

	if isPeerGone(err) {
		s.logger.Debug("connection closed by peer", zap.String("conn_id", c.id), zap.Stringer("state", c.state))
	} else {
		s.logger.Warn("connection failed", zap.String("conn_id", c.id), zap.Stringer("state", c.state), zap.Error(err))
	}

	if c.session.LoggedIn() {
		s.router.Dispatch(c.session, Command{Verb: "disconnect"})
	}
	s.closeConn(c)
}

func (s *Server) write(c *connection, response string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	_, err := c.conn.Write(EncodeResponse(response))
	return err
}

func (s *Server) closeConn(c *connection) {
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	s.sessions.Close(c.id)
	delete(s.conns, c.id)

	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("failed to close connection", zap.String("conn_id", c.id), zap.Error(err))
	}
}

func (s *Server) updateStats() {
	s.openConns.Store(int64(s.sessions.Len()))
	s.activeSessions.Store(int64(s.sessions.ActiveUsers()))
}

func (s *Server) stop() {
	close(s.done)
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("failed to close listener", zap.Error(err))
	}
	for _, c := range s.conns {
		s.closeConn(c)
	}
	s.updateStats()
}

// ─── goroutine side ───────────────────────────────────────────────────────────

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", zap.Error(err))
			select {
			case <-s.done:
				return
			case <-time.After(acceptRetryDelay):
			}
			continue
		}

		if !s.send(event{kind: eventAccepted, conn: conn}) {
			conn.Close()
			return
		}
	}
}

func (s *Server) readLoop(c *connection) {
	buf := make([]byte, s.readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !s.send(event{kind: eventRead, c: c, data: data}) {
				return
			}
		}
		if err != nil {
			s.send(event{kind: eventReadError, c: c, err: err})
			return
		}
	}
}

// send delivers ev to the loop; it returns false once the server has stopped
func (s *Server) send(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func isPeerGone(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
