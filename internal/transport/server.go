package transport

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"vela/internal/common"
	"vela/internal/engine"
)

const (
	defaultConnTimeout = 30 * time.Second
	maxFrameSize       = 64 * 1024
)

var ErrImproperConversion = errors.New("transport: improper task type conversion")

// ClientSession tracks one connected TCP client.
type ClientSession struct {
	conn net.Conn
}

// Server is a thin demonstration collaborator: it maps the wire protocol
// of messages.go onto the engine's in-process Submit and Cancel calls,
// the role §6 of the specification assigns to an external transport.
// BBO and Snapshot are not exposed over this protocol. Its accept loop, worker pool and session map are
// ported from fenrir/internal/net/server.go.
type Server struct {
	address string
	port    int
	engine  *engine.MatchingEngine
	pool    WorkerPool

	cancel context.CancelFunc

	sessionsMu sync.Mutex
	sessions   map[string]ClientSession
}

// New constructs a Server bound to address:port, serving engine.
func New(address string, port int, eng *engine.MatchingEngine, workerPoolSize int) *Server {
	return &Server{
		address:  address,
		port:     port,
		engine:   eng,
		pool:     NewWorkerPool(workerPoolSize),
		sessions: make(map[string]ClientSession),
	}
}

// Run accepts connections until ctx is cancelled, dispatching each to the
// worker pool. It blocks until shutdown completes.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("transport: unable to start listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("transport listening")

	for {
		select {
		case <-ctx.Done():
			return t.Wait()
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return t.Wait()
				default:
					log.Error().Err(err).Msg("error accepting client")
					continue
				}
			}
			s.addSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

// Shutdown cancels the running accept loop.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// handleConnection reads one length-framed message, handles it, writes a
// response, and re-queues the connection for its next message. Deadline
// and read failures close the connection and return nil; the only
// returned error is for a task that is not a net.Conn, and it ends the
// worker that ran it.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Msg("failed setting connection deadline")
		s.closeSession(conn)
		return nil
	}

	payload, err := readFrame(conn)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error reading frame")
		}
		s.closeSession(conn)
		return nil
	}

	msgType, body, err := parseMessage(payload)
	if err != nil {
		s.writeError(conn, err)
		s.pool.AddTask(conn)
		return nil
	}

	if err := s.handleMessage(conn, msgType, body); err != nil {
		log.Error().Err(err).Str("type", string(msgType)).Msg("error handling message")
		s.writeError(conn, err)
	}

	s.pool.AddTask(conn)
	return nil
}

// readFrame reads directly off conn rather than through a buffered
// reader: handleConnection is invoked fresh per message (the connection
// is re-queued to the worker pool between messages), so a bufio.Reader
// here would silently drop anything it over-read into its own buffer.
func readFrame(conn net.Conn) ([]byte, error) {
	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 || n > maxFrameSize {
		return nil, ErrMessageTooShort
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Server) handleMessage(conn net.Conn, msgType MessageType, body []byte) error {
	switch msgType {
	case MessageHeartbeat:
		return nil
	case MessageNewOrder:
		return s.handleNewOrder(conn, body)
	case MessageCancelOrder:
		return s.handleCancelOrder(conn, body)
	default:
		return ErrInvalidMessageType
	}
}

func (s *Server) handleNewOrder(conn net.Conn, body []byte) error {
	var wire NewOrderMessage
	if err := decodeJSON(body, &wire); err != nil {
		return err
	}
	spec, err := wire.ToOrderSpec()
	if err != nil {
		return err
	}

	result := s.engine.Submit(spec)

	report := executionReportWire{
		Type:              ReportExecution,
		OrderID:           result.OrderID,
		Status:            result.Status.String(),
		FilledQuantity:    decimalOrEmpty(result.FilledQuantity),
		RemainingQuantity: decimalOrEmpty(result.RemainingQuantity),
		Trades:            result.Trades,
		Timestamp:         formatTimestamp(result.Timestamp),
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}
	return s.writeFrame(conn, report)
}

func (s *Server) handleCancelOrder(conn net.Conn, body []byte) error {
	var wire CancelOrderMessage
	if err := decodeJSON(body, &wire); err != nil {
		return err
	}

	result := s.engine.Cancel(wire.Symbol, wire.OrderID)

	report := cancelReportWire{
		Type:      ReportCancel,
		OrderID:   result.OrderID,
		Timestamp: formatTimestamp(result.Timestamp),
	}
	if result.Err != nil {
		report.Status = "error"
		report.Message = result.Err.Error()
	} else {
		report.Status = result.Status.String()
	}
	return s.writeFrame(conn, report)
}

func (s *Server) writeError(conn net.Conn, err error) {
	_ = s.writeFrame(conn, errorReportWire{
		Type:      ReportError,
		Error:     err.Error(),
		Timestamp: formatTimestamp(time.Now().UTC()),
	})
}

func (s *Server) writeFrame(conn net.Conn, v any) error {
	frame, err := encodeFrame(v)
	if err != nil {
		return err
	}
	_, err = conn.Write(frame)
	return err
}

func (s *Server) addSession(conn net.Conn) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[conn.RemoteAddr().String()] = ClientSession{conn: conn}
}

func (s *Server) closeSession(conn net.Conn) {
	s.sessionsMu.Lock()
	delete(s.sessions, conn.RemoteAddr().String())
	s.sessionsMu.Unlock()
	if err := conn.Close(); err != nil {
		log.Error().Err(err).Msg("error closing connection")
	}
}

func decimalOrEmpty(d common.Decimal) string {
	return d.String()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000Z")
}

func decodeJSON(body []byte, v any) error {
	return json.Unmarshal(body, v)
}
