package main

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxFrameSize bounds a single length-prefixed message
const maxFrameSize = 1 << 20

var errFrameTooLarge = errors.New("frame exceeds maximum size")

// SocketClient connects to a running socket server
type SocketClient struct {
	conn   net.Conn
	reader *lengthPrefixedReader
	writer *lengthPrefixedWriter
}

// NewSocketClient connects to a running socket server
func NewSocketClient(socketPath string) (*SocketClient, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket server at %s: %w", socketPath, err)
	}

	return &SocketClient{
		conn:   conn,
		reader: &lengthPrefixedReader{conn: conn},
		writer: &lengthPrefixedWriter{conn: conn},
	}, nil
}

// Close closes the connection to the socket server
func (sc *SocketClient) Close() error {
	if sc.conn != nil {
		return sc.conn.Close()
	}
	return nil
}

// ClientResponse is a decoded server response with the result left raw
type ClientResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Kind    string          `json:"kind,omitempty"`
}

// Execute sends a command and returns the response
func (sc *SocketClient) Execute(cmdJSON string) (*ClientResponse, error) {
	if err := sc.writer.Write([]byte(cmdJSON)); err != nil {
		return nil, err
	}

	data, err := sc.reader.Read()
	if err != nil {
		return nil, err
	}

	var response ClientResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &response, nil
}

// SocketServer manages the Unix domain socket interface for CipherCore
type SocketServer struct {
	socketPath string
	core       *CipherCore
	logger     *zap.Logger
	listener   net.Listener
	mu         sync.Mutex // serializes commands on core
	connsMu    sync.Mutex
	conns      map[net.Conn]struct{}
	wg         sync.WaitGroup
	done       chan struct{}
	stopped    chan struct{} // Closed when server has fully shut down
	stopOnce   sync.Once
}

// NewSocketServer creates a new socket server instance. A nil logger disables logging.
func NewSocketServer(socketPath string, core *CipherCore, logger *zap.Logger) *SocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocketServer{
		socketPath: socketPath,
		core:       core,
		logger:     logger.With(zap.String("socket", socketPath)),
		conns:      make(map[net.Conn]struct{}),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Start begins listening on the Unix domain socket
func (ss *SocketServer) Start() error {
	// Remove existing socket file if it exists
	if err := os.Remove(ss.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", ss.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", ss.socketPath, err)
	}
	ss.listener = listener

	ss.wg.Add(1)
	go ss.acceptConnections()

	ss.logger.Info("socket server started")
	return nil
}

// acceptConnections accepts incoming connections (multiple clients supported)
func (ss *SocketServer) acceptConnections() {
	defer ss.wg.Done()

	for {
		conn, err := ss.listener.Accept()
		if err != nil {
			select {
			case <-ss.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			ss.logger.Warn("error accepting connection", zap.Error(err))
			continue
		}

		if !ss.trackConn(conn) {
			conn.Close()
			return
		}

		ss.wg.Add(1)
		go ss.handleClient(conn)
	}
}

// trackConn registers conn so Stop can close it. It returns false once stopping.
func (ss *SocketServer) trackConn(conn net.Conn) bool {
	ss.connsMu.Lock()
	defer ss.connsMu.Unlock()
	select {
	case <-ss.done:
		return false
	default:
	}
	ss.conns[conn] = struct{}{}
	return true
}

func (ss *SocketServer) untrackConn(conn net.Conn) {
	ss.connsMu.Lock()
	delete(ss.conns, conn)
	ss.connsMu.Unlock()
}

// handleClient handles communication with a connected client
func (ss *SocketServer) handleClient(conn net.Conn) {
	defer ss.wg.Done()
	defer ss.untrackConn(conn)
	defer conn.Close()

	log := ss.logger.With(zap.String("conn_id", uuid.NewString()))
	log.Debug("client connected")

	reader := &lengthPrefixedReader{conn: conn}
	writer := &lengthPrefixedWriter{conn: conn}

	for {
		data, err := reader.Read()
		if err != nil {
			select {
			case <-ss.done:
				return
			default:
			}
			if errors.Is(err, io.EOF) {
				log.Debug("client disconnected")
				return
			}
			log.Warn("error reading from client", zap.Error(err))
			return
		}

		ss.mu.Lock()
		response := ss.core.ExecuteCommand(string(data))
		if len(response) > maxFrameSize {
			log.Warn("response too large", zap.Int("bytes", len(response)))
			response = ss.core.errorResponse(fmt.Sprintf("response too large: %d bytes exceeds %d", len(response), maxFrameSize))
		}
		ss.mu.Unlock()

		if err := writer.Write([]byte(response)); err != nil {
			log.Warn("error writing to client", zap.Error(err))
			return
		}
	}
}

// Stop gracefully shuts down the socket server. It is safe to call more than once.
func (ss *SocketServer) Stop() error {
	var err error
	ss.stopOnce.Do(func() {
		ss.connsMu.Lock()
		close(ss.done)
		for conn := range ss.conns {
			conn.Close()
		}
		ss.connsMu.Unlock()

		if ss.listener != nil {
			err = ss.listener.Close()
		}

		ss.wg.Wait()

		// The listener normally unlinks the socket file; make sure it is gone
		if rmErr := os.Remove(ss.socketPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}

		close(ss.stopped)
		ss.logger.Info("socket server stopped")
	})
	return err
}

// Wait blocks until the server is fully shut down
func (ss *SocketServer) Wait() {
	<-ss.stopped
}

// ============================================================================
// Length-Prefixed Protocol Implementation
// ============================================================================

// lengthPrefixedReader reads length-prefixed messages (4-byte big-endian length + data)
type lengthPrefixedReader struct {
	conn io.Reader
}

// Read reads a single length-prefixed message
func (r *lengthPrefixedReader) Read() ([]byte, error) {
	lengthBuf := make([]byte, 4)
	if _, err := io.ReadFull(r.conn, lengthBuf); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lengthBuf)
	if length > maxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", errFrameTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r.conn, data); err != nil {
		return nil, err
	}

	return data, nil
}

// lengthPrefixedWriter writes length-prefixed messages (4-byte big-endian length + data)
type lengthPrefixedWriter struct {
	conn io.Writer
}

// Write writes a single length-prefixed message
func (w *lengthPrefixedWriter) Write(data []byte) error {
	if len(data) > maxFrameSize {
		return fmt.Errorf("%w: %d bytes", errFrameTooLarge, len(data))
	}

	frame := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)

	_, err := w.conn.Write(frame)
	return err
}
