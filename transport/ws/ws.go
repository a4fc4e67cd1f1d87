// Package ws provides a WebSocket driver for fragwire message transport.
//
// Chunks travel as binary WebSocket frames. Each inbound connection gets its
// own reassembler so interleaved transfers from different peers never share
// batch tables.
package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/localrivet/fragwire/reassembly"
	"github.com/localrivet/fragwire/transport"
)

// DefaultShutdownTimeout is the default timeout for graceful shutdown
const DefaultShutdownTimeout = 10 * time.Second

// connState tracks one accepted server-side connection.
type connState struct {
	id          string // correlates log lines for this connection
	reassembler *reassembly.Reassembler
}

// Transport implements the transport.Transport interface for WebSocket
type Transport struct {
	transport.BaseTransport
	addr     string
	server   *http.Server
	conns    map[net.Conn]*connState
	connsMu  sync.Mutex
	isClient bool

	// For client mode
	clientConn  net.Conn
	clientReasm *reassembly.Reassembler
	clientMu    sync.Mutex
	readCh      chan []byte
	errCh       chan error
	doneCh      chan struct{}
}

// NewTransport creates a new WebSocket transport. Addresses with a ws:// or
// wss:// scheme select client mode; bare listen addresses select server mode.
func NewTransport(addr string, opts transport.Options) *Transport {
	isClient := strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://")

	t := &Transport{
		addr:     addr,
		conns:    make(map[net.Conn]*connState),
		isClient: isClient,
	}
	t.Configure(opts)

	if isClient {
		t.readCh = make(chan []byte, 100)
		t.errCh = make(chan error, 1)
		t.doneCh = make(chan struct{})
	}

	return t
}

// Initialize initializes the transport
func (t *Transport) Initialize() error {
	if t.isClient {
		ctx := context.Background()
		conn, _, _, err := ws.Dial(ctx, t.addr)
		if err != nil {
			return err
		}

		t.clientMu.Lock()
		t.clientConn = conn
		t.clientReasm = t.NewReassembler()
		t.clientMu.Unlock()

		go t.readClientMessages()
	}
	return nil
}

// Start starts the transport
func (t *Transport) Start() error {
	if t.isClient {
		// Client mode already started in Initialize
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", t.handleWebSocketRequest)

	t.server = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	go func() {
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logger().Error("websocket server stopped: %v", err)
		}
	}()

	return nil
}

// Stop stops the transport
func (t *Transport) Stop() error {
	if t.isClient {
		close(t.doneCh)

		t.clientMu.Lock()
		defer t.clientMu.Unlock()

		if t.clientReasm != nil {
			t.clientReasm.Close()
		}
		if t.clientConn != nil {
			return t.clientConn.Close()
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	// Close all connections and drop their reassembly state
	t.connsMu.Lock()
	for conn, cs := range t.conns {
		cs.reassembler.Close()
		conn.Close()
	}
	t.conns = make(map[net.Conn]*connState)
	t.connsMu.Unlock()

	if t.server == nil {
		return nil
	}
	return t.server.Shutdown(ctx)
}

// Send delivers one message, splitting it into wire chunks when it exceeds
// the fragmentation threshold.
func (t *Transport) Send(message []byte) error {
	chunks, err := t.Chunks(message)
	if err != nil {
		return err
	}

	if t.isClient {
		t.clientMu.Lock()
		defer t.clientMu.Unlock()

		if t.clientConn == nil {
			return errors.New("not connected to server")
		}

		for _, chunk := range chunks {
			if err := wsutil.WriteClientMessage(t.clientConn, ws.OpBinary, chunk); err != nil {
				return err
			}
		}
		return nil
	}

	// Server mode - send to all clients
	t.connsMu.Lock()
	defer t.connsMu.Unlock()

	var lastErr error
	for conn, cs := range t.conns {
		if err := writeChunks(conn, chunks); err != nil {
			// Note the error but continue trying to send to other clients
			lastErr = err
			t.Logger().Warn("dropping connection %s: %v", cs.id, err)
			cs.reassembler.Close()
			conn.Close()
			delete(t.conns, conn)
		}
	}

	return lastErr
}

func writeChunks(conn net.Conn, chunks [][]byte) error {
	for _, chunk := range chunks {
		if err := wsutil.WriteServerMessage(conn, ws.OpBinary, chunk); err != nil {
			return err
		}
	}
	return nil
}

// Receive returns the next reassembled message (client mode only).
func (t *Transport) Receive() ([]byte, error) {
	if !t.isClient {
		return nil, errors.New("receive is only supported in client mode")
	}

	select {
	case msg := <-t.readCh:
		return msg, nil
	case err := <-t.errCh:
		return nil, err
	case <-t.doneCh:
		return nil, errors.New("transport closed")
	}
}

// handleWebSocketRequest handles incoming WebSocket connection requests
func (t *Transport) handleWebSocketRequest(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		return
	}

	cs := &connState{
		id:          uuid.NewString(),
		reassembler: t.NewReassembler(),
	}

	t.connsMu.Lock()
	t.conns[conn] = cs
	t.connsMu.Unlock()

	t.Logger().Debug("accepted connection %s from %s", cs.id, conn.RemoteAddr())

	go t.handleServerConnection(conn, cs)
}

// handleServerConnection feeds a client connection's chunks through its
// reassembler until the connection drops.
func (t *Transport) handleServerConnection(conn net.Conn, cs *connState) {
	defer func() {
		conn.Close()
		cs.reassembler.Close()
		t.connsMu.Lock()
		delete(t.conns, conn)
		t.connsMu.Unlock()
	}()

	for {
		msg, op, err := wsutil.ReadClientData(conn)
		if err != nil {
			return
		}

		if op == ws.OpClose {
			return
		}

		if op == ws.OpBinary || op == ws.OpText {
			t.HandleChunk(cs.reassembler, msg)
		}
	}
}

// readClientMessages continuously reads chunks from the server in client
// mode, surfacing each reassembled message on the read channel.
func (t *Transport) readClientMessages() {
	defer func() {
		t.clientMu.Lock()
		if t.clientConn != nil {
			t.clientConn.Close()
			t.clientConn = nil
		}
		t.clientMu.Unlock()
	}()

	for {
		select {
		case <-t.doneCh:
			return
		default:
			t.clientMu.Lock()
			conn := t.clientConn
			reasm := t.clientReasm
			t.clientMu.Unlock()

			if conn == nil {
				t.errCh <- errors.New("not connected to server")
				return
			}

			msg, op, err := wsutil.ReadServerData(conn)
			if err != nil {
				t.errCh <- err
				return
			}

			if op == ws.OpClose {
				t.errCh <- errors.New("connection closed by server")
				return
			}

			if op != ws.OpBinary && op != ws.OpText {
				continue
			}

			res := reasm.ReceiveRaw(msg)
			switch res.Status {
			case reassembly.StatusComplete:
				select {
				case t.readCh <- res.Data:
				default:
					// Channel full, discard oldest message
					<-t.readCh
					t.readCh <- res.Data
				}
			case reassembly.StatusError:
				t.Logger().Warn("dropping chunk: %v", res.Err)
			}
		}
	}
}
