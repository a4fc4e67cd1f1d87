// Package transport provides the transport layer for fragwire messages.
//
// Drivers move opaque wire chunks; the plumbing in this package decides
// complete-versus-fragmented on the send path and reassembles inbound chunks
// back into messages on the receive path.
package transport

import (
	"github.com/localrivet/fragwire/config"
	"github.com/localrivet/fragwire/frag"
	"github.com/localrivet/fragwire/logx"
	"github.com/localrivet/fragwire/reassembly"
)

// MessageHandler receives one fully reassembled inbound message.
type MessageHandler func(message []byte)

// Transport represents a bidirectional chunk transport for fragwire messages.
type Transport interface {
	// Initialize initializes the transport
	Initialize() error

	// Start starts the transport
	Start() error

	// Stop stops the transport
	Stop() error

	// Send delivers one encoded message, fragmenting it when it exceeds the
	// transport's threshold.
	Send(message []byte) error

	// SetMessageHandler sets the handler invoked for each reassembled message
	SetMessageHandler(handler MessageHandler)
}

// Options configure the fragmentation behavior shared by all drivers.
type Options struct {
	// FragmentSize caps each data fragment's payload slice. Zero selects
	// the config default.
	FragmentSize int

	// FragmentThreshold is the payload size above which messages are
	// fragmented. Zero selects the config default.
	FragmentThreshold int

	// Reassembly configures the per-connection reassemblers.
	Reassembly reassembly.Config

	// Logger receives transport diagnostics. Nil selects the stderr default.
	Logger logx.Logger
}

// BaseTransport provides the fragmentation plumbing common to drivers.
type BaseTransport struct {
	handler MessageHandler
	opts    Options
}

// Configure applies options, filling unset fields with defaults. Drivers
// call this once at construction.
func (t *BaseTransport) Configure(opts Options) {
	def := config.Default()
	if opts.FragmentSize <= 0 {
		opts.FragmentSize = def.FragmentSize
	}
	if opts.FragmentThreshold <= 0 {
		opts.FragmentThreshold = def.FragmentThreshold
	}
	if opts.Logger == nil {
		opts.Logger = logx.NewDefaultLogger()
	}
	t.opts = opts
}

// SetMessageHandler sets the message handler
func (t *BaseTransport) SetMessageHandler(handler MessageHandler) {
	t.handler = handler
}

// Logger returns the configured logger.
func (t *BaseTransport) Logger() logx.Logger {
	if t.opts.Logger == nil {
		return logx.NopLogger{}
	}
	return t.opts.Logger
}

// Chunks returns the wire chunks for one outbound message: a single complete
// chunk when the message is at or under the threshold, otherwise a header
// chunk plus data chunks.
func (t *BaseTransport) Chunks(message []byte) ([][]byte, error) {
	if !frag.ShouldFragment(len(message), t.opts.FragmentThreshold) {
		return [][]byte{frag.WrapCompleteMessage(message)}, nil
	}
	return frag.FragmentPayload(message, t.opts.FragmentSize)
}

// NewReassembler builds a per-connection reassembler whose timeout and
// eviction events are logged before any user callbacks run.
func (t *BaseTransport) NewReassembler() *reassembly.Reassembler {
	cfg := t.opts.Reassembly
	log := t.Logger()
	onTimeout, onEvicted := cfg.OnTimeout, cfg.OnEvicted
	cfg.OnTimeout = func(batchID string) {
		log.Warn("batch %s timed out before completing", batchID)
		if onTimeout != nil {
			onTimeout(batchID)
		}
	}
	cfg.OnEvicted = func(batchID string) {
		log.Warn("batch %s evicted to honor resource limits", batchID)
		if onEvicted != nil {
			onEvicted(batchID)
		}
	}
	return reassembly.New(cfg)
}

// HandleChunk feeds one inbound wire chunk through the given reassembler.
// Complete messages go to the handler, pending results are absorbed, and
// error results are logged and swallowed so one malformed chunk cannot abort
// the driver's read loop.
func (t *BaseTransport) HandleChunk(r *reassembly.Reassembler, chunk []byte) {
	res := r.ReceiveRaw(chunk)
	switch res.Status {
	case reassembly.StatusComplete:
		if h := t.handler; h != nil {
			h(res.Data)
		}
	case reassembly.StatusError:
		t.Logger().Warn("dropping chunk: %v", res.Err)
	}
}
