// Package reassembly tracks in-flight fragmented transfers and rebuilds the
// original payloads as their chunks arrive, in any order, from any number of
// interleaved batches.
//
// A Reassembler is an owned, independently constructible instance — one per
// connection — with explicit resource ceilings. When a ceiling would be
// breached, the oldest pending batch is evicted first (FIFO by creation
// order, not last-touch). Every batch carries a timer so a stalled transfer
// is reclaimed even if its sender disappears.
//
// Fragments may arrive before their batch's header. Such fragments are
// buffered provisionally under the same ceilings and timer as any other
// batch; the header, once seen, fixes the batch's count and total size and
// prunes any buffered fragment the count proves out of range.
package reassembly

import (
	"errors"
	"fmt"
	"sync"

	"github.com/localrivet/fragwire/frag"
)

// batch is the per-transfer state: the shape declared by the header (count
// is zero until the header is seen; valid headers never declare zero) plus
// the fragments received so far.
type batch struct {
	id        frag.BatchID
	count     uint32
	totalSize uint32
	fragments map[uint32][]byte
	received  int    // running byte total across stored fragments
	cancel    func() // stops the batch's timeout timer
}

func (b *batch) headerSeen() bool {
	return b.count > 0
}

// Reassembler consumes raw or parsed wire chunks one at a time and returns
// complete/pending/error results. Safe for use from multiple goroutines;
// timer callbacks synchronize with Receive on the same mutex, so a firing
// timer is atomic relative to a receive completing the same batch.
type Reassembler struct {
	cfg Config

	mu      sync.Mutex
	batches map[string]*batch
	order   []string // batch keys, oldest first
	bytes   int      // sum of received bytes across all live batches
	closed  bool
}

// New creates a Reassembler with the given configuration. Zero-valued
// ceilings and timeout select the package defaults.
func New(cfg Config) *Reassembler {
	cfg.applyDefaults()
	return &Reassembler{
		cfg:     cfg,
		batches: make(map[string]*batch),
	}
}

// ReceiveRaw parses one inbound wire chunk and folds it into batch state.
// Malformed bytes yield a parse_error result; they never panic and never
// touch existing state.
func (r *Reassembler) ReceiveRaw(b []byte) Result {
	p, err := frag.ParsePayload(b)
	if err != nil {
		return failed(&ReceiveError{Type: ErrorParse, Detail: err.Error()})
	}
	return r.Receive(p)
}

// Receive folds one parsed transport payload into batch state.
func (r *Reassembler) Receive(p frag.Payload) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return failed(&ReceiveError{Type: ErrorParse, Detail: "reassembler is closed"})
	}

	switch v := p.(type) {
	case frag.CompleteMessage:
		// No reassembly needed; batch state untouched.
		return complete(v.Data)
	case frag.FragmentHeader:
		return r.receiveHeader(v)
	case frag.FragmentData:
		return r.receiveData(v)
	default:
		return failed(&ReceiveError{Type: ErrorParse, Detail: fmt.Sprintf("unhandled payload type %T", p)})
	}
}

// receiveHeader merges header metadata into the batch, creating it first if
// this header is the batch's first sighting. A repeated header is a no-op:
// the first header's metadata is authoritative and stored fragments are
// preserved, never discarded.
func (r *Reassembler) receiveHeader(h frag.FragmentHeader) Result {
	key := h.BatchID.Key()

	b, ok := r.batches[key]
	if !ok {
		b = r.admit(key, h.BatchID)
	}
	if b.headerSeen() {
		return pending()
	}

	b.count = h.Count
	b.totalSize = h.TotalSize

	// Fragments buffered before the header may now be provably out of
	// range; the header is authoritative, so they are discarded.
	for idx, data := range b.fragments {
		if idx >= b.count {
			delete(b.fragments, idx)
			b.received -= len(data)
			r.bytes -= len(data)
		}
	}

	if uint32(len(b.fragments)) == b.count {
		return r.finish(key, b)
	}
	return pending()
}

// receiveData stores one fragment slice, completing the batch when it is the
// last one outstanding.
func (r *Reassembler) receiveData(d frag.FragmentData) Result {
	key := d.BatchID.Key()

	b, ok := r.batches[key]
	if !ok {
		// Header not yet seen: buffer provisionally under the usual
		// admission control so reordered delivery still completes.
		b = r.admit(key, d.BatchID)
	}

	if b.headerSeen() && d.Index >= b.count {
		return failed(&ReceiveError{Type: ErrorInvalidIndex, BatchID: key, Index: d.Index, Count: b.count})
	}
	if _, dup := b.fragments[d.Index]; dup {
		// Stored data is not overwritten.
		return failed(&ReceiveError{Type: ErrorDuplicateFragment, BatchID: key, Index: d.Index})
	}

	if !r.admitBytes(key, len(d.Data)) {
		// The receiving batch itself had to be evicted to honor the byte
		// ceiling; the fragment is dropped with it.
		return pending()
	}

	b.fragments[d.Index] = d.Data
	b.received += len(d.Data)
	r.bytes += len(d.Data)

	if b.headerSeen() && uint32(len(b.fragments)) == b.count {
		return r.finish(key, b)
	}
	return pending()
}

// admit creates a batch, evicting the oldest pending batches first when the
// table is at its ceiling. Callers hold r.mu and have checked the key is
// not present.
func (r *Reassembler) admit(key string, id frag.BatchID) *batch {
	for len(r.batches) >= r.cfg.MaxConcurrentBatches {
		if !r.evictOldest(key) {
			break
		}
	}

	b := &batch{
		id:        id,
		fragments: make(map[uint32][]byte),
	}
	b.cancel = r.cfg.Schedule(r.cfg.Timeout, func() { r.expire(key, b) })
	r.batches[key] = b
	r.order = append(r.order, key)
	return b
}

// admitBytes makes room for n more fragment bytes, evicting the oldest
// batches until the fragment fits. The batch being admitted into is spared
// while any other batch remains; if it alone would still breach the ceiling
// it is evicted too and admitBytes reports false.
func (r *Reassembler) admitBytes(key string, n int) bool {
	for r.bytes+n > r.cfg.MaxTotalBytes {
		if r.evictOldest(key) {
			continue
		}
		if b, ok := r.batches[key]; ok {
			r.remove(key, b)
			if r.cfg.OnEvicted != nil {
				r.cfg.OnEvicted(key)
			}
		}
		return false
	}
	return true
}

// evictOldest removes the earliest-created batch other than the excluded
// key, firing OnEvicted. Reports whether a batch was evicted.
func (r *Reassembler) evictOldest(excluding string) bool {
	for _, key := range r.order {
		if key == excluding {
			continue
		}
		b := r.batches[key]
		r.remove(key, b)
		if r.cfg.OnEvicted != nil {
			r.cfg.OnEvicted(key)
		}
		return true
	}
	return false
}

// finish runs final reassembly for a batch that has all its fragments. The
// batch is removed whether reassembly succeeds or not.
func (r *Reassembler) finish(key string, b *batch) Result {
	header := frag.FragmentHeader{BatchID: b.id, Count: b.count, TotalSize: b.totalSize}
	data, err := frag.ReassembleFragments(header, b.fragments)
	r.remove(key, b)
	if err != nil {
		re := &ReceiveError{Type: ErrorSizeMismatch, BatchID: key, Detail: err.Error()}
		var rerr *frag.ReassembleError
		if errors.As(err, &rerr) && rerr.Kind == frag.KindInvalidIndex {
			re.Type = ErrorInvalidIndex
			re.Index = rerr.Index
			re.Count = rerr.Count
		}
		return failed(re)
	}
	return complete(data)
}

// remove drops a batch's state and cancels its timer so the timer can never
// fire against removed state. Callers hold r.mu.
func (r *Reassembler) remove(key string, b *batch) {
	if b.cancel != nil {
		b.cancel()
	}
	delete(r.batches, key)
	r.bytes -= b.received
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// expire is the timer callback for one batch. The pointer comparison guards
// against a stale timer firing after its batch was removed and the same key
// readmitted.
func (r *Reassembler) expire(key string, b *batch) {
	r.mu.Lock()
	live, ok := r.batches[key]
	if !ok || live != b || r.closed {
		r.mu.Unlock()
		return
	}
	r.remove(key, b)
	cb := r.cfg.OnTimeout
	r.mu.Unlock()

	if cb != nil {
		cb(key)
	}
}

// PendingBatches returns the number of batches currently tracked, including
// provisional batches still waiting for their header.
func (r *Reassembler) PendingBatches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// PendingBytes returns the sum of fragment bytes buffered across all
// currently tracked batches.
func (r *Reassembler) PendingBytes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bytes
}

// Close cancels every pending timer, drops all state, and marks the instance
// closed. Subsequent Receive/ReceiveRaw calls return an error result rather
// than panicking. Close is idempotent.
func (r *Reassembler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, b := range r.batches {
		if b.cancel != nil {
			b.cancel()
		}
	}
	r.batches = make(map[string]*batch)
	r.order = nil
	r.bytes = 0
}
