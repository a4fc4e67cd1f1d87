package reassembly

import "time"

const (
	// DefaultTimeout is the per-batch deadline applied when Config.Timeout
	// is zero. A batch that has not completed by then is discarded.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxConcurrentBatches bounds the number of transfers tracked
	// simultaneously when Config.MaxConcurrentBatches is zero.
	DefaultMaxConcurrentBatches = 100

	// DefaultMaxTotalBytes bounds the memory held across all pending
	// batches when Config.MaxTotalBytes is zero.
	DefaultMaxTotalBytes = 64 << 20
)

// Config configures a Reassembler.
type Config struct {
	// Timeout is the per-batch deadline, measured from batch creation.
	Timeout time.Duration

	// MaxConcurrentBatches caps the number of in-flight batches. Admitting
	// a batch beyond the cap evicts the oldest pending batch first.
	MaxConcurrentBatches int

	// MaxTotalBytes caps the sum of fragment bytes buffered across all
	// in-flight batches. Admitting bytes beyond the cap evicts the oldest
	// batches, in arrival order, until the new fragment fits.
	MaxTotalBytes int

	// OnTimeout is invoked with the batch key when a batch's timer fires.
	// It runs on the timer's goroutine, after the batch has been removed.
	OnTimeout func(batchID string)

	// OnEvicted is invoked with the batch key each time a batch is evicted
	// to honor a resource ceiling. It runs inside the Receive call that
	// triggered the eviction and must not call back into the Reassembler.
	OnEvicted func(batchID string)

	// Schedule installs a one-shot timer and returns its cancel function.
	// Nil selects a time.AfterFunc-backed default; tests inject a
	// deterministic fake so no real clock is needed.
	Schedule func(d time.Duration, fire func()) (cancel func())
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxConcurrentBatches <= 0 {
		c.MaxConcurrentBatches = DefaultMaxConcurrentBatches
	}
	if c.MaxTotalBytes <= 0 {
		c.MaxTotalBytes = DefaultMaxTotalBytes
	}
	if c.Schedule == nil {
		c.Schedule = func(d time.Duration, fire func()) func() {
			t := time.AfterFunc(d, fire)
			return func() { t.Stop() }
		}
	}
}
