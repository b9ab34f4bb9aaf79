package payment

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPayloadMismatch is returned for payloads this process did not issue.
var ErrPayloadMismatch = errors.New("payment: payload mismatch")

const (
	tokenSep = ":"

	defaultTokenTTL       = 24 * time.Hour
	defaultMaxOutstanding = 10000
)

// VerifierOptions configures a Verifier. Zero limits pick defaults.
type VerifierOptions struct {
	Sentinel string
	Bind     bool
	// TTL bounds how long an unpaid bound token stays valid.
	TTL time.Duration
	// MaxOutstanding caps unpaid bound tokens; the oldest is dropped first.
	MaxOutstanding int
	Now            func() time.Time
}

// Verifier issues invoice payloads and checks them at pre-checkout.
//
// With binding off every invoice carries the bare sentinel and the check is an
// exact string match. With binding on each invoice gets "<sentinel>:<uuid>" and
// only outstanding tokens pass. A token leaves the table when its payment
// completes, its invoice could not be delivered, it expires, or the table is full.
type Verifier struct {
	sentinel string
	bind     bool
	ttl      time.Duration
	max      int
	now      func() time.Time

	mu     sync.Mutex
	issued map[string]time.Time
}

// NewVerifier creates a verifier from opts.
func NewVerifier(opts VerifierOptions) *Verifier {
	v := &Verifier{
		sentinel: opts.Sentinel,
		bind:     opts.Bind,
		ttl:      opts.TTL,
		max:      opts.MaxOutstanding,
		now:      opts.Now,
		issued:   make(map[string]time.Time),
	}
	if v.sentinel == "" {
		v.sentinel = DefaultPayload
	}
	if v.ttl <= 0 {
		v.ttl = defaultTokenTTL
	}
	if v.max <= 0 {
		v.max = defaultMaxOutstanding
	}
	if v.now == nil {
		v.now = time.Now
	}
	return v
}

// Issue returns the payload for a new invoice.
func (v *Verifier) Issue() string {
	if !v.bind {
		return v.sentinel
	}
	payload := v.sentinel + tokenSep + uuid.NewString()
	now := v.now()

	v.mu.Lock()
	defer v.mu.Unlock()
	v.expireLocked(now)
	for len(v.issued) >= v.max {
		v.dropOldestLocked()
	}
	v.issued[payload] = now
	return payload
}

// Check validates a pre-checkout payload.
func (v *Verifier) Check(payload string) error {
	if !v.bind {
		if payload != v.sentinel {
			return ErrPayloadMismatch
		}
		return nil
	}
	tok, ok := strings.CutPrefix(payload, v.sentinel+tokenSep)
	if !ok {
		return ErrPayloadMismatch
	}
	if _, err := uuid.Parse(tok); err != nil {
		return ErrPayloadMismatch
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	at, known := v.issued[payload]
	if !known {
		return ErrPayloadMismatch
	}
	if v.now().Sub(at) >= v.ttl {
		delete(v.issued, payload)
		return ErrPayloadMismatch
	}
	return nil
}

// Retire forgets a bound token: its payment completed or its invoice never
// reached the user.
func (v *Verifier) Retire(payload string) {
	if !v.bind {
		return
	}
	v.mu.Lock()
	delete(v.issued, payload)
	v.mu.Unlock()
}

// Outstanding reports how many bound tokens await payment.
func (v *Verifier) Outstanding() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.issued)
}

func (v *Verifier) expireLocked(now time.Time) {
	for p, at := range v.issued {
		if now.Sub(at) >= v.ttl {
			delete(v.issued, p)
		}
	}
}

func (v *Verifier) dropOldestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for p, t := range v.issued {
		if oldest == "" || t.Before(at) {
			oldest, at = p, t
		}
	}
	delete(v.issued, oldest)
}
