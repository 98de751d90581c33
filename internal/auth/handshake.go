package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHandshakeTimeout bounds the interactive login handshake: the
// user has this long to complete the external sign-in before the
// attempt is treated as failed.
const DefaultHandshakeTimeout = 60 * time.Second

var (
	// ErrHandshakeTimeout means the counterpart never answered.
	ErrHandshakeTimeout = errors.New("handshake timed out")
	// ErrHandshakeNotFound means the id is unknown or already resolved.
	ErrHandshakeNotFound = errors.New("handshake not found")
)

type handshakeResult struct {
	token string
	err   error
}

type handshake struct {
	ch   chan handshakeResult
	once sync.Once
}

// resolve delivers the result exactly once; later calls are dropped, so
// a handshake has a single resolution path: success, failure, or timeout.
func (h *handshake) resolve(r handshakeResult) {
	h.once.Do(func() { h.ch <- r })
}

// Handshaker turns the cross-window login dance into a plain
// request/response call: Begin registers an attempt, Await blocks for
// the outcome, and Complete/Fail resolve it from the callback side.
type Handshaker struct {
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*handshake
}

// NewHandshaker creates a Handshaker. timeout <= 0 falls back to
// DefaultHandshakeTimeout.
func NewHandshaker(timeout time.Duration) *Handshaker {
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	return &Handshaker{
		timeout: timeout,
		pending: make(map[string]*handshake),
	}
}

// Begin registers a new handshake and returns its id.
func (h *Handshaker) Begin() string {
	id := uuid.New().String()
	h.mu.Lock()
	h.pending[id] = &handshake{ch: make(chan handshakeResult, 1)}
	h.mu.Unlock()
	return id
}

// Await blocks until the handshake resolves, the timeout elapses, or
// ctx is cancelled. The handshake is always removed afterwards.
func (h *Handshaker) Await(ctx context.Context, id string) (string, error) {
	h.mu.Lock()
	hs, ok := h.pending[id]
	h.mu.Unlock()
	if !ok {
		return "", ErrHandshakeNotFound
	}

	defer func() {
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case r := <-hs.ch:
		return r.token, r.err
	case <-timer.C:
		return "", ErrHandshakeTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Complete resolves a handshake successfully with the issued token.
func (h *Handshaker) Complete(id, token string) error {
	return h.finish(id, handshakeResult{token: token})
}

// Fail resolves a handshake with an error.
func (h *Handshaker) Fail(id string, err error) error {
	return h.finish(id, handshakeResult{err: err})
}

func (h *Handshaker) finish(id string, r handshakeResult) error {
	h.mu.Lock()
	hs, ok := h.pending[id]
	h.mu.Unlock()
	if !ok {
		return ErrHandshakeNotFound
	}
	hs.resolve(r)
	return nil
}
