package client

import (
	"log"
	"sync"

	"github.com/dhamidi/mcpgo/protocol"
)

// responseResult is what a waiter receives: either a parsed response or a
// transport-level failure (e.g. a serialization error on the outbound
// request).
type responseResult struct {
	resp *protocol.Response
	err  error
}

// pendingRequests correlates outstanding request ids to the one-shot
// channel their caller is waiting on. Safe for concurrent insert/respond/
// clear from the reader and writer goroutines.
//
// Invariants (mirrors the original PendingRequests exactly):
//   - at most one waiter per id at any time;
//   - a waiter is removed exactly once, either by respond or by clear;
//   - closing a waiter's channel without sending a value is how the caller
//     observes "channel closed".
type pendingRequests struct {
	mu      sync.Mutex
	waiters map[protocol.ID]chan responseResult
	logger  *log.Logger
}

func newPendingRequests(logger *log.Logger) *pendingRequests {
	return &pendingRequests{
		waiters: make(map[protocol.ID]chan responseResult),
		logger:  logger,
	}
}

// insert records a waiter for id. If id is already outstanding, the prior
// waiter is orphaned: its channel is closed so it observes a closed channel
// rather than hanging forever.
func (p *pendingRequests) insert(id protocol.ID, ch chan responseResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if old, exists := p.waiters[id]; exists {
		p.logger.Printf("pending: request id %q reused while a prior request is still outstanding; orphaning it", id)
		close(old)
	}
	p.waiters[id] = ch
}

// respond completes the waiter for id with result, if one exists. A late
// reply (no waiter, e.g. after cancellation) is a no-op.
func (p *pendingRequests) respond(id protocol.ID, result responseResult) {
	p.mu.Lock()
	ch, ok := p.waiters[id]
	if ok {
		delete(p.waiters, id)
	}
	p.mu.Unlock()

	if ok {
		ch <- result
		close(ch)
	}
}

// clear drops every outstanding waiter; each observes a closed channel.
func (p *pendingRequests) clear() {
	p.mu.Lock()
	waiters := p.waiters
	p.waiters = make(map[protocol.ID]chan responseResult)
	p.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}
