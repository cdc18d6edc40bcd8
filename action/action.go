// Package action models the calls the bridge makes into other native contracts. Calls made
// while handling one inbound action are collected in a Batch and only reach the Sink once
// the whole handler has succeeded.
package action

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/units"
)

// Permission is the authority the bridge signs its outbound actions with.
const Permission = "active"

// Action is a call into a native contract.
type Action struct {
	Account    units.Account `json:"account"`
	Name       string        `json:"name"`
	Authorizer units.Account `json:"authorizer"`
	Data       any           `json:"data"`
}

// Sink delivers committed actions to the ledger.
type Sink interface {
	Send(ctx context.Context, actions []Action) error
}

// Batch accumulates the actions of a single transaction.
type Batch struct {
	actions []Action
}

func (b *Batch) Add(a Action) {
	b.actions = append(b.actions, a)
}

func (b *Batch) Len() int {
	return len(b.actions)
}

// Actions returns the pending actions in the order they were added.
func (b *Batch) Actions() []Action {
	return append([]Action(nil), b.actions...)
}

// Flush sends every pending action to sink and empties the batch. An empty batch is a no-op.
func (b *Batch) Flush(ctx context.Context, sink Sink) error {
	if len(b.actions) == 0 {
		return nil
	}
	if err := sink.Send(ctx, b.actions); err != nil {
		return eris.Wrap(err, "failed to send actions")
	}
	b.actions = nil
	return nil
}

// Discard drops every pending action.
func (b *Batch) Discard() {
	b.actions = nil
}

// Recorder is a Sink that keeps everything it is sent.
type Recorder struct {
	mu   sync.Mutex
	sent []Action
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) Send(_ context.Context, actions []Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, actions...)
	return nil
}

// Sent returns a copy of every action received so far.
func (r *Recorder) Sent() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.sent...)
}

// Reset forgets every recorded action.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
