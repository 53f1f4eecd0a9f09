// internal/engine/engine.go
//
// The transition engine enforces the legal-transition graph and keeps the
// stage store consistent with the server's acknowledged state. An order never
// moves buckets before the gateway confirms the transition: a failed server
// update behind an already-moved bucket would lose track of the order.

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nlicea/orderdeck/internal/order"
)

// Applier is the slice of the remote gateway the engine consumes.
type Applier interface {
	ApplyTransition(ctx context.Context, orderID string, target order.Stage) error
}

// Stager is the slice of the stage store the engine mutates.
type Stager interface {
	Find(id string) (order.Order, order.Stage, bool)
	MoveOrder(id string, from, to order.Stage) error
}

// Logger records engine activity. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Record tracks one in-flight transition. At most one record exists per order
// id at any time; its presence blocks duplicate requests for the same order.
type Record struct {
	ID          string
	OrderID     string
	From        order.Stage
	To          order.Stage
	RequestedAt time.Time
}

// Engine validates and executes stage transitions.
type Engine struct {
	store   Stager
	gateway Applier
	logger  Logger
	clock   func() time.Time
	timeout time.Duration

	mu       sync.Mutex
	inFlight map[string]Record
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithTimeout bounds each gateway call. A hung call would otherwise pin its
// record forever and permanently block further transitions for that order.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New wires a transition engine to the stage store and the remote gateway.
func New(store Stager, gateway Applier, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("engine: stage store is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("engine: gateway is required")
	}
	e := &Engine{
		store:    store,
		gateway:  gateway,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		inFlight: make(map[string]Record),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Transition drives one order to the target stage. The call validates the
// edge locally, guards against a duplicate in-flight request, asks the
// gateway to apply the transition, and only then moves the order between
// buckets. On any failure the store is left untouched.
func (e *Engine) Transition(ctx context.Context, orderID string, target order.Stage) error {
	_, current, ok := e.store.Find(orderID)
	if !ok {
		return fmt.Errorf("engine: transition %s: %w", orderID, order.ErrNotFoundInSource)
	}
	edge, ok := order.EdgeTo(current, target)
	if !ok {
		return fmt.Errorf("engine: %s is in %s, cannot move to %s: %w",
			orderID, current, target, order.ErrIllegalTransition)
	}

	record, err := e.register(orderID, edge)
	if err != nil {
		return err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.gateway.ApplyTransition(ctx, orderID, edge.To); err != nil {
		e.clear(orderID)
		e.logger.Printf("engine: transition %s %s -> %s failed: %v", orderID, edge.From, edge.To, err)
		return &order.TransitionFailedError{OrderID: orderID, Target: edge.To, Err: err}
	}

	moveErr := e.store.MoveOrder(orderID, edge.From, edge.To.Bucket())
	e.clear(orderID)
	if moveErr != nil {
		// The server acknowledged but the order is no longer where we
		// saw it. Stale state; the caller must reload the stage.
		e.logger.Printf("engine: transition %s acknowledged but move failed: %v", orderID, moveErr)
		return moveErr
	}
	e.logger.Printf("engine: order %s moved %s -> %s (record %s)", orderID, edge.From, edge.To.Bucket(), record.ID)
	return nil
}

// InFlight reports whether a transition for the order is still waiting on the
// gateway. The board uses this to disable the triggering control instead of
// surfacing an error.
func (e *Engine) InFlight(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inFlight[orderID]
	return ok
}

// Records returns the currently in-flight transition records.
func (e *Engine) Records() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, 0, len(e.inFlight))
	for _, r := range e.inFlight {
		out = append(out, r)
	}
	return out
}

func (e *Engine) register(orderID string, edge order.Edge) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.inFlight[orderID]; exists {
		return Record{}, fmt.Errorf("engine: transition %s: %w", orderID, order.ErrTransitionInProgress)
	}
	record := Record{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		From:        edge.From,
		To:          edge.To,
		RequestedAt: e.clock(),
	}
	e.inFlight[orderID] = record
	return record, nil
}

func (e *Engine) clear(orderID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, orderID)
}
