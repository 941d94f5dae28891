// Package view holds the state machines behind fintrack's pages.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/idilsaglam/fintrack/internal/model"
)

// Phase is the active render branch of a list view.
type Phase int

const (
	Idle Phase = iota
	Loading
	Populated
	Empty
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// DefaultFetchError is shown when a failure carries no message.
const DefaultFetchError = "Failed to fetch tasks"

// State is a snapshot of a list view. Err is set only in Failed; Items keeps
// the last successful result, Failed renders hide it.
type State struct {
	Phase Phase
	Items []model.WorkItem
	Err   string
	// Notice is a transient message (delete failures under DeleteErrorReport).
	// It never changes the render branch and is cleared by the next fetch.
	Notice string
}

// Loading reports whether a fetch is in flight.
func (s State) Loading() bool { return s.Phase == Loading }

// Source is what the list view needs from the work items service.
type Source interface {
	List(ctx context.Context) ([]model.WorkItem, error)
	Delete(ctx context.Context, id int64) error
}

// DeleteErrorPolicy decides what a failed delete does to the view.
type DeleteErrorPolicy string

const (
	// DeleteErrorIgnore logs the failure and leaves the state untouched.
	DeleteErrorIgnore DeleteErrorPolicy = "ignore"
	// DeleteErrorReport additionally sets State.Notice.
	DeleteErrorReport DeleteErrorPolicy = "report"
)

// ParseDeleteErrorPolicy accepts "ignore" or "report" (case-insensitive).
func ParseDeleteErrorPolicy(s string) (DeleteErrorPolicy, error) {
	switch p := DeleteErrorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DeleteErrorIgnore, DeleteErrorReport:
		return p, nil
	}
	return "", fmt.Errorf("unknown delete error policy %q (want ignore or report)", s)
}

// ErrClosed is returned once the controller has been closed.
var ErrClosed = errors.New("list view closed")

// Fetch runs one list request started by TaskList.Start.
type Fetch func(ctx context.Context) State

// TaskList owns the fetch lifecycle of the work items list.
//
// Every fetch gets a sequence number; only the latest one may write the
// state, and starting a new fetch cancels the previous one.
type TaskList struct {
	source   Source
	policy   DeleteErrorPolicy
	logger   *zap.Logger
	onChange func(State)

	mu      sync.Mutex
	state   State
	seq     uint64
	cancels map[uint64]context.CancelFunc
	closed  bool
}

// TaskListOption customises a TaskList.
type TaskListOption func(*TaskList)

// WithDeleteErrorPolicy sets the delete failure policy (default DeleteErrorIgnore).
func WithDeleteErrorPolicy(p DeleteErrorPolicy) TaskListOption {
	return func(c *TaskList) { c.policy = p }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) TaskListOption {
	return func(c *TaskList) {
		if l != nil {
			c.logger = l
		}
	}
}

// OnChange registers a callback invoked with every new state, outside the lock.
func OnChange(fn func(State)) TaskListOption {
	return func(c *TaskList) { c.onChange = fn }
}

// NewTaskList returns a controller in Idle with no items.
func NewTaskList(source Source, opts ...TaskListOption) *TaskList {
	c := &TaskList{
		source:  source,
		policy:  DeleteErrorIgnore,
		logger:  zap.NewNop(),
		cancels: make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Items = []model.WorkItem{}
	return c
}

// State returns the current snapshot.
func (c *TaskList) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Start enters Loading, clears any error or notice, cancels the fetch in
// flight, and returns the new fetch. The caller runs it, typically off the
// UI goroutine.
func (c *TaskList) Start() Fetch {
	c.mu.Lock()
	if c.closed {
		st := c.snapshot()
		c.mu.Unlock()
		return func(context.Context) State { return st }
	}
	for seq, cancel := range c.cancels {
		cancel()
		delete(c.cancels, seq)
	}
	c.seq++
	seq := c.seq
	c.state.Phase = Loading
	c.state.Err = ""
	c.state.Notice = ""
	st := c.snapshot()
	c.mu.Unlock()

	c.notify(st)
	return func(ctx context.Context) State { return c.run(ctx, seq) }
}

// Refresh starts a fetch and waits for it.
func (c *TaskList) Refresh(ctx context.Context) State {
	return c.Start()(ctx)
}

func (c *TaskList) run(ctx context.Context, seq uint64) State {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed || seq != c.seq {
		st := c.snapshot()
		c.mu.Unlock()
		return st
	}
	c.cancels[seq] = cancel
	c.mu.Unlock()

	items, err := c.source.List(ctx)

	c.mu.Lock()
	delete(c.cancels, seq)
	if c.closed || seq != c.seq {
		c.logger.Debug("discarding superseded fetch", zap.Uint64("seq", seq), zap.Uint64("latest", c.seq))
		st := c.snapshot()
		c.mu.Unlock()
		return st
	}
	if err != nil {
		c.state.Phase = Failed
		c.state.Err = errorText(err)
		c.logger.Error("error fetching tasks", zap.Uint64("seq", seq), zap.Error(err))
	} else {
		c.state.Items = append([]model.WorkItem{}, items...)
		c.state.Phase = Populated
		if len(items) == 0 {
			c.state.Phase = Empty
		}
	}
	st := c.snapshot()
	c.mu.Unlock()

	c.notify(st)
	return st
}

// Delete removes id on the server, then refetches the whole list. The row is
// never removed locally. A failure is logged, the state is left as it was and,
// under DeleteErrorReport, a notice is set. The error is returned either way.
func (c *TaskList) Delete(ctx context.Context, id int64) (State, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return c.State(), ErrClosed
	}

	if err := c.source.Delete(ctx, id); err != nil {
		c.logger.Error("error deleting task", zap.Int64("id", id), zap.Error(err))
		if c.policy != DeleteErrorReport {
			return c.State(), err
		}
		c.mu.Lock()
		c.state.Notice = fmt.Sprintf("Could not delete task %d: %s", id, errorText(err))
		st := c.snapshot()
		c.mu.Unlock()
		c.notify(st)
		return st, err
	}
	return c.Refresh(ctx), nil
}

// Close cancels every fetch in flight; later results are dropped. It is the
// list view's unmount.
func (c *TaskList) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for seq, cancel := range c.cancels {
		cancel()
		delete(c.cancels, seq)
	}
}

// snapshot expects c.mu to be held.
func (c *TaskList) snapshot() State {
	st := c.state
	st.Items = append([]model.WorkItem(nil), c.state.Items...)
	return st
}

func (c *TaskList) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}

func errorText(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultFetchError
}
