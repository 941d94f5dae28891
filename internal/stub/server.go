// Package stub is an in-memory WorkItems backend speaking the same envelope
// protocol as the real API. It backs `fintrack stub` and the client tests.
package stub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"

	"github.com/idilsaglam/fintrack/internal/model"
	"github.com/idilsaglam/fintrack/internal/store/jsonstore"
)

// Op names a stub endpoint for fault injection.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Fault replaces the next reply of an endpoint.
type Fault struct {
	// Status defaults to 200, so a bare Message gives a failed envelope on a 2xx.
	Status  int
	Message string
	// Raw, when set, is written as the body instead of an envelope.
	Raw string
	// Delay alone only slows the reply down.
	Delay time.Duration
}

type envelope struct {
	Message   string      `json:"message"`
	IsSuccess bool        `json:"isSuccess"`
	Data      interface{} `json:"data"`
}

// Server holds the work items in insertion order.
type Server struct {
	mu       sync.Mutex
	items    []model.WorkItem
	nextID   int64
	faults   map[Op][]Fault
	calls    map[Op]int
	prefix   string
	dataPath string
	now      func() time.Time
	logger   *zap.Logger
}

// Option customises a Server.
type Option func(*Server)

// WithPrefix mounts the routes under prefix, e.g. "/api".
func WithPrefix(prefix string) Option {
	return func(s *Server) { s.prefix = strings.TrimRight(prefix, "/") }
}

// WithDataPath persists every mutation to a jsonstore file.
func WithDataPath(path string) Option {
	return func(s *Server) { s.dataPath = path }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a stub seeded with items. IDs continue after the highest seed ID.
func New(seed []model.WorkItem, opts ...Option) *Server {
	s := &Server{
		faults: make(map[Op][]Fault),
		calls:  make(map[Op]int),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = append(s.items, seed...)
	for _, it := range seed {
		if it.ID > s.nextID {
			s.nextID = it.ID
		}
	}
	return s
}

// Open seeds a stub from a jsonstore file and keeps persisting to it.
func Open(path string, opts ...Option) (*Server, error) {
	items, err := jsonstore.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	return New(items, append(opts, WithDataPath(path))...), nil
}

// Inject queues a fault for the next call of op.
func (s *Server) Inject(op Op, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], f)
}

// Calls returns how many requests op has served.
func (s *Server) Calls(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Items returns a copy of the current items.
func (s *Server) Items() []model.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WorkItem(nil), s.items...)
}

// Handler returns the routed fasthttp handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	r := router.New()
	base := s.prefix + "/WorkItems"
	r.GET(base+"/GetAllTasks", s.wrap(OpList, s.list))
	r.GET(base+"/{id}", s.wrap(OpGet, s.get))
	r.POST(base, s.wrap(OpCreate, s.create))
	r.PUT(base+"/{id}", s.wrap(OpUpdate, s.update))
	r.DELETE(base+"/{id}", s.wrap(OpDelete, s.delete))
	return r.Handler
}

// Serve runs the stub on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{Handler: s.Handler(), Name: "fintrack-stub"}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.ShutdownWithContext(shutdownCtx)
	}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Info("stub backend listening", zap.String("addr", ln.Addr().String()), zap.String("prefix", s.prefix))
	return s.Serve(ctx, ln)
}

// ListenInMemory serves the stub on an in-memory listener until ctx is done
// and returns a dialer that reaches it.
func (s *Server) ListenInMemory(ctx context.Context) fasthttp.DialFunc {
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		if err := s.Serve(ctx, ln); err != nil {
			s.logger.Warn("in-memory stub stopped", zap.Error(err))
		}
	}()
	return func(string) (net.Conn, error) { return ln.Dial() }
}

type handlerFunc func(ctx *fasthttp.RequestCtx) (int, envelope)

func (s *Server) wrap(op Op, h handlerFunc) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		s.mu.Lock()
		s.calls[op]++
		var fault *Fault
		if q := s.faults[op]; len(q) > 0 {
			f := q[0]
			s.faults[op] = q[1:]
			fault = &f
		}
		s.mu.Unlock()

		s.logger.Debug("stub request",
			zap.String("op", string(op)),
			zap.ByteString("request_id", ctx.Request.Header.Peek("X-Request-ID")))

		if fault != nil {
			if fault.Delay > 0 {
				time.Sleep(fault.Delay)
			}
			if fault.Status != 0 || fault.Message != "" || fault.Raw != "" {
				writeFault(ctx, fault)
				return
			}
		}
		status, env := h(ctx)
		writeJSON(ctx, status, env)
	}
}

func writeFault(ctx *fasthttp.RequestCtx, f *Fault) {
	status := f.Status
	if status == 0 {
		status = http.StatusOK
	}
	if f.Raw != "" {
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(status)
		ctx.SetBodyString(f.Raw)
		return
	}
	writeJSON(ctx, status, envelope{Message: f.Message})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, env envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(env)
	ctx.SetBody(body)
}

func ok(data interface{}, msg string) (int, envelope) {
	return http.StatusOK, envelope{Message: msg, IsSuccess: true, Data: data}
}

func failed(status int, msg string) (int, envelope) {
	return status, envelope{Message: msg}
}

func (s *Server) list(_ *fasthttp.RequestCtx) (int, envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := append([]model.WorkItem{}, s.items...)
	return ok(items, fmt.Sprintf("%d work items", len(items)))
}

func (s *Server) get(ctx *fasthttp.RequestCtx) (int, envelope) {
	id, err := pathID(ctx)
	if err != nil {
		return failed(http.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return failed(http.StatusOK, notFound(id))
	}
	return ok(s.items[idx], "")
}

func (s *Server) create(ctx *fasthttp.RequestCtx) (int, envelope) {
	var in model.NewWorkItem
	if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
		return failed(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(in.Title) == "" {
		return failed(http.StatusBadRequest, "title is required")
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	at := model.Timestamp{Time: s.now().UTC()}
	it := model.WorkItem{
		ID:          s.nextID + 1,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	next := append(append([]model.WorkItem(nil), s.items...), it)
	if err := s.commit(next); err != nil {
		return failed(http.StatusInternalServerError, err.Error())
	}
	s.nextID = it.ID
	return ok(it, "work item created")
}

func (s *Server) update(ctx *fasthttp.RequestCtx) (int, envelope) {
	id, err := pathID(ctx)
	if err != nil {
		return failed(http.StatusBadRequest, err.Error())
	}
	var patch model.WorkItemPatch
	if err := json.Unmarshal(ctx.PostBody(), &patch); err != nil {
		return failed(http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return failed(http.StatusOK, notFound(id))
	}
	next := append([]model.WorkItem(nil), s.items...)
	patch.Apply(&next[idx])
	next[idx].UpdatedAt = model.Timestamp{Time: s.now().UTC()}
	if err := s.commit(next); err != nil {
		return failed(http.StatusInternalServerError, err.Error())
	}
	return ok(next[idx], "work item updated")
}

func (s *Server) delete(ctx *fasthttp.RequestCtx) (int, envelope) {
	id, err := pathID(ctx)
	if err != nil {
		return failed(http.StatusBadRequest, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return failed(http.StatusOK, notFound(id))
	}
	next := append(append([]model.WorkItem(nil), s.items[:idx]...), s.items[idx+1:]...)
	if err := s.commit(next); err != nil {
		return failed(http.StatusInternalServerError, err.Error())
	}
	return ok(nil, "work item deleted")
}

// indexOf expects s.mu to be held.
func (s *Server) indexOf(id int64) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// commit saves next and only then makes it the live set, so a failed write
// leaves memory as it was. It expects s.mu to be held.
func (s *Server) commit(next []model.WorkItem) error {
	if s.dataPath != "" {
		if err := jsonstore.Save(s.dataPath, next); err != nil {
			return err
		}
	}
	s.items = next
	return nil
}

func pathID(ctx *fasthttp.RequestCtx) (int64, error) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id " + strconv.Quote(raw))
	}
	return id, nil
}

func notFound(id int64) string {
	return fmt.Sprintf("work item %d not found", id)
}
