// Package workitems is the typed client for the backend's /WorkItems resource.
package workitems

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/fintrack/internal/api"
	"github.com/idilsaglam/fintrack/internal/logger"
	"github.com/idilsaglam/fintrack/internal/model"
)

const basePath = "/WorkItems"

// Service performs one round trip per call and keeps no state between calls.
// Errors from the transport and the envelope decoder are logged with the
// operation and returned unchanged.
type Service struct {
	transport api.Transport
	logger    *zap.Logger
}

func New(transport api.Transport, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		transport: transport,
		logger:    logger.With(zap.String("resource", "work_items")),
	}
}

// List returns every work item in server order.
func (s *Service) List(ctx context.Context) ([]model.WorkItem, error) {
	ctx = withRequestID(ctx)
	path := basePath + "/GetAllTasks"
	s.logger.Debug("fetching all work items", zap.String("path", path))

	resp, err := api.Get(ctx, s.transport, path)
	if err != nil {
		return nil, s.fail(ctx, "list", 0, err)
	}
	items, err := api.Decode[[]model.WorkItem](resp)
	if err != nil {
		return nil, s.fail(ctx, "list", 0, err)
	}
	s.logger.Debug("received work items", zap.Int("count", len(items)))
	return items, nil
}

// Get returns one work item. An unknown id fails with the server's message.
func (s *Service) Get(ctx context.Context, id int64) (model.WorkItem, error) {
	ctx = withRequestID(ctx)
	resp, err := api.Get(ctx, s.transport, itemPath(id))
	if err != nil {
		return model.WorkItem{}, s.fail(ctx, "get", id, err)
	}
	it, err := api.Decode[model.WorkItem](resp)
	if err != nil {
		return model.WorkItem{}, s.fail(ctx, "get", id, err)
	}
	return it, nil
}

// Create posts a new item and returns it with the server-assigned id and timestamps.
func (s *Service) Create(ctx context.Context, in model.NewWorkItem) (model.WorkItem, error) {
	ctx = withRequestID(ctx)
	resp, err := api.Post(ctx, s.transport, basePath, in)
	if err != nil {
		return model.WorkItem{}, s.fail(ctx, "create", 0, err)
	}
	it, err := api.Decode[model.WorkItem](resp)
	if err != nil {
		return model.WorkItem{}, s.fail(ctx, "create", 0, err)
	}
	return it, nil
}

// Update sends patch as-is; merging is the server's business.
func (s *Service) Update(ctx context.Context, id int64, patch model.WorkItemPatch) (model.WorkItem, error) {
	ctx = withRequestID(ctx)
	resp, err := api.Put(ctx, s.transport, itemPath(id), patch)
	if err != nil {
		return model.WorkItem{}, s.fail(ctx, "update", id, err)
	}
	it, err := api.Decode[model.WorkItem](resp)
	if err != nil {
		return model.WorkItem{}, s.fail(ctx, "update", id, err)
	}
	return it, nil
}

// Delete removes an item. Only the envelope's success flag is checked.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx = withRequestID(ctx)
	resp, err := api.Delete(ctx, s.transport, itemPath(id))
	if err != nil {
		return s.fail(ctx, "delete", id, err)
	}
	if err := api.Check(resp); err != nil {
		return s.fail(ctx, "delete", id, err)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, op string, id int64, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if id != 0 {
		fields = append(fields, zap.Int64("id", id))
	}
	if kind := api.KindOf(err); kind != "" {
		fields = append(fields, zap.String("kind", string(kind)))
	}
	logger.WithRequestID(ctx, s.logger).Error("work item request failed", fields...)
	return err
}

// withRequestID tags ctx so the transport and the service log one id per call.
func withRequestID(ctx context.Context) context.Context {
	if logger.RequestID(ctx) != "" {
		return ctx
	}
	return logger.ContextWithRequestID(ctx, uuid.NewString())
}

func itemPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}
