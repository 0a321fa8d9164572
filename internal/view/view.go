// Package view gives every read endpoint the same three-state contract:
// a fetch either failed, found nothing, or produced items.
package view

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/logger"
	"github.com/Ragul198/Event/pkg/response"
)

// State tags a Result.
type State string

const (
	StateError State = "error"
	StateEmpty State = "empty"
	StateReady State = "ready"
)

// Query describes one data fetch backing a view.
type Query[T any] struct {
	Name         string
	Fetch        func(ctx context.Context) ([]T, error)
	EmptyMessage string
}

// Result is the outcome of running a Query.
type Result[T any] struct {
	View    string
	State   State
	Items   []T
	Message string
	Err     error
}

// One adapts a single-item fetch. A nil item or a not-found error is an empty result.
func One[T any](name, emptyMessage string, fetch func(ctx context.Context) (*T, error)) Query[T] {
	return Query[T]{
		Name:         name,
		EmptyMessage: emptyMessage,
		Fetch: func(ctx context.Context) ([]T, error) {
			item, err := fetch(ctx)
			if err != nil || item == nil {
				return nil, err
			}
			return []T{*item}, nil
		},
	}
}

// Run executes the query. Fetch errors are logged with the view name.
func (q Query[T]) Run(ctx context.Context, log *zap.Logger) Result[T] {
	items, err := q.Fetch(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return Result[T]{View: q.Name, State: StateEmpty, Items: []T{}, Message: appErrors.FromError(err).Message}
		}
		logger.FromContext(ctx, log).Warn("view fetch failed", zap.String("view", q.Name), zap.Error(err))
		return Result[T]{View: q.Name, State: StateError, Err: err}
	}
	if len(items) == 0 {
		return Result[T]{View: q.Name, State: StateEmpty, Items: []T{}, Message: q.EmptyMessage}
	}
	return Result[T]{View: q.Name, State: StateReady, Items: items}
}

// Meta returns the envelope metadata for the result.
func (r Result[T]) Meta() map[string]interface{} {
	meta := map[string]interface{}{"state": string(r.State), "view": r.View}
	switch r.State {
	case StateEmpty:
		if r.Message != "" {
			meta["message"] = r.Message
		}
	case StateReady:
		meta["count"] = len(r.Items)
	}
	return meta
}

// Render writes the result as a list.
func Render[T any](c *gin.Context, r Result[T]) {
	if r.State == StateError {
		response.Error(c, r.Err, r.Meta())
		return
	}
	response.OK(c, r.Items, r.Meta())
}

// RenderOne writes the first item of the result, or null when empty.
func RenderOne[T any](c *gin.Context, r Result[T]) {
	switch r.State {
	case StateError:
		response.Error(c, r.Err, r.Meta())
	case StateEmpty:
		response.OK(c, nil, r.Meta())
	default:
		response.OK(c, r.Items[0], r.Meta())
	}
}

// Serve runs the query against the request context and renders the list.
func Serve[T any](c *gin.Context, log *zap.Logger, q Query[T]) {
	Render(c, q.Run(c.Request.Context(), log))
}

// ServeOne runs a single-item query and renders it.
func ServeOne[T any](c *gin.Context, log *zap.Logger, q Query[T]) {
	RenderOne(c, q.Run(c.Request.Context(), log))
}
