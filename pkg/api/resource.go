package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jzx17/backoffice/pkg/model"
	"github.com/jzx17/backoffice/pkg/types"
)

// ListParams selects a page of a list endpoint. Zero values are omitted.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return q
}

// Resource is the CRUD wrapper for one backend collection
type Resource[T any] struct {
	client *Client
	name   string
	path   string
}

// NewResource creates a wrapper for the collection at path. name prefixes
// the operation names reported to the retry executor ("invoices.list").
func NewResource[T any](c *Client, name, path string) *Resource[T] {
	return &Resource[T]{client: c, name: name, path: path}
}

// Name returns the resource name
func (r *Resource[T]) Name() string {
	return r.name
}

func (r *Resource[T]) op(action string) string {
	return r.name + "." + action
}

// List fetches one page
func (r *Resource[T]) List(ctx context.Context, params ListParams) (*model.List[T], error) {
	var raw json.RawMessage
	if err := r.client.call(ctx, r.op("list"), http.MethodGet, params.values(), nil, &raw, r.path); err != nil {
		return nil, err
	}
	list, err := NormalizeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.op("list"), err)
	}
	return list, nil
}

// Get fetches one record
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: %w: id is required", r.op("get"), types.ErrInvalidInput)
	}
	var out T
	if err := r.client.call(ctx, r.op("get"), http.MethodGet, nil, nil, &out, r.path, id); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new record. A 429 is retried like any other call, so a
// backend that throttles after persisting can end up with a duplicate.
func (r *Resource[T]) Create(ctx context.Context, in T) (*T, error) {
	var out T
	if err := r.client.call(ctx, r.op("create"), http.MethodPost, nil, in, &out, r.path); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a record
func (r *Resource[T]) Update(ctx context.Context, id string, in T) (*T, error) {
	if id == "" {
		return nil, fmt.Errorf("%s: %w: id is required", r.op("update"), types.ErrInvalidInput)
	}
	var out T
	if err := r.client.call(ctx, r.op("update"), http.MethodPut, nil, in, &out, r.path, id); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a record
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%s: %w: id is required", r.op("delete"), types.ErrInvalidInput)
	}
	return r.client.call(ctx, r.op("delete"), http.MethodDelete, nil, nil, nil, r.path, id)
}

// NormalizeList accepts either a bare JSON array or an object with rows and
// an optional pagination block, and always returns rows plus pagination.
func NormalizeList[T any](data json.RawMessage) (*model.List[T], error) {
	list := &model.List[T]{Rows: []T{}}
	trimmed := bytes.TrimSpace(data)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &list.Rows); err != nil {
			return nil, fmt.Errorf("%w: decode rows: %v", types.ErrUnexpectedResponse, err)
		}
	case trimmed[0] == '{':
		var page struct {
			Rows       []T               `json:"rows"`
			Pagination *model.Pagination `json:"pagination"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("%w: decode page: %v", types.ErrUnexpectedResponse, err)
		}
		if page.Rows != nil {
			list.Rows = page.Rows
		}
		if page.Pagination != nil {
			list.Pagination = *page.Pagination
		}
	default:
		return nil, fmt.Errorf("%w: list data is neither array nor object", types.ErrUnexpectedResponse)
	}

	fillPagination(&list.Pagination, len(list.Rows))
	return list, nil
}

func fillPagination(p *model.Pagination, rows int) {
	if p.Total == 0 {
		p.Total = rows
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = rows
	}
	if p.TotalPages == 0 && p.Limit > 0 {
		p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
	}
}
