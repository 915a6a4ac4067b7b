package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jzx17/backoffice/pkg/model"
	"github.com/jzx17/backoffice/pkg/permission"
	"github.com/jzx17/backoffice/pkg/types"
)

func (c *Client) Clients() *Resource[model.Client]       { return c.clients }
func (c *Client) Invoices() *Resource[model.Invoice]     { return c.invoices }
func (c *Client) JobFiles() *Resource[model.JobFile]     { return c.jobFiles }
func (c *Client) Modules() *Resource[model.Module]       { return c.modules }
func (c *Client) Products() *Resource[model.Product]     { return c.products }
func (c *Client) Quotations() *Resource[model.Quotation] { return c.quotations }
func (c *Client) Roles() *Resource[model.Role]           { return c.roles }
func (c *Client) Taxes() *Resource[model.Tax]            { return c.taxes }
func (c *Client) Users() *Resource[model.User]           { return c.users }

// ResourceNames lists the collections reachable through List
var ResourceNames = []string{
	"clients", "invoices", "job_files", "modules", "products",
	"quotations", "roles", "taxes", "users",
}

// Summary is a resource-agnostic view of a list page, for tooling
type Summary struct {
	Resource   string
	Rows       []any
	Pagination model.Pagination
}

// List fetches a page of the named resource without knowing its type
func (c *Client) List(ctx context.Context, resource string, params ListParams) (*Summary, error) {
	switch resource {
	case "clients":
		return summarize(ctx, c.clients, params)
	case "invoices":
		return summarize(ctx, c.invoices, params)
	case "job_files", "job-files":
		return summarize(ctx, c.jobFiles, params)
	case "modules":
		return summarize(ctx, c.modules, params)
	case "products":
		return summarize(ctx, c.products, params)
	case "quotations":
		return summarize(ctx, c.quotations, params)
	case "roles":
		return summarize(ctx, c.roles, params)
	case "taxes":
		return summarize(ctx, c.taxes, params)
	case "users":
		return summarize(ctx, c.users, params)
	default:
		return nil, fmt.Errorf("%w: unknown resource %q", types.ErrInvalidInput, resource)
	}
}

func summarize[T any](ctx context.Context, r *Resource[T], params ListParams) (*Summary, error) {
	list, err := r.List(ctx, params)
	if err != nil {
		return nil, err
	}
	rows := make([]any, len(list.Rows))
	for i := range list.Rows {
		rows[i] = list.Rows[i]
	}
	return &Summary{Resource: r.Name(), Rows: rows, Pagination: list.Pagination}, nil
}

// SetInvoiceStatus moves an invoice to status
func (c *Client) SetInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) (*model.Invoice, error) {
	if id == "" || status == "" {
		return nil, fmt.Errorf("invoices.status: %w: id and status are required", types.ErrInvalidInput)
	}
	var out model.Invoice
	body := map[string]model.InvoiceStatus{"status": status}
	if err := c.call(ctx, "invoices.status", http.MethodPatch, nil, body, &out, "invoices", id, "status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ModulePermissions fetches the permission catalogue used by the role editor
func (c *Client) ModulePermissions(ctx context.Context) ([]permission.Module, error) {
	var out []permission.Module
	if err := c.call(ctx, "modules.permissions", http.MethodGet, nil, nil, &out, "modules", "permissions"); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRolePermissions replaces the grants of a role
func (c *Client) UpdateRolePermissions(ctx context.Context, roleID string, grants []model.PermissionGrant) error {
	if roleID == "" {
		return fmt.Errorf("roles.permissions: %w: role id is required", types.ErrInvalidInput)
	}
	body := map[string][]model.PermissionGrant{"permissions": grants}
	return c.call(ctx, "roles.permissions", http.MethodPut, nil, body, nil, "roles", roleID, "permissions")
}

// OverviewConcurrency bounds the parallel list calls made by Overview
const OverviewConcurrency = 3

// Count is one line of an Overview
type Count struct {
	Resource string
	Total    int
	Err      error
}

// Overview fetches the total of every resource whose route the session
// allows. A failing resource is reported in its Count and does not stop the
// others; the result keeps the order of ResourceNames.
func (c *Client) Overview(ctx context.Context) ([]Count, error) {
	counts := make([]Count, 0, len(ResourceNames))
	for _, name := range ResourceNames {
		if c.Can("/" + c.resourcePath(name)) {
			counts = append(counts, Count{Resource: name})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(OverviewConcurrency)
	for i := range counts {
		g.Go(func() error {
			summary, err := c.List(gctx, counts[i].Resource, ListParams{Page: 1, Limit: 1})
			if err != nil {
				counts[i].Err = err
				c.logger.WarnContext(gctx, "overview count failed", "resource", counts[i].Resource, "error", err)
				return nil
			}
			counts[i].Total = summary.Pagination.Total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return counts, fmt.Errorf("overview: %w: %w", types.ErrCancelled, err)
	}
	return counts, nil
}

func (c *Client) resourcePath(name string) string {
	if name == "job_files" {
		return c.jobFiles.path
	}
	return name
}
