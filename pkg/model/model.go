// Package model defines the records exchanged with the backend
package model

import "time"

// Pagination describes one page of a list response
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// List is a normalised list response
type List[T any] struct {
	Rows       []T        `json:"rows"`
	Pagination Pagination `json:"pagination"`
}

// Client is a customer that invoices and quotations are issued to
type Client struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxNumber string    `json:"taxNumber,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// LineItem is one product line of an invoice or quotation
type LineItem struct {
	ProductID   string  `json:"productId,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxID       string  `json:"taxId,omitempty"`
	Total       float64 `json:"total"`
}

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoid    InvoiceStatus = "void"
)

// Invoice is a bill issued to a client
type Invoice struct {
	ID            string        `json:"id,omitempty"`
	InvoiceNumber string        `json:"invoiceNumber"`
	ClientID      string        `json:"clientId"`
	QuotationID   string        `json:"quotationId,omitempty"`
	IssueDate     string        `json:"issueDate"`
	DueDate       string        `json:"dueDate,omitempty"`
	Status        InvoiceStatus `json:"status,omitempty"`
	Items         []LineItem    `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	TaxTotal      float64       `json:"taxTotal"`
	Total         float64       `json:"total"`
	Notes         string        `json:"notes,omitempty"`
}

// Quotation is a priced offer that may later become an invoice
type Quotation struct {
	ID              string     `json:"id,omitempty"`
	QuotationNumber string     `json:"quotationNumber"`
	ClientID        string     `json:"clientId"`
	IssueDate       string     `json:"issueDate"`
	ValidUntil      string     `json:"validUntil,omitempty"`
	Status          string     `json:"status,omitempty"`
	Items           []LineItem `json:"items"`
	Total           float64    `json:"total"`
}

// Product is a sellable item or service
type Product struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	SKU         string  `json:"sku,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	TaxID       string  `json:"taxId,omitempty"`
	Active      bool    `json:"active"`
}

// Tax is a named tax rate
type Tax struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Active     bool    `json:"active"`
}

// Role is a named set of permission grants
type Role struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PermissionGrant toggles one permission of one module for a role
type PermissionGrant struct {
	ModuleSlug     string `json:"moduleSlug"`
	PermissionSlug string `json:"permissionSlug"`
	IsAllowed      bool   `json:"isAllowed"`
}

// User is a dashboard account
type User struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	RoleID   string `json:"roleId,omitempty"`
	Active   bool   `json:"active"`
	Password string `json:"password,omitempty"`
}

// Module is a feature area that permissions are grouped under
type Module struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// JobFile is a document attached to a job
type JobFile struct {
	ID          string    `json:"id,omitempty"`
	JobNumber   string    `json:"jobNumber"`
	ClientID    string    `json:"clientId,omitempty"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType,omitempty"`
	URL         string    `json:"url,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt,omitzero"`
}
