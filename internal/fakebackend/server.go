// Package fakebackend is an in-memory stand-in for the dashboard backend. It
// speaks the same envelope protocol, can be told to answer 429, and is used by
// tests, the CLI demo mode and the examples.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jzx17/backoffice/pkg/model"
	"github.com/jzx17/backoffice/pkg/permission"
)

// Resources maps each collection to its URL path segment
var Resources = map[string]string{
	"clients":    "clients",
	"invoices":   "invoices",
	"job_files":  "job-files",
	"modules":    "modules",
	"products":   "products",
	"quotations": "quotations",
	"roles":      "roles",
	"taxes":      "taxes",
	"users":      "users",
}

// Account is a user that can log in
type Account struct {
	User     model.User
	Password string
	Modules  []permission.Module
}

// Server is the fake backend
type Server struct {
	engine *gin.Engine

	mu           sync.Mutex
	accounts     map[string]Account
	tokens       map[string]string
	throttle     int
	retryAfter   string
	legacyArrays map[string]bool
	catalogue    []permission.Module
	grants       map[string][]model.PermissionGrant

	stores   map[string]*store
	requests atomic.Int64
}

// Option configures a Server
type Option func(*Server)

// WithAccount registers an account in addition to the default admin
func WithAccount(a Account) Option {
	return func(s *Server) {
		s.accounts[a.User.Email] = a
	}
}

// WithLegacyArrays makes the list endpoints of the given resources return a
// bare array instead of {rows, pagination}
func WithLegacyArrays(resources ...string) Option {
	return func(s *Server) {
		for _, r := range resources {
			s.legacyArrays[r] = true
		}
	}
}

var ginMode sync.Once

// New creates a fake backend with one admin account (see DefaultAccount)
func New(opts ...Option) *Server {
	ginMode.Do(func() { gin.SetMode(gin.TestMode) })

	s := &Server{
		accounts:     map[string]Account{},
		tokens:       map[string]string{},
		legacyArrays: map[string]bool{},
		catalogue:    DefaultModules(),
		grants:       map[string][]model.PermissionGrant{},
		stores:       map[string]*store{},
	}
	admin := DefaultAccount()
	s.accounts[admin.User.Email] = admin
	for name := range Resources {
		s.stores[name] = newStore()
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.countRequests(), requestID(), s.throttled())
	s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Throttle makes the next n requests answer 429 with the given Retry-After
// header (omitted when empty)
func (s *Server) Throttle(n int, retryAfter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.throttle = n
	s.retryAfter = retryAfter
}

// Requests returns the number of requests served
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Grants returns the permission grants last stored for a role
func (s *Server) Grants(roleID string) []model.PermissionGrant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PermissionGrant(nil), s.grants[roleID]...)
}

// Seed inserts records into a collection. Records are converted through
// JSON, so model structs and maps both work. It returns the stored ids.
func (s *Server) Seed(resource string, records ...any) ([]string, error) {
	st, ok := s.stores[resource]
	if !ok {
		return nil, fmt.Errorf("fakebackend: unknown resource %q", resource)
	}
	ids := make([]string, 0, len(records))
	for _, v := range records {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("fakebackend: marshal seed: %w", err)
		}
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("fakebackend: seed must be an object: %w", err)
		}
		ids = append(ids, st.create(r)["id"].(string))
	}
	return ids, nil
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.requireToken())
	authed.POST("/auth/logout", s.logout)
	authed.GET("/modules/permissions", s.modulePermissions)
	authed.PUT("/roles/:id/permissions", s.updateRolePermissions)
	authed.PATCH("/invoices/:id/status", s.invoiceStatus)

	for name, path := range Resources {
		h := collection{server: s, name: name, store: s.stores[name]}
		authed.GET("/"+path, h.list)
		authed.POST("/"+path, h.create)
		authed.GET("/"+path+"/:id", h.get)
		authed.PUT("/"+path+"/:id", h.update)
		authed.DELETE("/"+path+"/:id", h.delete)
	}
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	s.mu.Lock()
	account, ok := s.accounts[body.Email]
	if !ok || account.Password != body.Password {
		s.mu.Unlock()
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token := uuid.NewString()
	s.tokens[token] = body.Email
	s.mu.Unlock()

	user := account.User
	user.Password = ""
	respond(c, http.StatusOK, gin.H{
		"token":   token,
		"user":    user,
		"modules": account.Modules,
	})
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	delete(s.tokens, c.GetString(tokenKey))
	s.mu.Unlock()
	respond(c, http.StatusOK, nil)
}

func (s *Server) modulePermissions(c *gin.Context) {
	respond(c, http.StatusOK, s.catalogue)
}

func (s *Server) updateRolePermissions(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.stores["roles"].get(id); !ok {
		fail(c, http.StatusNotFound, "role not found")
		return
	}
	var body struct {
		Permissions []model.PermissionGrant `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid permissions payload")
		return
	}
	s.mu.Lock()
	s.grants[id] = body.Permissions
	s.mu.Unlock()
	respond(c, http.StatusOK, nil)
}

func (s *Server) invoiceStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		fail(c, http.StatusUnprocessableEntity, "status is required")
		return
	}
	r, ok := s.stores["invoices"].patch(c.Param("id"), record{"status": body.Status})
	if !ok {
		fail(c, http.StatusNotFound, "invoice not found")
		return
	}
	respond(c, http.StatusOK, r)
}

// collection serves CRUD for one resource
type collection struct {
	server *Server
	name   string
	store  *store
}

func (h collection) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, total := h.store.list(c.Query("search"), page, limit)

	h.server.mu.Lock()
	legacy := h.server.legacyArrays[h.name]
	h.server.mu.Unlock()
	if legacy {
		respond(c, http.StatusOK, rows)
		return
	}

	pagination := model.Pagination{Total: total, Page: max(page, 1), Limit: limit}
	if limit > 0 {
		pagination.TotalPages = (total + limit - 1) / limit
	}
	respond(c, http.StatusOK, gin.H{"rows": rows, "pagination": pagination})
}

func (h collection) get(c *gin.Context) {
	r, ok := h.store.get(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, h.name+" not found")
		return
	}
	respond(c, http.StatusOK, r)
}

func (h collection) create(c *gin.Context) {
	var r record
	if err := c.ShouldBindJSON(&r); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}
	respond(c, http.StatusCreated, h.store.create(r))
}

func (h collection) update(c *gin.Context) {
	var r record
	if err := c.ShouldBindJSON(&r); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload")
		return
	}
	updated, ok := h.store.update(c.Param("id"), r)
	if !ok {
		fail(c, http.StatusNotFound, h.name+" not found")
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h collection) delete(c *gin.Context) {
	if !h.store.delete(c.Param("id")) {
		fail(c, http.StatusNotFound, h.name+" not found")
		return
	}
	respond(c, http.StatusOK, nil)
}

func respond(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{
		"statusCode": code,
		"status":     true,
		"message":    http.StatusText(code),
		"data":       data,
	})
}

func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{
		"statusCode": code,
		"status":     false,
		"message":    message,
		"data":       nil,
	})
}
