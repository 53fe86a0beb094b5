// Package api exposes the task store over HTTP.
package api

import (
	"context"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sandeepkv93/tasklist/internal/commands"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/store"
	"go.uber.org/zap"
)

// Handlers serializes every store access behind mu; the store itself is not
// safe for concurrent use.
type Handlers struct {
	mu     sync.Mutex
	store  *store.Store
	logger *zap.Logger
}

func NewHandlers(s *store.Store, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{store: s, logger: logger}
}

// NewRouter builds the gin engine with recovery, request logging and all
// item routes mounted under /api.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(GinLogger(h.logger))
	_ = r.SetTrustedProxies(nil)
	SetupRoutes(r, h)
	return r
}

func SetupRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")
	api.GET("/healthz", h.Health)

	api.GET("/items", h.ListItems)
	api.POST("/items", h.AddItems)
	api.PATCH("/items", h.UpdateItems)
	api.DELETE("/items", h.DeleteItems)
	api.POST("/items/complete", h.CompleteItems)
	api.POST("/items/sort", h.SortItems)
	api.POST("/items/sort/toggle", h.ToggleSort)
	api.POST("/items/import", h.ImportItems)
}

// Reload refreshes the store from its backend under the handler lock.
func (h *Handlers) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Reload(ctx)
}

type ItemDTO struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Priority  int    `json:"priority"`
	Label     string `json:"priority_label"`
	Due       string `json:"due,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

type ResultDTO struct {
	Count    int      `json:"count"`
	Warnings []string `json:"warnings"`
	Ignored  []string `json:"ignored"`
	Message  string   `json:"message"`
}

type ListDTO struct {
	Items []ItemDTO `json:"items"`
	Total int       `json:"total"`
}

type AddRequest struct {
	Titles   string `json:"titles" binding:"required"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Due      string `json:"due"`
}

type SelectRequest struct {
	Select string `json:"select" binding:"required"`
}

type UpdateRequest struct {
	Select   string `json:"select" binding:"required"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	Due      string `json:"due"`
}

type SortRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func toItemDTO(e store.Entry) ItemDTO {
	dto := ItemDTO{
		Position: e.Position,
		Title:    e.Title,
		Category: e.Category,
		Priority: int(e.Priority),
		Label:    e.Priority.Label(),
		Due:      e.DueString(),
		Status:   string(e.Status),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(model.CreatedAtLayout)
	}
	return dto
}

func toResultDTO(verb string, res store.Result) ResultDTO {
	out := ResultDTO{
		Count:    res.Count,
		Warnings: res.Warnings,
		Ignored:  res.Ignored,
		Message:  commands.Describe(verb, res),
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if out.Ignored == nil {
		out.Ignored = []string{}
	}
	return out
}

func (h *Handlers) Health(c *gin.Context) {
	h.mu.Lock()
	n := h.store.Len()
	h.mu.Unlock()
	RespondData(c, gin.H{"status": "ok", "items": n})
}

func (h *Handlers) ListItems(c *gin.Context) {
	keyword := c.Query("q")
	h.mu.Lock()
	entries := h.store.List(keyword)
	total := h.store.Len()
	h.mu.Unlock()

	items := make([]ItemDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, toItemDTO(e))
	}
	RespondData(c, ListDTO{Items: items, Total: total})
}

func (h *Handlers) AddItems(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	var prio model.Priority
	if strings.TrimSpace(req.Priority) != "" {
		p, err := model.ParsePriority(req.Priority)
		if err != nil {
			RespondValidationError(c, err.Error())
			return
		}
		prio = p
	}

	h.mu.Lock()
	res, err := h.store.Add(c.Request.Context(), req.Titles, store.AddOptions{
		Category: req.Category,
		Priority: prio,
		Due:      req.Due,
	})
	h.mu.Unlock()
	if err != nil {
		RespondError(c, err)
		return
	}
	if res.Count == 0 {
		RespondValidationError(c, "no non-empty titles given")
		return
	}
	RespondCreated(c, toResultDTO("added", res))
}

func (h *Handlers) CompleteItems(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	h.mu.Lock()
	res, err := h.store.Complete(c.Request.Context(), req.Select)
	h.mu.Unlock()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, toResultDTO("completed", res))
}

func (h *Handlers) DeleteItems(c *gin.Context) {
	expr := c.Query("select")
	if strings.TrimSpace(expr) == "" {
		RespondBadRequest(c, "select query parameter is required")
		return
	}
	h.mu.Lock()
	res, err := h.store.Delete(c.Request.Context(), expr)
	h.mu.Unlock()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, toResultDTO("deleted", res))
}

func (h *Handlers) UpdateItems(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	attrs := commands.Attrs{Category: req.Category, Priority: req.Priority, Due: req.Due}
	if attrs.IsEmpty() {
		RespondValidationError(c, "at least one of category, priority or due is required")
		return
	}
	patch, err := commands.PatchFromAttrs(attrs)
	if err != nil {
		RespondError(c, err)
		return
	}
	h.mu.Lock()
	res, err := h.store.Update(c.Request.Context(), req.Select, patch)
	h.mu.Unlock()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, toResultDTO("updated", res))
}

func (h *Handlers) SortItems(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	mode, err := store.ParseSortMode(req.Mode)
	if err != nil {
		RespondError(c, err)
		return
	}
	h.mu.Lock()
	err = h.store.Sort(c.Request.Context(), mode)
	h.mu.Unlock()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, gin.H{"mode": mode})
}

func (h *Handlers) ToggleSort(c *gin.Context) {
	h.mu.Lock()
	mode, err := h.store.ToggleSort(c.Request.Context())
	next := h.store.SortToggle()
	h.mu.Unlock()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, gin.H{"mode": mode, "next": next.String()})
}

// ImportItems reads CSV lines (title,category,priority,due) from the raw
// request body.
func (h *Handlers) ImportItems(c *gin.Context) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondBadRequest(c, "request body is empty")
		return
	}
	h.mu.Lock()
	res, err := h.store.Import(c.Request.Context(), c.Request.Body)
	h.mu.Unlock()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondData(c, toResultDTO("imported", res))
}
