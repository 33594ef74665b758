package listspec

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/SecondBureau/adminsgrid/pkg/common"
	"github.com/SecondBureau/adminsgrid/pkg/fieldspec"
	"github.com/SecondBureau/adminsgrid/pkg/logger"
	"github.com/SecondBureau/adminsgrid/pkg/metrics"
)

// Handler serves the list and bulk-destroy endpoints for every registered
// entity. Entity resolution, request parsing and authorization scoping
// happen here; query assembly is delegated.
type Handler struct {
	db        common.Database
	registry  *fieldspec.Registry
	assembler *Assembler
	hooks     *HookRegistry
	scopes    ScopeProvider
}

// NewHandler creates a handler over the given database and entity
// registry. The caseInsensitiveLike flag selects ILIKE for free-text and
// string filter matching.
func NewHandler(db common.Database, registry *fieldspec.Registry, caseInsensitiveLike bool) *Handler {
	h := &Handler{
		db:        db,
		registry:  registry,
		assembler: NewAssembler(db, caseInsensitiveLike),
		hooks:     NewHookRegistry(),
	}
	h.assembler.Hooks = h.hooks
	return h
}

// Hooks returns the hook registry. Use it to register operation hooks.
func (h *Handler) Hooks() *HookRegistry {
	return h.hooks
}

// Assembler exposes the query assembler, mainly for tuning total caching.
func (h *Handler) Assembler() *Assembler {
	return h.assembler
}

// SetScopeProvider installs the authorization scope source. Without one,
// queries run unrestricted.
func (h *Handler) SetScopeProvider(p ScopeProvider) {
	h.scopes = p
}

func (h *Handler) handlePanic(w http.ResponseWriter, method string, err interface{}) {
	logger.Error("Panic in %s: %v\nStack trace:\n%s", method, err, debug.Stack())
	h.sendError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Internal server error in %s", method), fmt.Errorf("%v", err))
}

// HandleList serves GET /{entity}: parse, scope, assemble, respond.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request, params map[string]string) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleList", err)
		}
	}()

	ctx := r.Context()
	entity, err := h.registry.Get(params["entity"])
	if err != nil {
		h.sendError(w, http.StatusNotFound, "unknown_entity", fmt.Sprintf("Unknown entity %q", params["entity"]), err)
		return
	}

	req := ParseListRequest(r.URL.Query())
	logger.Debug("Listing %s: query=%q filters=%d sort=%q page=%d all=%v",
		entity.Name, req.FreeText, len(req.Filters), req.SortField, req.Page, req.All)

	scope, err := h.scopeFor(r, entity, "list")
	if err != nil {
		h.sendError(w, http.StatusForbidden, "scope_error", "Authorization scope rejected the request", err)
		return
	}

	hctx := &HookContext{Context: ctx, Entity: entity, Request: &req, Tx: h.db}
	if err := h.hooks.Execute(BeforeList, hctx); err != nil {
		h.sendError(w, http.StatusInternalServerError, "hook_error", "Before-list hook failed", err)
		return
	}
	if hctx.Abort {
		h.sendAbort(w, hctx)
		return
	}

	started := time.Now()
	result, err := h.assembler.List(ctx, entity, req, scope)
	if result != nil {
		metrics.GetProvider().RecordListQuery(entity.Name, result.Count, time.Since(started), err)
	} else {
		metrics.GetProvider().RecordListQuery(entity.Name, 0, time.Since(started), err)
	}
	if err != nil {
		logger.Error("Listing %s failed: %v", entity.Name, err)
		h.sendError(w, http.StatusInternalServerError, "query_error", "Error listing records", err)
		return
	}

	hctx.Result = result
	if err := h.hooks.Execute(AfterList, hctx); err != nil {
		h.sendError(w, http.StatusInternalServerError, "hook_error", "After-list hook failed", err)
		return
	}

	h.sendResponse(w, result.Rows, &common.Metadata{
		Total:        int64(result.Total),
		Count:        int64(result.Count),
		Filtered:     result.Filtered,
		Page:         result.Page,
		PageSize:     result.PageSize,
		SortColumn:   result.Sort.Column,
		SortReversed: result.Sort.Reversed,
		Fields:       entity.VisibleFieldNames(),
	})
}

type bulkDeleteBody struct {
	BulkIDs []string `json:"bulk_ids"`
}

// HandleBulkDelete serves DELETE /{entity}: destroy the authorized subset
// of the posted ids and report per-id outcome.
func (h *Handler) HandleBulkDelete(w http.ResponseWriter, r *http.Request, params map[string]string) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleBulkDelete", err)
		}
	}()

	ctx := r.Context()
	entity, err := h.registry.Get(params["entity"])
	if err != nil {
		h.sendError(w, http.StatusNotFound, "unknown_entity", fmt.Sprintf("Unknown entity %q", params["entity"]), err)
		return
	}

	var body bulkDeleteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON with a bulk_ids array", err)
		return
	}

	scope, err := h.scopeFor(r, entity, "bulk_delete")
	if err != nil {
		h.sendError(w, http.StatusForbidden, "scope_error", "Authorization scope rejected the request", err)
		return
	}

	hctx := &HookContext{Context: ctx, Entity: entity, BulkIDs: body.BulkIDs, Tx: h.db}
	if err := h.hooks.Execute(BeforeBulkDelete, hctx); err != nil {
		h.sendError(w, http.StatusInternalServerError, "hook_error", "Before-bulk-delete hook failed", err)
		return
	}
	if hctx.Abort {
		h.sendAbort(w, hctx)
		return
	}

	result, err := h.assembler.BulkDestroy(ctx, entity, hctx.BulkIDs, scope)
	if err != nil {
		logger.Error("Bulk destroy on %s failed: %v", entity.Name, err)
		h.sendError(w, http.StatusInternalServerError, "query_error", "Error destroying records", err)
		return
	}

	metrics.GetProvider().RecordBulkDelete(entity.Name, result.Destroyed, result.NotDestroyed)

	hctx.Result = result
	if err := h.hooks.Execute(AfterBulkDelete, hctx); err != nil {
		h.sendError(w, http.StatusInternalServerError, "hook_error", "After-bulk-delete hook failed", err)
		return
	}

	h.sendResponse(w, result, nil)
}

func (h *Handler) scopeFor(r *http.Request, entity *fieldspec.Entity, operation string) (Scope, error) {
	if h.scopes == nil {
		return nil, nil
	}
	return h.scopes.ScopeFor(r.Context(), entity, operation)
}

func (h *Handler) sendAbort(w http.ResponseWriter, hctx *HookContext) {
	code := hctx.AbortCode
	if code == 0 {
		code = http.StatusForbidden
	}
	message := hctx.AbortMessage
	if message == "" {
		message = "Operation aborted"
	}
	h.sendError(w, code, "aborted", message, nil)
}

func (h *Handler) sendResponse(w http.ResponseWriter, data interface{}, metadata *common.Metadata) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := common.Response{Success: true, Data: data, Metadata: metadata}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to write JSON response: %v", err)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, code, message string, err error) {
	apiErr := &common.APIError{Code: code, Message: message}
	if err != nil {
		apiErr.Detail = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if jsonErr := json.NewEncoder(w).Encode(common.Response{Success: false, Error: apiErr}); jsonErr != nil {
		logger.Error("Failed to write JSON error response: %v", jsonErr)
	}
}
