package timesheet

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timesheet-management/internal"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

type ServiceAPI interface {
	CreateEntry(ctx context.Context, actor *coreuser.User, dto CreateEntryDTO) (*TimeEntry, error)
	UpdateEntry(ctx context.Context, actor *coreuser.User, entryID int64, dto UpdateEntryDTO) (*TimeEntry, error)
	DeleteEntry(ctx context.Context, actor *coreuser.User, entryID int64) error
	GetSheet(ctx context.Context, actor *coreuser.User, sheetID int64) (*SheetDetail, error)
	ListMySheets(actor *coreuser.User, limit, offset int) ([]*TimeSheet, error)
	ListPendingApprovals(actor *coreuser.User, limit, offset int) ([]*Approval, error)
	Submit(ctx context.Context, actor *coreuser.User, sheetID int64) (*TimeSheet, error)
	Decide(ctx context.Context, actor *coreuser.User, sheetID int64, dto DecideDTO) (*TimeSheet, error)
	Reopen(ctx context.Context, actor *coreuser.User, sheetID int64, dto ReopenDTO) (*TimeSheet, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.CreateEntry(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entryID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var dto UpdateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.Service.UpdateEntry(r.Context(), actor, entryID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entryID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := h.Service.DeleteEntry(r.Context(), actor, entryID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMySheets(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, offset := pagination(r)
	sheets, err := h.Service.ListMySheets(actor, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timesheets": sheets,
		"limit":      limit,
		"offset":     offset,
	})
}

func (h *Handler) GetSheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sheetID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	detail, err := h.Service.GetSheet(r.Context(), actor, sheetID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, offset := pagination(r)
	approvals, err := h.Service.ListPendingApprovals(actor, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"approvals": approvals,
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sheetID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	sheet, err := h.Service.Submit(r.Context(), actor, sheetID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sheet)
}

func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sheetID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	var dto DecideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sheet, err := h.Service.Decide(r.Context(), actor, sheetID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sheet)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	actor, ok := internalUser(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sheetID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid timesheet id")
		return
	}

	var dto ReopenDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sheet, err := h.Service.Reopen(r.Context(), actor, sheetID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sheet)
}

func internalUser(r *http.Request) (*coreuser.User, bool) {
	return internal.UserFromContext(r.Context())
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
