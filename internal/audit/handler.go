package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timesheet-management/internal/transport"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

type ServiceAPI interface {
	GetByID(id string) (*AuditLog, error)
	List(limit, offset int) ([]*AuditLog, error)
	ListByResource(resourceType, resourceID string, limit, offset int) ([]*AuditLog, error)
	Verify(id string) (bool, error)
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

// ListLogs serves the append-only log for operational tooling. Admin only,
// enforced by routing middleware.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0

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

	var (
		logs []*AuditLog
		err  error
	)

	resourceType := r.URL.Query().Get("resource_type")
	resourceID := r.URL.Query().Get("resource_id")
	if resourceType != "" && resourceID != "" {
		logs, err = h.Service.ListByResource(resourceType, resourceID, limit, offset)
	} else {
		logs, err = h.Service.List(limit, offset)
	}
	if err != nil {
		h.Logger.Error("ListLogs: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"limit":      limit,
		"offset":     offset,
	})
}

func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// VerifyLog recomputes the record's signature so operators can detect
// post-hoc tampering.
func (h *Handler) VerifyLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	valid, err := h.Service.Verify(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if !valid {
		h.Logger.Warn("audit record failed verification", "audit_id", id)
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"audit_id": id,
		"valid":    valid,
	})
}
