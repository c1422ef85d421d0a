package http

import (
	"net/http"

	"github.com/pointage-hq/pointage-backend-go/internal/domain/audit"
	"github.com/pointage-hq/pointage-backend-go/internal/handler/http/response"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type AuditHandlerImpl struct {
	auditor audit.Service
}

func NewAuditHandler(auditor audit.Service) AuditHandler {
	return &AuditHandlerImpl{auditor: auditor}
}

// List implements AuditHandler.
func (h *AuditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{
		ActorID:    getStringQueryParam(r, "actor_id"),
		Action:     getStringQueryParam(r, "action"),
		EntityType: getStringQueryParam(r, "entity_type"),
		EntityID:   getStringQueryParam(r, "entity_id"),
		Severity:   getStringQueryParam(r, "severity"),
		From:       getStringQueryParam(r, "from"),
		To:         getStringQueryParam(r, "to"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	result, err := h.auditor.Query(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
