package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/anomaly"
	"github.com/pointage-hq/pointage-backend-go/internal/handler/http/response"
)

type AnomalyHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type AnomalyHandlerImpl struct {
	anomalies anomaly.Service
}

func NewAnomalyHandler(anomalies anomaly.Service) AnomalyHandler {
	return &AnomalyHandlerImpl{anomalies: anomalies}
}

// List implements AnomalyHandler.
func (h *AnomalyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := anomaly.Filter{
		UserID:   getStringQueryParam(r, "user_id"),
		Status:   getStringQueryParam(r, "status"),
		Severity: getStringQueryParam(r, "severity"),
		Page:     getIntQueryParam(r, "page", 1),
		Limit:    getIntQueryParam(r, "limit", 20),
	}

	result, err := h.anomalies.ListAnomalies(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements AnomalyHandler.
func (h *AnomalyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	anomalyID := chi.URLParam(r, "id")
	if anomalyID == "" {
		response.BadRequest(w, "Anomaly ID is required", nil)
		return
	}

	result, err := h.anomalies.GetAnomaly(r.Context(), anomalyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Resolve implements AnomalyHandler.
func (h *AnomalyHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	var req anomaly.ResolveRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AnomalyID = chi.URLParam(r, "id")

	result, err := h.anomalies.Resolve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Anomaly updated", result)
}
