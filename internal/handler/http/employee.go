package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pointage-hq/pointage-backend-go/internal/domain/employee"
	"github.com/pointage-hq/pointage-backend-go/internal/handler/http/response"
)

type EmployeeHandler interface {
	SubmitProfile(w http.ResponseWriter, r *http.Request)
	MyProfile(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Decisions(w http.ResponseWriter, r *http.Request)
}

type EmployeeHandlerImpl struct {
	approvals employee.ApprovalService
}

func NewEmployeeHandler(approvals employee.ApprovalService) EmployeeHandler {
	return &EmployeeHandlerImpl{approvals: approvals}
}

// SubmitProfile implements EmployeeHandler.
func (h *EmployeeHandlerImpl) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	var req employee.SubmitProfileRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.approvals.SubmitProfile(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Profile submitted for review", result)
}

// MyProfile implements EmployeeHandler.
func (h *EmployeeHandlerImpl) MyProfile(w http.ResponseWriter, r *http.Request) {
	result, err := h.approvals.GetMyProfile(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")
	if profileID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.approvals.GetProfile(r.Context(), profileID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements EmployeeHandler.
func (h *EmployeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := employee.ProfileFilter{
		Status:   getStringQueryParam(r, "status"),
		FullName: getStringQueryParam(r, "full_name"),
		Page:     getIntQueryParam(r, "page", 1),
		Limit:    getIntQueryParam(r, "limit", 20),
	}

	result, err := h.approvals.ListProfiles(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req employee.ApproveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.ProfileID = chi.URLParam(r, "id")

	result, err := h.approvals.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile approved", result)
}

// Reject implements EmployeeHandler.
func (h *EmployeeHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req employee.RejectRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ProfileID = chi.URLParam(r, "id")

	result, err := h.approvals.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile rejected", result)
}

// Decisions returns the append-only decision history of a profile.
func (h *EmployeeHandlerImpl) Decisions(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")
	if profileID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.approvals.ListDecisions(r.Context(), profileID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
