package http

import (
	"net/http"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PermitHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type permitHandlerImpl struct {
	permitService permit.PermitService
}

func NewPermitHandler(permitService permit.PermitService) PermitHandler {
	return &permitHandlerImpl{permitService: permitService}
}

// Submit handles POST /permits
func (h *permitHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req permit.SubmitPermitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.WorkerID = middleware.WorkerID(r.Context())

	result, err := h.permitService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Permit submitted", result)
}

// ListMine handles GET /permits/my
func (h *permitHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	filter := permitFilter(r)
	self := middleware.WorkerID(r.Context())
	filter.WorkerID = &self
	h.list(w, r, filter)
}

// List handles GET /permits (supervisor)
func (h *permitHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, permitFilter(r))
}

func (h *permitHandlerImpl) list(w http.ResponseWriter, r *http.Request, filter permit.PermitFilter) {
	result, err := h.permitService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Approve handles POST /permits/{id}/approve
func (h *permitHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	req := permit.ReviewPermitRequest{
		PermitID:   chi.URLParam(r, "id"),
		ReviewerID: middleware.WorkerID(r.Context()),
	}

	result, err := h.permitService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Permit approved", result)
}

// Reject handles POST /permits/{id}/reject
func (h *permitHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req permit.ReviewPermitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.PermitID = chi.URLParam(r, "id")
	req.ReviewerID = middleware.WorkerID(r.Context())

	result, err := h.permitService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Permit rejected", result)
}

func permitFilter(r *http.Request) permit.PermitFilter {
	q := r.URL.Query()
	var filter permit.PermitFilter
	if v := q.Get("worker_id"); v != "" {
		filter.WorkerID = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("from"); v != "" {
		filter.From = &v
	}
	if v := q.Get("to"); v != "" {
		filter.To = &v
	}
	return filter
}
