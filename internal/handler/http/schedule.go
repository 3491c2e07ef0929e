package http

import (
	"net/http"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/response"
)

const icsContentType = "text/calendar; charset=utf-8"

type ScheduleHandler interface {
	Roster(w http.ResponseWriter, r *http.Request)
	RosterCalendar(w http.ResponseWriter, r *http.Request)
	SetOverride(w http.ResponseWriter, r *http.Request)
	DeleteOverride(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{scheduleService: scheduleService}
}

// rosterFilter defaults worker_id to the caller. Only supervisors may read
// another worker's roster.
func rosterFilter(r *http.Request) (schedule.RosterFilter, error) {
	q := r.URL.Query()
	self := middleware.WorkerID(r.Context())
	filter := schedule.RosterFilter{
		WorkerID: q.Get("worker_id"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
	if filter.WorkerID == "" {
		filter.WorkerID = self
	}
	if filter.WorkerID != self && !middleware.Role(r.Context()).CanSupervise() {
		return schedule.RosterFilter{}, response.ErrSupervisorRequired
	}
	return filter, nil
}

// Roster handles GET /schedule/roster
func (h *scheduleHandlerImpl) Roster(w http.ResponseWriter, r *http.Request) {
	filter, err := rosterFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.scheduleService.Roster(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// RosterCalendar handles GET /schedule/roster.ics
func (h *scheduleHandlerImpl) RosterCalendar(w http.ResponseWriter, r *http.Request) {
	filter, err := rosterFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	body, err := h.scheduleService.RosterCalendar(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, icsContentType, "inline", "roster_"+filter.From+"_"+filter.To+".ics", body)
}

// SetOverride handles PUT /schedule/overrides
func (h *scheduleHandlerImpl) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req schedule.SetOverrideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	supervisor := middleware.WorkerID(r.Context())
	req.CreatedBy = &supervisor

	result, err := h.scheduleService.SetOverride(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Override saved", result)
}

// DeleteOverride handles DELETE /schedule/overrides?worker_id=&date=
func (h *scheduleHandlerImpl) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := schedule.DeleteOverrideRequest{
		WorkerID: q.Get("worker_id"),
		Date:     q.Get("date"),
	}

	if err := h.scheduleService.DeleteOverride(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Override removed", nil)
}
