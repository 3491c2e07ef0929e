package http

import (
	"net/http"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/response"
)

type DashboardHandler interface {
	DutyBoard(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// DutyBoard handles GET /dashboard/duty. ?refresh=true bypasses the cache.
func (h *dashboardHandlerImpl) DutyBoard(w http.ResponseWriter, r *http.Request) {
	get := h.dashboardService.DutyBoard
	if getBoolQueryParam(r, "refresh", false) {
		get = h.dashboardService.RefreshDutyBoard
	}

	board, err := get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, board)
}
