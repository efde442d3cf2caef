package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/middleware"
	"github.com/stemsi/course-feed/internal/model"
	"github.com/stemsi/course-feed/internal/response"
	"github.com/stemsi/course-feed/internal/schedule"
	"github.com/stemsi/course-feed/internal/service"
	"github.com/stemsi/course-feed/internal/validator"
)

// AdminHandler handles operator endpoints: refresh requests and run history.
type AdminHandler struct {
	scheduleService *service.ScheduleService
	log             zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(scheduleService *service.ScheduleService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		scheduleService: scheduleService,
		log:             log.With().Str("component", "admin_handler").Logger(),
	}
}

// RequestRefresh godoc
// POST /api/v1/admin/refresh
// Queues a refresh for the refresh worker; progress is streamed on the
// ingest progress WebSocket.
func (h *AdminHandler) RequestRefresh(c *gin.Context) {
	requestedBy := ""
	if claims := middleware.GetClaims(c); claims != nil {
		requestedBy = claims.Subject
	}

	if err := h.scheduleService.RequestRefresh(c.Request.Context(), requestedBy); err != nil {
		h.log.Error().Err(err).Str("requested_by", requestedBy).Msg("Failed to queue refresh")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrRefreshQueue)
		return
	}

	h.log.Info().Str("requested_by", requestedBy).Msg("Refresh queued")
	response.Success(c, http.StatusAccepted, gin.H{"message": "refresh queued"})
}

// RunRefresh godoc
// POST /api/v1/admin/refresh/now
// Runs a refresh inside the request and returns the finished run.
func (h *AdminHandler) RunRefresh(c *gin.Context) {
	run, result, err := h.scheduleService.Refresh(c.Request.Context(), model.RunTriggerManual)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInProgress) {
			response.Fail(c, http.StatusConflict, response.ErrRefreshInProgress)
			return
		}
		var pe *schedule.PayloadError
		if errors.As(err, &pe) {
			response.FailWithDetail(c, http.StatusBadGateway, response.ErrFeedRejected, pe.Err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Refresh failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"run": run, "skipped": result.Skipped})
}

// ListRuns godoc
// GET /api/v1/admin/runs?limit=
func (h *AdminHandler) ListRuns(c *gin.Context) {
	var q model.ListRunsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	runs, err := h.scheduleService.Runs(c.Request.Context(), q.Limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list ingest runs")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if runs == nil {
		runs = []model.IngestRun{}
	}
	response.Success(c, http.StatusOK, gin.H{"runs": runs, "current": h.scheduleService.Status()})
}
